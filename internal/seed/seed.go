// Package seed loads the data a workspace starts from: the skill folder, its
// version history, previously recorded run threads, and the model list.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/skillbench/internal/pathtree"
	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/versionlog"
)

//go:embed default.yaml
var defaultDoc []byte

// DefaultSource names the embedded document in errors and logs.
const DefaultSource = "<embedded>"

// Document is the on-disk seed format.
type Document struct {
	CurrentVersion string              `yaml:"current_version"`
	Models         []string            `yaml:"models"`
	Skill          *pathtree.Spec      `yaml:"skill"`
	Versions       []versionlog.Record `yaml:"versions"`
	Threads        []run.Thread        `yaml:"threads"`
}

// Workspace is a validated, ready-to-use seed.
type Workspace struct {
	Source         string
	Tree           *pathtree.Tree
	Versions       *versionlog.Log
	Threads        []run.Thread
	Models         []string
	CurrentVersion string
}

// ErrInvalidSeed wraps every semantic validation failure.
var ErrInvalidSeed = errors.New("invalid seed document")

// ParseError is returned when a seed document exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse seed document " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns the embedded document.
func Default() (*Document, error) {
	return Parse(defaultDoc, DefaultSource)
}

// Parse decodes a seed document. Unknown keys are rejected so typos surface.
func Parse(data []byte, source string) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	return &doc, nil
}

// Load reads the document at path, or the embedded default when path is empty.
func Load(path string) (*Document, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed document: %w", err)
	}
	return Parse(data, path)
}

// Open loads and builds the seed at path.
func Open(path string) (*Workspace, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	src := path
	if src == "" {
		src = DefaultSource
	}
	return doc.Build(src)
}

// Build validates d and constructs the tree, the version log, and the thread
// list. source is recorded on the result for display.
func (d *Document) Build(source string) (*Workspace, error) {
	if d.Skill == nil {
		return nil, fmt.Errorf("%w: no skill folder", ErrInvalidSeed)
	}
	tree, err := pathtree.New(d.Skill)
	if err != nil {
		return nil, fmt.Errorf("%w: skill folder: %w", ErrInvalidSeed, err)
	}
	if !tree.Root().IsFolder() {
		return nil, fmt.Errorf("%w: skill root %s is not a folder", ErrInvalidSeed, tree.Root().Path)
	}
	log, err := versionlog.New(d.Versions)
	if err != nil {
		return nil, fmt.Errorf("%w: versions: %w", ErrInvalidSeed, err)
	}
	current, err := currentVersion(d.CurrentVersion, d.Versions)
	if err != nil {
		return nil, err
	}
	if err := checkThreads(d.Threads); err != nil {
		return nil, err
	}
	return &Workspace{
		Source:         source,
		Tree:           tree,
		Versions:       log,
		Threads:        d.Threads,
		Models:         d.Models,
		CurrentVersion: current,
	}, nil
}

// currentVersion resolves the checked-out version name. An explicit name wins;
// otherwise the single record flagged current is used.
func currentVersion(explicit string, records []versionlog.Record) (string, error) {
	var flagged []versionlog.Record
	for _, r := range records {
		if r.IsCurrent {
			flagged = append(flagged, r)
		}
	}
	if len(flagged) > 1 {
		return "", fmt.Errorf("%w: %d versions marked current", ErrInvalidSeed, len(flagged))
	}
	if explicit != "" {
		return explicit, nil
	}
	if len(flagged) == 1 {
		return flagged[0].Name, nil
	}
	return "", nil
}

func checkThreads(threads []run.Thread) error {
	threadIDs := make(map[string]bool, len(threads))
	sessionIDs := make(map[string]bool)
	for _, th := range threads {
		if th.ID == "" {
			return fmt.Errorf("%w: thread %q has no id", ErrInvalidSeed, th.Name)
		}
		if threadIDs[th.ID] {
			return fmt.Errorf("%w: duplicate thread %s", ErrInvalidSeed, th.ID)
		}
		threadIDs[th.ID] = true
		if !validStatus(th.Status) {
			return fmt.Errorf("%w: thread %s has unknown status %q", ErrInvalidSeed, th.ID, th.Status)
		}
		for _, s := range th.Sessions {
			if sessionIDs[s.ID] || s.ID == "" {
				return fmt.Errorf("%w: missing or duplicate session id %q", ErrInvalidSeed, s.ID)
			}
			sessionIDs[s.ID] = true
			if s.ThreadID != th.ID {
				return fmt.Errorf("%w: session %s belongs to %s but is listed under %s", ErrInvalidSeed, s.ID, s.ThreadID, th.ID)
			}
			if !validStatus(s.Status) {
				return fmt.Errorf("%w: session %s has unknown status %q", ErrInvalidSeed, s.ID, s.Status)
			}
			if s.Status == run.StatusRunning {
				return fmt.Errorf("%w: session %s is still running", ErrInvalidSeed, s.ID)
			}
			if s.Status.Terminal() != (s.CompletedAt != nil) {
				return fmt.Errorf("%w: session %s: completed_at must be set exactly when the run has finished", ErrInvalidSeed, s.ID)
			}
		}
		if latest, ok := th.Latest(); ok && latest.Status != th.Status {
			return fmt.Errorf("%w: thread %s is %s but its latest session is %s", ErrInvalidSeed, th.ID, th.Status, latest.Status)
		}
	}
	return nil
}

func validStatus(s run.Status) bool {
	switch s {
	case run.StatusReady, run.StatusRunning, run.StatusCompleted, run.StatusFailed:
		return true
	}
	return false
}
