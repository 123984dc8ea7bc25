package transcript

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/skillbench/internal/run"
)

// Renderer serializes a Transcript to bytes.
type Renderer interface {
	Render(t *Transcript) ([]byte, error)
}

// RendererFor returns the renderer for a format name ("markdown" or "json").
func RendererFor(format string) (Renderer, error) {
	switch format {
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown transcript format %q (want markdown or json)", format)
}

// JSONRenderer renders a Transcript as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(t *Transcript) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

const (
	versionSentinel = "<!-- skillbench-transcript-version: 1 -->"
	dataPrefix      = "<!-- skillbench-data: "
	dataSuffix      = " -->"
)

// MarkdownRenderer renders a Transcript as readable Markdown. The full
// transcript rides along as a base64 JSON comment so MarkdownParser can
// recover it exactly.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(t *Transcript) ([]byte, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, base64.StdEncoding.EncodeToString(jsonBytes), dataSuffix)

	s := t.Session
	fmt.Fprintf(&sb, "# %s: %s\n\n", t.Thread.Name, s.ID)

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Model: %s\n", s.Model)
	status := string(s.Status)
	if s.Cancelled {
		status += " (cancelled)"
	}
	fmt.Fprintf(&sb, "- Status: %s\n", status)
	if t.Version != "" {
		fmt.Fprintf(&sb, "- Version: %s\n", t.Version)
	}
	fmt.Fprintf(&sb, "- Started: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if s.CompletedAt != nil {
		fmt.Fprintf(&sb, "- Duration: %s\n", roundDuration(t.Duration()))
	}
	fmt.Fprintf(&sb, "- Steps: %d\n\n", len(s.Trajectory))

	sb.WriteString("## Prompt\n\n")
	for _, line := range strings.Split(s.Prompt, "\n") {
		fmt.Fprintf(&sb, "> %s\n", line)
	}
	sb.WriteString("\n")

	sb.WriteString("## Trajectory\n\n")
	if len(s.Trajectory) == 0 {
		sb.WriteString("_No steps recorded._\n\n")
	}
	for i, step := range s.Trajectory {
		fmt.Fprintf(&sb, "### %d. %s (%s)\n\n", i+1, step.Type, step.Timestamp.Format("15:04:05"))
		writeStep(&sb, step)
		sb.WriteString("\n")
	}

	if s.Err != "" {
		sb.WriteString("## Error\n\n")
		fmt.Fprintf(&sb, "```\n%s\n```\n\n", s.Err)
	}
	return []byte(sb.String()), nil
}

func writeStep(sb *strings.Builder, step run.Step) {
	switch {
	case step.Type == run.StepError:
		for _, line := range strings.Split(step.Content, "\n") {
			fmt.Fprintf(sb, "> **%s**\n", line)
		}
	case step.Collapsible():
		sb.WriteString("```text\n")
		sb.WriteString(step.Content)
		if !strings.HasSuffix(step.Content, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	default:
		sb.WriteString(step.Content)
		sb.WriteString("\n")
	}
}

func roundDuration(d time.Duration) time.Duration {
	if d < 10*time.Second {
		return d.Round(10 * time.Millisecond)
	}
	return d.Round(time.Second)
}
