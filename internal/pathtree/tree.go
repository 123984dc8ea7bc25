// Package pathtree holds the immutable folder/file model of a skill bundle.
// Nodes live in a flat map keyed by path; folders list their children as
// ordered path keys.
package pathtree

import (
	"errors"
	"fmt"
	"strings"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is a single entry in the tree.
type Node struct {
	ID       string
	Name     string
	Kind     Kind
	Path     string
	Content  string // files only
	Language string // files only
	Children []string
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool { return n.Kind == KindFolder }

// Spec is the nested form a tree is built from (seed documents decode into it).
type Spec struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Kind     Kind    `yaml:"type" json:"type"`
	Path     string  `yaml:"path" json:"path"`
	Content  string  `yaml:"content,omitempty" json:"content,omitempty"`
	Language string  `yaml:"language,omitempty" json:"language,omitempty"`
	Children []*Spec `yaml:"children,omitempty" json:"children,omitempty"`
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	Name string
	Path string
}

// Tree is an arena of nodes rooted at a single folder.
type Tree struct {
	root  string
	nodes map[string]*Node
}

var (
	// ErrDuplicatePath is returned when two nodes share a path.
	ErrDuplicatePath = errors.New("duplicate path")
	// ErrInvalidNode is returned when a node violates the file/folder shape.
	ErrInvalidNode = errors.New("invalid node")
)

// New builds a Tree from a nested spec, validating shape and path uniqueness.
func New(root *Spec) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidNode)
	}
	t := &Tree{root: root.Path, nodes: make(map[string]*Node)}
	if err := t.add(root); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) add(s *Spec) error {
	if s.Path == "" {
		return fmt.Errorf("%w: %q has no path", ErrInvalidNode, s.Name)
	}
	if _, dup := t.nodes[s.Path]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, s.Path)
	}
	n := &Node{ID: s.ID, Name: s.Name, Kind: s.Kind, Path: s.Path}
	switch s.Kind {
	case KindFolder:
		if s.Content != "" || s.Language != "" {
			return fmt.Errorf("%w: folder %s carries file content", ErrInvalidNode, s.Path)
		}
		n.Children = make([]string, 0, len(s.Children))
	case KindFile:
		if len(s.Children) > 0 {
			return fmt.Errorf("%w: file %s has children", ErrInvalidNode, s.Path)
		}
		n.Content = s.Content
		n.Language = s.Language
	default:
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidNode, s.Path, s.Kind)
	}
	t.nodes[s.Path] = n
	for _, c := range s.Children {
		if c == nil {
			continue
		}
		if err := t.add(c); err != nil {
			return err
		}
		n.Children = append(n.Children, c.Path)
	}
	return nil
}

// Root returns the root folder.
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Find returns the node with the exact path, searching depth-first from the
// root. A missing path is reported with ok=false, never an error.
func (t *Tree) Find(path string) (*Node, bool) {
	n := t.find(t.root, path)
	return n, n != nil
}

func (t *Tree) find(at, path string) *Node {
	n := t.nodes[at]
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	for _, c := range n.Children {
		if found := t.find(c, path); found != nil {
			return found
		}
	}
	return nil
}

// FolderContents lists the children of the folder at path, in order. Missing
// paths and files yield an empty listing.
func (t *Tree) FolderContents(path string) []*Node {
	n, ok := t.Find(path)
	if !ok || !n.IsFolder() {
		return []*Node{}
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, t.nodes[c])
	}
	return out
}

// Breadcrumbs walks path segment by segment from the root. The root crumb is
// always first; the walk stops at the first segment with no matching child.
func (t *Tree) Breadcrumbs(path string) []Crumb {
	cur := t.Root()
	crumbs := []Crumb{{Name: cur.Name, Path: cur.Path}}
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		next := t.child(cur, part)
		if next == nil {
			break
		}
		cur = next
		crumbs = append(crumbs, Crumb{Name: cur.Name, Path: cur.Path})
	}
	return crumbs
}

func (t *Tree) child(n *Node, name string) *Node {
	for _, c := range n.Children {
		if cn := t.nodes[c]; cn != nil && cn.Name == name {
			return cn
		}
	}
	return nil
}

// Files returns every file node in depth-first order.
func (t *Tree) Files() []*Node {
	var out []*Node
	var walk func(string)
	walk = func(p string) {
		n := t.nodes[p]
		if n == nil {
			return
		}
		if !n.IsFolder() {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// ParentPath returns the parent of path, or "" when path is at or directly
// under the root.
func ParentPath(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) <= 1 {
		return ""
	}
	return "/" + strings.Join(parts[:len(parts)-1], "/")
}
