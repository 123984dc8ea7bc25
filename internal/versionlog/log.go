// Package versionlog holds the linear history of named skill snapshots.
package versionlog

import (
	"errors"
	"fmt"
	"sort"
)

// Record is a single named snapshot.
type Record struct {
	ID          string `yaml:"id" json:"id"`
	Number      int    `yaml:"number" json:"number"`
	Name        string `yaml:"name" json:"name"`
	Date        string `yaml:"date" json:"date"`
	IsCurrent   bool   `yaml:"is_current" json:"is_current"`
	ParentID    string `yaml:"parent_id,omitempty" json:"parent_id,omitempty"` // "" for the root version
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// IsRoot reports whether r has no parent.
func (r Record) IsRoot() bool { return r.ParentID == "" }

// ErrInvalidHistory is returned by New when the records do not form a single
// acyclic chain back to one root.
var ErrInvalidHistory = errors.New("invalid version history")

// Log is an immutable, validated set of records.
type Log struct {
	records []Record
	byID    map[string]int
}

// New validates records and returns a Log. Ids must be unique, every parent
// must exist, exactly one record is the root, and parent chains are acyclic.
func New(records []Record) (*Log, error) {
	l := &Log{
		records: append([]Record(nil), records...),
		byID:    make(map[string]int, len(records)),
	}
	roots := 0
	for i, r := range l.records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrInvalidHistory, i)
		}
		if _, dup := l.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidHistory, r.ID)
		}
		l.byID[r.ID] = i
		if r.IsRoot() {
			roots++
		}
	}
	if len(l.records) > 0 && roots != 1 {
		return nil, fmt.Errorf("%w: want exactly one root, found %d", ErrInvalidHistory, roots)
	}
	for _, r := range l.records {
		if !r.IsRoot() {
			if _, ok := l.byID[r.ParentID]; !ok {
				return nil, fmt.Errorf("%w: %s references unknown parent %s", ErrInvalidHistory, r.ID, r.ParentID)
			}
		}
	}
	for _, r := range l.records {
		// A chain longer than the record count must revisit a record.
		steps := 0
		for cur := r; !cur.IsRoot(); cur = l.records[l.byID[cur.ParentID]] {
			steps++
			if steps > len(l.records) {
				return nil, fmt.Errorf("%w: parent cycle through %s", ErrInvalidHistory, r.ID)
			}
		}
	}
	return l, nil
}

// Len returns the number of records.
func (l *Log) Len() int { return len(l.records) }

// ByID returns the record with the given id.
func (l *Log) ByID(id string) (Record, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Record{}, false
	}
	return l.records[i], true
}

// AllDescendingByNumber returns every record, highest number first. Ties keep
// their original order.
func (l *Log) AllDescendingByNumber() []Record {
	out := append([]Record(nil), l.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out
}

// AncestryPath returns the chain from the root version to id, inclusive. An
// unknown id yields an empty path.
func (l *Log) AncestryPath(id string) []Record {
	var path []Record
	r, ok := l.ByID(id)
	for ok {
		path = append(path, r)
		if r.IsRoot() {
			break
		}
		r, ok = l.ByID(r.ParentID)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Children returns the records whose parent is id, in original order.
func (l *Log) Children(id string) []Record {
	var out []Record
	for _, r := range l.records {
		if r.ParentID == id && id != "" {
			out = append(out, r)
		}
	}
	return out
}

// Seeded returns the record the history was authored with as current. The
// checked-out version at runtime lives in workspace state, not here.
func (l *Log) Seeded() (Record, bool) {
	for _, r := range l.records {
		if r.IsCurrent {
			return r, true
		}
	}
	return Record{}, false
}
