// Package transcript exports a finished run session so it can be shared or
// reopened later.
package transcript

import (
	"time"

	"github.com/fakeyudi/skillbench/internal/run"
)

// Transcript is the complete, renderable record of one run.
type Transcript struct {
	Thread     ThreadMeta  `json:"thread"`
	Session    run.Session `json:"session"`
	Version    string      `json:"version,omitempty"` // skill version checked out during the run
	ExportedAt time.Time   `json:"exported_at"`
}

// ThreadMeta identifies the thread the session belongs to.
type ThreadMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// New builds a transcript for sess, which must belong to th.
func New(th run.Thread, sess run.Session, version string, exportedAt time.Time) *Transcript {
	return &Transcript{
		Thread:     ThreadMeta{ID: th.ID, Name: th.Name},
		Session:    sess,
		Version:    version,
		ExportedAt: exportedAt,
	}
}

// Duration is the wall time from submission to completion, or zero while
// the session has not finished.
func (t *Transcript) Duration() time.Duration {
	if t.Session.CompletedAt == nil {
		return 0
	}
	return t.Session.CompletedAt.Sub(t.Session.CreatedAt)
}
