// Package run models prompt-submission attempts (threads and sessions), the
// step-by-step trajectories they record, and the simulated, cancellable
// execution that produces those trajectories.
package run

import "time"

// Status is the lifecycle state of a session or thread.
type Status string

const (
	StatusReady     Status = "ready"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StepType classifies a trajectory step.
type StepType string

const (
	StepMessage  StepType = "message"
	StepToolCall StepType = "tool_call"
	StepResult   StepType = "result"
	StepError    StepType = "error"
)

// Step is one recorded entry in a trajectory.
type Step struct {
	ID        string    `json:"id" yaml:"id"`
	Type      StepType  `json:"type" yaml:"type"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Expanded  bool      `json:"expanded,omitempty" yaml:"expanded,omitempty"`
}

// Collapsible reports whether a renderer should fold the step by default:
// tool calls, results, and anything longer than 200 characters.
func (s Step) Collapsible() bool {
	return s.Type == StepToolCall || s.Type == StepResult || len(s.Content) > 200
}

// Session is one submission of a prompt to a model within a thread.
type Session struct {
	ID          string     `json:"id" yaml:"id"`
	ThreadID    string     `json:"thread_id" yaml:"thread_id"`
	Prompt      string     `json:"prompt" yaml:"prompt"`
	Model       string     `json:"model" yaml:"model"`
	Status      Status     `json:"status" yaml:"status"`
	Trajectory  []Step     `json:"trajectory" yaml:"trajectory"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	// Cancelled is set when a user cancellation ended the run. The status is
	// still failed; this field keeps the two causes distinguishable.
	Cancelled bool   `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Err       string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (s Session) clone() Session {
	s.Trajectory = append([]Step(nil), s.Trajectory...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}

// Thread groups the sessions submitted from one run tab.
type Thread struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Status    Status    `json:"status" yaml:"status"`
	Sessions  []Session `json:"sessions" yaml:"sessions"`
}

// Latest returns the most recent session, if any.
func (t Thread) Latest() (Session, bool) {
	if len(t.Sessions) == 0 {
		return Session{}, false
	}
	return t.Sessions[len(t.Sessions)-1], true
}

func (t Thread) clone() Thread {
	sessions := make([]Session, len(t.Sessions))
	for i, s := range t.Sessions {
		sessions[i] = s.clone()
	}
	t.Sessions = sessions
	return t
}
