package run

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrUnknownThread is returned when a thread id is not in the store.
	ErrUnknownThread = errors.New("unknown thread")
	// ErrUnknownSession is returned when a session id is not in the store.
	ErrUnknownSession = errors.New("unknown session")
	// ErrRunActive is returned when a thread already has a running session.
	ErrRunActive = errors.New("run already in progress")
	// ErrSessionTerminal is returned when writing to a completed or failed session.
	ErrSessionTerminal = errors.New("session already finished")
)

// Store is the in-memory record of threads and sessions. It is constructed
// once per workspace and passed to whoever reads or writes run records.
// Readers receive copies.
type Store struct {
	mu          sync.Mutex
	threads     []*Thread // newest first
	nextThread  int
	nextSession int
	now         func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for created/completed stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store seeded with the given threads, kept in the order
// given.
func NewStore(seed []Thread, opts ...StoreOption) *Store {
	s := &Store{
		nextThread:  len(seed) + 1,
		nextSession: 1,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	for _, t := range seed {
		t := t.clone()
		s.threads = append(s.threads, &t)
	}
	return s
}

// Threads returns every thread, newest first.
func (s *Store) Threads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Thread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t.clone()
	}
	return out
}

// Thread returns the thread with the given id.
func (s *Store) Thread(id string) (Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.threadLocked(id)
	if t == nil {
		return Thread{}, false
	}
	return t.clone(), true
}

// Session returns the session with the given id.
func (s *Store) Session(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, sess := s.sessionLocked(id)
	if sess == nil {
		return Session{}, false
	}
	return sess.clone(), true
}

// CreateThread adds a new ready thread at the front of the list. An empty
// name becomes "Run N".
func (s *Store) CreateThread(name string) Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	var id string
	n := s.nextThread
	for {
		id = fmt.Sprintf("thread-%d", s.nextThread)
		s.nextThread++
		if s.threadLocked(id) == nil {
			break
		}
	}
	if name == "" {
		name = fmt.Sprintf("Run %d", n)
	}
	t := &Thread{ID: id, Name: name, CreatedAt: s.now(), Status: StatusReady, Sessions: []Session{}}
	s.threads = append([]*Thread{t}, s.threads...)
	return t.clone()
}

// CreateSession appends a running session to the thread. Only one session per
// thread may be running at a time.
func (s *Store) CreateSession(threadID, prompt, model string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.threadLocked(threadID)
	if t == nil {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownThread, threadID)
	}
	if latest, ok := t.Latest(); ok && latest.Status == StatusRunning {
		return Session{}, fmt.Errorf("%w: thread %s session %s", ErrRunActive, threadID, latest.ID)
	}
	var id string
	for {
		id = fmt.Sprintf("session-%d", s.nextSession)
		s.nextSession++
		if _, sess := s.sessionLocked(id); sess == nil {
			break
		}
	}
	sess := Session{
		ID:         id,
		ThreadID:   threadID,
		Prompt:     prompt,
		Model:      model,
		Status:     StatusRunning,
		Trajectory: []Step{},
		CreatedAt:  s.now(),
	}
	t.Sessions = append(t.Sessions, sess)
	t.Status = StatusRunning
	return sess.clone(), nil
}

// AppendStep adds a step to a running session's trajectory.
func (s *Store) AppendStep(sessionID string, step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, sess := s.sessionLocked(sessionID)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if sess.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrSessionTerminal, sessionID)
	}
	sess.Trajectory = append(sess.Trajectory, step)
	return nil
}

// Outcome describes how a session ended.
type Outcome struct {
	Status    Status
	Cancelled bool
	Err       error
}

// Finish moves a session to a terminal status and stamps CompletedAt. The
// thread mirrors the status when the session is its most recent one.
func (s *Store) Finish(sessionID string, out Outcome) (Session, error) {
	if !out.Status.Terminal() {
		return Session{}, fmt.Errorf("finish session %s: %q is not a terminal status", sessionID, out.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, sess := s.sessionLocked(sessionID)
	if sess == nil {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if sess.Status.Terminal() {
		return sess.clone(), fmt.Errorf("%w: %s", ErrSessionTerminal, sessionID)
	}
	now := s.now()
	sess.Status = out.Status
	sess.CompletedAt = &now
	sess.Cancelled = out.Cancelled
	if out.Err != nil {
		sess.Err = out.Err.Error()
	}
	if latest, ok := t.Latest(); ok && latest.ID == sess.ID {
		t.Status = out.Status
	}
	return sess.clone(), nil
}

func (s *Store) threadLocked(id string) *Thread {
	for _, t := range s.threads {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) sessionLocked(id string) (*Thread, *Session) {
	for _, t := range s.threads {
		for i := range t.Sessions {
			if t.Sessions[i].ID == id {
				return t, &t.Sessions[i]
			}
		}
	}
	return nil, nil
}
