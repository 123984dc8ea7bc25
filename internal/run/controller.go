package run

import (
	"context"
	"errors"
	"sync"
)

// ControllerState is the lifecycle of a single run's controller.
type ControllerState int

const (
	ControllerIdle ControllerState = iota
	ControllerRunning
	ControllerCompleted
	ControllerCancelled
	ControllerFailed
)

func (s ControllerState) String() string {
	switch s {
	case ControllerIdle:
		return "idle"
	case ControllerRunning:
		return "running"
	case ControllerCompleted:
		return "completed"
	case ControllerCancelled:
		return "cancelled"
	case ControllerFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrControllerUsed is returned when a controller is started a second time.
	ErrControllerUsed = errors.New("controller already used")
	// ErrCancelled is returned by WaitIfPaused when the run is cancelled.
	ErrCancelled = errors.New("run cancelled")
)

// Controller carries cooperative pause and cancel signals into one run.
// Cancel and pause only take effect at the run's check points. A controller
// drives exactly one run.
type Controller struct {
	mu        sync.Mutex
	state     ControllerState
	cancelled bool
	done      chan struct{} // closed on Cancel
	gate      chan struct{} // closed while not paused
}

// NewController returns an idle, unpaused controller.
func NewController() *Controller {
	gate := make(chan struct{})
	close(gate)
	return &Controller{done: make(chan struct{}), gate: gate}
}

// Cancel requests cancellation. Calling it more than once is harmless.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cancelled {
		c.cancelled = true
		close(c.done)
	}
}

// Pause holds the run at its next check point until Resume or Cancel.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.gate:
		c.gate = make(chan struct{})
	default:
	}
}

// Resume releases a paused run.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.gate:
	default:
		close(c.gate)
	}
}

// IsCancelled reports whether Cancel was called.
func (c *Controller) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// IsPaused reports whether the run is currently held.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.gate:
		return false
	default:
		return true
	}
}

// State returns the controller's lifecycle state.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WaitIfPaused blocks while the run is paused. It returns ErrCancelled if the
// run is cancelled while waiting, or the context error if ctx ends first.
func (c *Controller) WaitIfPaused(ctx context.Context) error {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	select {
	case <-c.done:
		return ErrCancelled
	default:
	}
	select {
	case <-gate:
		return nil
	case <-c.done:
		return ErrCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ControllerIdle {
		return ErrControllerUsed
	}
	c.state = ControllerRunning
	return nil
}

func (c *Controller) end(s ControllerState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ControllerRunning {
		c.state = s
	}
}
