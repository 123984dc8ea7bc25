package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"pkt.systems/pslog"
)

// Speed names a latency preset for simulated runs.
type Speed string

const (
	SpeedFast   Speed = "fast"
	SpeedNormal Speed = "normal"
	SpeedSlow   Speed = "slow"
)

var speedDelays = map[Speed]time.Duration{
	SpeedFast:   30 * time.Millisecond,
	SpeedNormal: 100 * time.Millisecond,
	SpeedSlow:   300 * time.Millisecond,
}

// ParseSpeed validates a speed name.
func ParseSpeed(s string) (Speed, error) {
	sp := Speed(s)
	if _, ok := speedDelays[sp]; !ok {
		return "", fmt.Errorf("unknown stream speed %q (want fast, normal or slow)", s)
	}
	return sp, nil
}

// DelayRange returns the randomized per-step delay bounds for a preset:
// half to one and a half times its nominal delay.
func (s Speed) DelayRange() (lo, hi time.Duration) {
	d, ok := speedDelays[s]
	if !ok {
		d = speedDelays[SpeedNormal]
	}
	return d / 2, d + d/2
}

// Observer is called with a snapshot of the session after every change.
type Observer func(Session)

// Synthesizer produces the steps a run will replay.
type Synthesizer func(prompt, model string, start time.Time) ([]Step, error)

// Executor replays synthesized trajectories into the store with simulated
// latency.
type Executor struct {
	Store    *Store
	MinDelay time.Duration
	MaxDelay time.Duration

	// Optional hooks; zero values use the real clock, time.Sleep, and Synthesize.
	Now        func() time.Time
	Sleep      func(time.Duration)
	Jitter     func(lo, hi time.Duration) time.Duration
	Synthesize Synthesizer
}

// NewExecutor returns an executor with delays taken from speed.
func NewExecutor(store *Store, speed Speed) *Executor {
	lo, hi := speed.DelayRange()
	return &Executor{Store: store, MinDelay: lo, MaxDelay: hi}
}

// Execute submits prompt to thread threadID and replays the run until every
// step is appended, ctrl is cancelled, or a step fails. It returns an error
// only when the submission itself is rejected; run failures are recorded on
// the returned session.
func (e *Executor) Execute(ctx context.Context, ctrl *Controller, threadID, prompt, model string, observe Observer) (Session, error) {
	if err := ctrl.begin(); err != nil {
		return Session{}, err
	}
	sess, err := e.Store.CreateSession(threadID, prompt, model)
	if err != nil {
		ctrl.end(ControllerFailed)
		return Session{}, err
	}
	log := pslog.Ctx(ctx).With("thread", threadID, "session", sess.ID, "model", model)
	log.Info("run started")
	notify(observe, sess)

	out, state := e.replay(ctx, ctrl, sess, observe)
	final, ferr := e.Store.Finish(sess.ID, out)
	if ferr != nil {
		log.Warn("run finish rejected", "err", ferr)
	}
	ctrl.end(state)
	switch {
	case out.Cancelled:
		log.Info("run cancelled", "steps", len(final.Trajectory))
	case out.Err != nil:
		log.Error("run failed", "err", out.Err, "steps", len(final.Trajectory))
	default:
		log.Info("run completed", "steps", len(final.Trajectory))
	}
	notify(observe, final)
	return final, nil
}

func (e *Executor) replay(ctx context.Context, ctrl *Controller, sess Session, observe Observer) (out Outcome, state ControllerState) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Status: StatusFailed, Err: fmt.Errorf("run panicked: %v", r)}
			state = ControllerFailed
		}
	}()
	cancelled := func() bool { return ctrl.IsCancelled() || ctx.Err() != nil }
	asCancelled := Outcome{Status: StatusFailed, Cancelled: true}

	steps, err := e.synthesize(sess.Prompt, sess.Model)
	if err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("synthesize trajectory: %w", err)}, ControllerFailed
	}
	for _, step := range steps {
		if cancelled() {
			return asCancelled, ControllerCancelled
		}
		if err := ctrl.WaitIfPaused(ctx); err != nil {
			if errors.Is(err, ErrCancelled) || ctx.Err() != nil {
				return asCancelled, ControllerCancelled
			}
			return Outcome{Status: StatusFailed, Err: err}, ControllerFailed
		}
		e.sleep(e.jitter(e.MinDelay, e.MaxDelay))
		if err := e.Store.AppendStep(sess.ID, step); err != nil {
			return Outcome{Status: StatusFailed, Err: fmt.Errorf("append step %s: %w", step.ID, err)}, ControllerFailed
		}
		sess.Trajectory = append(sess.Trajectory, step)
		notify(observe, sess.clone())
	}
	return Outcome{Status: StatusCompleted}, ControllerCompleted
}

func (e *Executor) synthesize(prompt, model string) ([]Step, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	if e.Synthesize != nil {
		return e.Synthesize(prompt, model, now())
	}
	return Synthesize(prompt, model, now()), nil
}

func (e *Executor) sleep(d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (e *Executor) jitter(lo, hi time.Duration) time.Duration {
	if e.Jitter != nil {
		return e.Jitter(lo, hi)
	}
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func notify(o Observer, s Session) {
	if o != nil {
		o(s)
	}
}
