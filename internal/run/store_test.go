package run_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fakeyudi/skillbench/internal/run"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 14, 10, 30, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seedThreads() []run.Thread {
	return []run.Thread{
		{ID: "thread-1", Name: "Figma Blog Run", Status: run.StatusCompleted, Sessions: []run.Session{
			{ID: "session-1-1", ThreadID: "thread-1", Status: run.StatusCompleted},
		}},
		{ID: "thread-4", Name: "Test Run 4", Status: run.StatusReady},
	}
}

func TestCreateThreadPrependsAndNames(t *testing.T) {
	store := run.NewStore(seedThreads(), run.WithClock(fixedClock()))

	th := store.CreateThread("")
	if th.ID != "thread-3" || th.Name != "Run 3" {
		t.Errorf("CreateThread(\"\") = %s %q, want thread-3 \"Run 3\"", th.ID, th.Name)
	}
	if th.Status != run.StatusReady {
		t.Errorf("new thread status = %s, want ready", th.Status)
	}
	threads := store.Threads()
	if len(threads) != 3 || threads[0].ID != th.ID {
		t.Fatalf("new thread should be first, got %+v", threads)
	}

	// thread-4 is taken by the seed, so the counter skips it.
	named := store.CreateThread("a")
	if named.ID != "thread-5" || named.Name != "a" {
		t.Errorf("second CreateThread = %s %q, want thread-5 \"a\"", named.ID, named.Name)
	}
}

func TestCreateSessionMirrorsThreadStatus(t *testing.T) {
	store := run.NewStore(seedThreads(), run.WithClock(fixedClock()))

	sess, err := store.CreateSession("thread-4", "hello", "GPT-4")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.Status != run.StatusRunning || sess.CompletedAt != nil {
		t.Errorf("new session = %+v", sess)
	}
	th, _ := store.Thread("thread-4")
	if th.Status != run.StatusRunning {
		t.Errorf("thread status = %s, want running", th.Status)
	}

	if _, err := store.CreateSession("thread-4", "again", "GPT-4"); !errors.Is(err, run.ErrRunActive) {
		t.Errorf("second CreateSession while running: want ErrRunActive, got %v", err)
	}
	if _, err := store.CreateSession("thread-99", "x", "y"); !errors.Is(err, run.ErrUnknownThread) {
		t.Errorf("unknown thread: want ErrUnknownThread, got %v", err)
	}

	done, err := store.Finish(sess.ID, run.Outcome{Status: run.StatusCompleted})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if done.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}
	th, _ = store.Thread("thread-4")
	if th.Status != run.StatusCompleted {
		t.Errorf("thread status = %s, want completed", th.Status)
	}
}

func TestTerminalSessionRejectsWrites(t *testing.T) {
	store := run.NewStore(seedThreads(), run.WithClock(fixedClock()))
	sess, err := store.CreateSession("thread-4", "p", "m")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	first, err := store.Finish(sess.ID, run.Outcome{Status: run.StatusFailed, Err: errors.New("boom")})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if first.Err != "boom" {
		t.Errorf("Err = %q, want boom", first.Err)
	}

	if err := store.AppendStep(sess.ID, run.Step{ID: "late"}); !errors.Is(err, run.ErrSessionTerminal) {
		t.Errorf("AppendStep after finish: want ErrSessionTerminal, got %v", err)
	}
	again, err := store.Finish(sess.ID, run.Outcome{Status: run.StatusCompleted})
	if !errors.Is(err, run.ErrSessionTerminal) {
		t.Errorf("second Finish: want ErrSessionTerminal, got %v", err)
	}
	if again.Status != run.StatusFailed || !again.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("terminal session changed: %+v", again)
	}
	if _, err := store.Finish(sess.ID, run.Outcome{Status: run.StatusRunning}); err == nil {
		t.Error("Finish with non-terminal status should fail")
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	store := run.NewStore(seedThreads())
	sess, err := store.CreateSession("thread-4", "p", "m")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := store.AppendStep(sess.ID, run.Step{ID: "s1"}); err != nil {
		t.Fatalf("AppendStep: %v", err)
	}
	snap, _ := store.Session(sess.ID)
	snap.Trajectory[0].Content = "mutated"
	fresh, _ := store.Session(sess.ID)
	if fresh.Trajectory[0].Content == "mutated" {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	cases := map[time.Duration]string{
		30 * time.Second: "Just now",
		5 * time.Minute:  "5m ago",
		3 * time.Hour:    "3h ago",
		50 * time.Hour:   "2d ago",
	}
	for ago, want := range cases {
		if got := run.FormatTimeAgo(now.Add(-ago), now); got != want {
			t.Errorf("FormatTimeAgo(-%s) = %q, want %q", ago, got, want)
		}
	}
}
