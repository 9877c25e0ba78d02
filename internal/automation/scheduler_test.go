package automation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidforge/internal/config"
	"vidforge/internal/generator"
	logx "vidforge/pkg/logx"
)

// captureRecorder collects records and optionally cancels the run once
// enough iterations have been observed.
type captureRecorder struct {
	mu     sync.Mutex
	recs   []Record
	stopAt int
	cancel context.CancelFunc
}

func (c *captureRecorder) Record(rec Record) {
	c.mu.Lock()
	c.recs = append(c.recs, rec)
	n := len(c.recs)
	c.mu.Unlock()
	if c.cancel != nil && n >= c.stopAt {
		c.cancel()
	}
}

func (c *captureRecorder) records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.recs...)
}

func newTestScheduler(cfg Config, client Client, timeout time.Duration, rec Recorder) *Scheduler {
	d := NewDispatcher(client, timeout, false, logx.Nop())
	return NewScheduler(cfg, d, rec, logx.Nop())
}

func TestSchedulerDisabledIsCleanNoOp(t *testing.T) {
	t.Parallel()
	client := &fakeClient{result: &generator.Result{}}
	s := newTestScheduler(Config{Enabled: false, Topics: []string{"a"}}, client, time.Second, nil)

	err := s.Run(context.Background())
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
	if client.calls != 0 {
		t.Fatalf("dispatched %d jobs, want 0", client.calls)
	}
	if s.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", s.State())
	}
}

func TestSchedulerEmptyTopicsFailsFast(t *testing.T) {
	t.Parallel()
	client := &fakeClient{result: &generator.Result{}}
	s := newTestScheduler(Config{Enabled: true}, client, time.Second, nil)

	err := s.Run(context.Background())
	if !errors.Is(err, ErrNoTopics) {
		t.Fatalf("err = %v, want ErrNoTopics", err)
	}
	if client.calls != 0 {
		t.Fatalf("dispatched %d jobs, want 0", client.calls)
	}
}

func TestOneShotSuccess(t *testing.T) {
	t.Parallel()
	client := &fakeClient{result: &generator.Result{ArtifactRef: "/videos/1.mp4"}}
	rec := &captureRecorder{}
	s := newTestScheduler(Config{
		Enabled: true, OneShot: true,
		Topics: []string{"first", "second"}, Mode: ModeSequential,
	}, client, time.Second, rec)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("dispatched %d jobs, want exactly 1", client.calls)
	}
	recs := rec.records()
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.Topic != "first" || r.Kind != OutcomeSuccess || r.ArtifactRef != "/videos/1.mp4" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if s.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", s.State())
	}
}

func TestOneShotFailureSignalsExitStatus(t *testing.T) {
	t.Parallel()
	client := &fakeClient{err: errors.New("boom")}
	rec := &captureRecorder{}
	s := newTestScheduler(Config{
		Enabled: true, OneShot: true,
		Topics: []string{"a"}, Mode: ModeSequential,
	}, client, time.Second, rec)

	err := s.Run(context.Background())
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("err = %v, want ErrJobFailed", err)
	}
	if client.calls != 1 {
		t.Fatalf("dispatched %d jobs, want exactly 1", client.calls)
	}
	if recs := rec.records(); len(recs) != 1 || recs[0].Kind != OutcomeFailure {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestDaemonDispatchesInSelectorOrder(t *testing.T) {
	t.Parallel()
	client := &fakeClient{result: &generator.Result{ArtifactRef: "ok"}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &captureRecorder{stopAt: 4, cancel: cancel}

	s := newTestScheduler(Config{
		Enabled:  true,
		Interval: 5 * time.Millisecond,
		Topics:   []string{"a", "b", "c"},
		Mode:     ModeSequential,
	}, client, time.Second, rec)

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	recs := rec.records()
	if len(recs) < 4 {
		t.Fatalf("got %d records, want >= 4", len(recs))
	}
	want := []string{"a", "b", "c", "a"}
	for i, w := range want {
		if recs[i].Topic != w {
			t.Fatalf("iteration %d dispatched %q, want %q", i, recs[i].Topic, w)
		}
	}
}

func TestDaemonContinuesAfterFailures(t *testing.T) {
	t.Parallel()
	client := &fakeClient{err: errors.New("backend down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &captureRecorder{stopAt: 3, cancel: cancel}

	s := newTestScheduler(Config{
		Enabled:  true,
		Interval: time.Millisecond,
		Topics:   []string{"a"},
		Mode:     ModeSequential,
	}, client, time.Second, rec)

	if err := s.Run(ctx); err != nil {
		t.Fatalf("daemon must not surface job failures, got: %v", err)
	}
	for _, r := range rec.records()[:3] {
		if r.Kind != OutcomeFailure {
			t.Fatalf("record kind = %s, want failure", r.Kind)
		}
	}
}

func TestDaemonTimeoutIsolation(t *testing.T) {
	t.Parallel()
	client := &fakeClient{block: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &captureRecorder{stopAt: 2, cancel: cancel}

	s := newTestScheduler(Config{
		Enabled:  true,
		Interval: time.Millisecond,
		Topics:   []string{"a"},
		Mode:     ModeSequential,
	}, client, 20*time.Millisecond, rec)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not keep iterating past timeouts")
	}

	recs := rec.records()
	if len(recs) < 2 {
		t.Fatalf("got %d records, want >= 2", len(recs))
	}
	if recs[0].Kind != OutcomeTimeout || recs[1].Kind != OutcomeTimeout {
		t.Fatalf("record kinds = %s, %s; want timeout, timeout", recs[0].Kind, recs[1].Kind)
	}
}

func TestNextDelayIntervalAccounting(t *testing.T) {
	t.Parallel()
	s := NewScheduler(Config{Interval: 10 * time.Minute}, nil, nil, logx.Nop())
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Fast job: remaining interval is what's left of the slot.
	if got := s.nextDelay(start, start.Add(3*time.Minute)); got != 7*time.Minute {
		t.Fatalf("nextDelay = %v, want 7m", got)
	}
	// Slow job: next dispatch starts immediately, never later.
	if got := s.nextDelay(start, start.Add(25*time.Minute)); got != 0 {
		t.Fatalf("nextDelay = %v, want 0", got)
	}
	// Exactly on the boundary.
	if got := s.nextDelay(start, start.Add(10*time.Minute)); got != 0 {
		t.Fatalf("nextDelay = %v, want 0", got)
	}
}

func TestNextDelayCronSchedule(t *testing.T) {
	t.Parallel()
	sched, err := config.ParseSchedule("@every 1h")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	s := NewScheduler(Config{Interval: time.Minute, Schedule: sched}, nil, nil, logx.Nop())

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := s.nextDelay(start, start.Add(10*time.Minute))
	// Cron overrides the interval; @every counts from the finish time.
	if got < 59*time.Minute || got > time.Hour {
		t.Fatalf("nextDelay = %v, want ~1h", got)
	}
}

func TestStopSignalInterruptsSleep(t *testing.T) {
	t.Parallel()
	client := &fakeClient{result: &generator.Result{}}
	s := newTestScheduler(Config{
		Enabled:  true,
		Interval: time.Hour, // the test must not wait this out
		Topics:   []string{"a"},
		Mode:     ModeSequential,
	}, client, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let the first job complete and the loop enter its sleep.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop signal did not interrupt the interval sleep")
	}
	if s.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", s.State())
	}
}
