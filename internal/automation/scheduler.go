package automation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	logx "vidforge/pkg/logx"
)

// State is the scheduler's lifecycle phase, exposed for observability.
type State int32

const (
	StateIdle State = iota
	StateDispatching
	StateWaiting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateWaiting:
		return "waiting"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config is the validated, immutable settings slice the scheduler runs on.
// Validation happens in the config package; the scheduler trusts its input
// except for the two fail-fast checks it owns (enabled, empty topics).
type Config struct {
	Enabled bool
	OneShot bool

	// Interval is the job-start to job-start spacing in daemon mode.
	Interval time.Duration

	// Schedule, when non-nil, overrides Interval: the next slot is the next
	// cron activation after the current job finishes.
	Schedule cron.Schedule

	Topics []string
	Mode   SelectionMode
}

// Scheduler owns the run loop. Single goroutine, single job in flight,
// selector state threaded through explicitly.
type Scheduler struct {
	cfg      Config
	disp     *Dispatcher
	recorder Recorder
	log      logx.Logger

	// clock is swappable for tests.
	clock func() time.Time

	state atomic.Int32
}

func NewScheduler(cfg Config, disp *Dispatcher, recorder Recorder, log logx.Logger) *Scheduler {
	if recorder == nil {
		recorder = RecorderFunc(func(Record) {})
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		cfg:      cfg,
		disp:     disp,
		recorder: recorder,
		log:      log,
		clock:    time.Now,
	}
}

// State reports the current lifecycle phase.
func (s *Scheduler) State() State { return State(s.state.Load()) }

func (s *Scheduler) setState(st State) { s.state.Store(int32(st)) }

// Run executes the scheduling loop until it terminates.
//
// Returns nil on clean termination (successful one-shot, or daemon stopped
// by ctx cancellation), ErrDisabled / ErrNoTopics on configuration
// fail-fast, and ErrJobFailed when a one-shot job did not succeed.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.setState(StateStopped)

	if !s.cfg.Enabled {
		s.log.Warn("automation is disabled in configuration; nothing to do")
		return ErrDisabled
	}
	if len(s.cfg.Topics) == 0 {
		s.log.Error("no video topics configured")
		return ErrNoTopics
	}

	if !s.cfg.OneShot {
		s.log.Info("automation daemon started",
			logx.Int("topics", len(s.cfg.Topics)),
			logx.String("mode", string(s.cfg.Mode)),
			logx.Duration("interval", s.cfg.Interval),
			logx.Bool("cron", s.cfg.Schedule != nil),
		)
	}

	state := NewSelectorState()
	for {
		start := s.clock()

		topic, next, err := NextTopic(state, s.cfg.Topics, s.cfg.Mode)
		if err != nil {
			return err
		}
		state = next

		job := Job{ID: uuid.New(), Topic: topic, StartedAt: start}

		s.setState(StateDispatching)
		out := s.disp.Run(ctx, job)
		finished := s.clock()

		s.report(job, out, finished.Sub(start))

		if s.cfg.OneShot {
			if out.Kind != OutcomeSuccess {
				return fmt.Errorf("%w: %s", ErrJobFailed, out.Kind)
			}
			return nil
		}

		delay := s.nextDelay(start, finished)
		s.setState(StateWaiting)
		s.log.Info("next job scheduled",
			logx.Time("at", finished.Add(delay)),
			logx.Duration("in", delay),
		)
		if !sleepCtx(ctx, delay) {
			s.log.Info("stop signal received; automation daemon stopping")
			return nil
		}
		s.setState(StateIdle)
	}
}

// nextDelay computes how long to wait after the iteration that began at
// start and finished at finished.
//
// Interval mode measures job start to job start: a slow job shortens the
// idle period, never lengthens it, and a job slower than the interval means
// the next one starts immediately. Cron mode fires at the next activation
// after the finish time.
func (s *Scheduler) nextDelay(start, finished time.Time) time.Duration {
	if s.cfg.Schedule != nil {
		return s.cfg.Schedule.Next(finished).Sub(finished)
	}
	delay := s.cfg.Interval - finished.Sub(start)
	if delay < 0 {
		return 0
	}
	return delay
}

// sleepCtx waits for d or until ctx is cancelled. Reports false when the
// wait was interrupted.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		// Still yield to cancellation between back-to-back jobs.
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Scheduler) report(job Job, out Outcome, took time.Duration) {
	rec := Record{
		Timestamp:       job.StartedAt,
		JobID:           job.ID,
		Topic:           job.Topic,
		Kind:            out.Kind,
		Cause:           out.Cause,
		Duration:        took,
		ArtifactRef:     out.ArtifactRef,
		UploadRequested: out.UploadRequested,
		UploadFailed:    out.UploadFailed,
	}
	if out.Err != nil {
		rec.Detail = out.Err.Error()
	}
	s.recorder.Record(rec)
}
