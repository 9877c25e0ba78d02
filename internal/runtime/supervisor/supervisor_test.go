package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoRunsAndStops(t *testing.T) {
	t.Parallel()
	s := New(context.Background())

	var ran atomic.Bool
	s.Go("worker", func(ctx context.Context) {
		ran.Store(true)
		<-ctx.Done()
	})

	time.Sleep(20 * time.Millisecond)
	if !ran.Load() {
		t.Fatal("goroutine never ran")
	}
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	s.Go("panicky", func(ctx context.Context) {
		panic("boom")
	})
	// Stop returning without the process dying is the assertion.
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStopTimeout(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	release := make(chan struct{})
	defer close(release)
	s.Go("stubborn", func(ctx context.Context) {
		<-release // ignores ctx on purpose
	})

	if err := s.Stop(50 * time.Millisecond); err == nil {
		t.Fatal("expected timeout error for goroutine that ignores ctx")
	}
}

func TestParentCancelPropagates(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx)

	done := make(chan struct{})
	s.Go("worker", func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not reach goroutine")
	}
}
