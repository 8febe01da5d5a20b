package schedule

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct {
	now     time.Time
	pending []func()
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	f.pending = append(f.pending, fn)
	return fakeTimer{}
}

type fakeTimer struct{}

func (fakeTimer) Stop() bool { return false }

func TestAfterRunsOnFire(t *testing.T) {
	clock := &fakeClock{}
	s := New(zap.NewNop())
	s.WithClock(clock)

	ran := false
	s.After(time.Minute, "test", func() { ran = true })

	if ran {
		t.Fatalf("action ran before the timer fired")
	}
	if len(clock.pending) != 1 {
		t.Fatalf("expected 1 pending action, got %d", len(clock.pending))
	}
	clock.pending[0]()
	if !ran {
		t.Fatalf("action did not run")
	}
}

func TestAfterContainsPanics(t *testing.T) {
	clock := &fakeClock{}
	s := New(zap.NewNop())
	s.WithClock(clock)

	s.After(time.Minute, "exploding", func() { panic("boom") })
	// Must not propagate.
	clock.pending[0]()
}
