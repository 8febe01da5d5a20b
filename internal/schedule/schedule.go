// Package schedule provides the deferred-action capability used for timed
// unbans, lock expiries, reminder delivery, and giveaway conclusions.
// Timers are fire-and-forget: they are not persisted, and a process restart
// silently cancels everything pending.
package schedule

import (
	"time"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

type realTimer struct{ t *time.Timer }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (t realTimer) Stop() bool { return t.t.Stop() }

func RealClock() Clock { return realClock{} }

type Scheduler struct {
	clock  Clock
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{clock: realClock{}, logger: logger}
}

func (s *Scheduler) WithClock(clock Clock) {
	s.clock = clock
}

// After runs f once d has elapsed. Panics inside f are contained so a
// misbehaving deferred action cannot take the process down.
func (s *Scheduler) After(d time.Duration, name string, f func()) {
	s.clock.AfterFunc(d, func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("deferred action panicked", zap.String("action", name), zap.Any("panic", r))
			}
		}()
		f()
	})
}
