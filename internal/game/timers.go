// internal/game/timers.go
package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// TimerRegistry owns at most one pending deadline callback per session
// code. It is constructed once at startup and injected into the
// Machine; StopAll drains it at shutdown.
//
// The registry entry is cleared before the callback runs, so the
// callback itself may arm a new timer for the same session. A callback
// that panics is logged and the slot still ends up clear; a stuck
// timer must never block future arms.
type TimerRegistry struct {
	clock clockwork.Clock
	log   *logrus.Logger

	mu      sync.Mutex
	entries map[string]*timerEntry
}

type timerEntry struct {
	timer clockwork.Timer
}

// NewTimerRegistry builds an empty registry on the given clock.
func NewTimerRegistry(clock clockwork.Clock, log *logrus.Logger) *TimerRegistry {
	return &TimerRegistry{
		clock:   clock,
		log:     log,
		entries: make(map[string]*timerEntry),
	}
}

// Arm replaces any pending timer for the session and schedules
// onExpire after d. Overwriting an active timer is a normal operation;
// it happens whenever a question is revealed early.
func (r *TimerRegistry) Arm(sessionCode string, d time.Duration, onExpire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.entries[sessionCode]; ok {
		prev.timer.Stop()
		delete(r.entries, sessionCode)
	}

	entry := &timerEntry{}
	entry.timer = r.clock.AfterFunc(d, func() {
		// Claim the slot before running. If the slot no longer holds this
		// entry the timer was cancelled or replaced between firing and
		// acquiring the lock; the cancellation wins and we do nothing.
		r.mu.Lock()
		current, ok := r.entries[sessionCode]
		if !ok || current != entry {
			r.mu.Unlock()
			r.log.Debugf("timer registry: stale timer fired for session %s, ignoring", sessionCode)
			return
		}
		delete(r.entries, sessionCode)
		r.mu.Unlock()

		defer func() {
			if rec := recover(); rec != nil {
				r.log.Errorf("timer registry: callback for session %s panicked: %v", sessionCode, rec)
			}
		}()
		onExpire()
	})
	r.entries[sessionCode] = entry
}

// Cancel stops the pending timer for the session, if any. Safe to call
// from both the early-reveal path and the fired-callback path.
func (r *TimerRegistry) Cancel(sessionCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[sessionCode]; ok {
		entry.timer.Stop()
		delete(r.entries, sessionCode)
	}
}

// Active reports whether a timer is pending for the session.
func (r *TimerRegistry) Active(sessionCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[sessionCode]
	return ok
}

// StopAll cancels every pending timer. Called at process shutdown.
func (r *TimerRegistry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, entry := range r.entries {
		entry.timer.Stop()
		delete(r.entries, code)
	}
}
