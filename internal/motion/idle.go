package motion

import "time"

// IdleWatcher tracks the time since the last registered interaction and,
// once idle, runs the pausa hint trial regardless of the current band.
type IdleWatcher struct {
	after  time.Duration
	chance float64
	last   time.Time
}

func NewIdleWatcher(after time.Duration, chance float64) *IdleWatcher {
	return &IdleWatcher{after: after, chance: chance}
}

// Register records an interaction at t.
func (w *IdleWatcher) Register(t time.Time) {
	if t.After(w.last) {
		w.last = t
	}
}

func (w *IdleWatcher) Idle(now time.Time) bool {
	if w.last.IsZero() {
		return false
	}
	return now.Sub(w.last) > w.after
}

func (w *IdleWatcher) IdleFor(now time.Time) time.Duration {
	if w.last.IsZero() {
		return 0
	}
	return now.Sub(w.last)
}

// Tick runs the idle trial against c's pausa pool.
func (w *IdleWatcher) Tick(now time.Time, c *Classifier) (string, bool) {
	if !w.Idle(now) {
		return "", false
	}
	return c.TickWith(Pausa, w.chance)
}
