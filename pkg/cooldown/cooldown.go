package cooldown

import (
	"sync"
	"time"
)

// Tracker remembers when each key last fired and suppresses re-firing within
// the cooldown period. Entries are never expired explicitly; they simply stop
// mattering once the period has elapsed. The map is bounded by evicting
// already-elapsed entries when it grows past max.
type Tracker struct {
	mu     sync.Mutex
	period time.Duration
	max    int
	last   map[string]time.Time
}

func New(period time.Duration, max int) *Tracker {
	if period <= 0 {
		period = time.Hour
	}
	if max <= 0 {
		max = 10000
	}
	return &Tracker{period: period, max: max, last: make(map[string]time.Time, max)}
}

// Allow reports whether key may fire at now, recording the firing when it may.
// An empty key always fires.
func (t *Tracker) Allow(key string, now time.Time) bool {
	if key == "" {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.last[key]; ok && now.Sub(last) < t.period {
		return false
	}
	t.last[key] = now
	if len(t.last) > t.max {
		for k, v := range t.last {
			if now.Sub(v) >= t.period {
				delete(t.last, k)
			}
			if len(t.last) <= t.max {
				break
			}
		}
	}
	return true
}

// Remaining reports how long key must still wait before it may fire again.
func (t *Tracker) Remaining(key string, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.last[key]
	if !ok {
		return 0
	}
	if d := t.period - now.Sub(last); d > 0 {
		return d
	}
	return 0
}
