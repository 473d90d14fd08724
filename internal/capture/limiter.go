package capture

import (
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between evidence captures of one zone.
const DefaultInterval = 5 * time.Second

// Limiter gates evidence captures per zone. It never records on its own:
// the caller calls RecordCapture when it attempts a capture, whether or not
// the capture succeeds.
type Limiter struct {
	interval     time.Duration
	lastCaptures []time.Time // zero value means never captured
	mu           sync.Mutex
}

// NewLimiter creates a limiter. A non-positive interval selects DefaultInterval.
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{interval: interval}
}

// Interval returns the configured capture interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Sync resets every zone's capture window when the zone count changes.
func (l *Limiter) Sync(zoneCount int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.lastCaptures) != zoneCount {
		l.lastCaptures = make([]time.Time, zoneCount)
	}
}

// Reset forgets all capture times.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastCaptures = make([]time.Time, len(l.lastCaptures))
}

// ShouldCapture reports whether a capture for zone is due at now.
func (l *Limiter) ShouldCapture(zone int, alarmOn bool, now time.Time) bool {
	if !alarmOn {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if zone < 0 || zone >= len(l.lastCaptures) {
		return false
	}
	last := l.lastCaptures[zone]
	return last.IsZero() || now.Sub(last) >= l.interval
}

// RecordCapture starts a new capture window for zone at now.
func (l *Limiter) RecordCapture(zone int, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if zone < 0 || zone >= len(l.lastCaptures) {
		return
	}
	l.lastCaptures[zone] = now
}

// LastCaptures returns a copy of the last capture time of every zone.
func (l *Limiter) LastCaptures() []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]time.Time, len(l.lastCaptures))
	copy(out, l.lastCaptures)
	return out
}
