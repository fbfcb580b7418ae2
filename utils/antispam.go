package utils

import (
	"sync"
	"time"
)

// WindowLimiter is an in-memory sliding-window limiter per (guild, channel).
// It limits to at most maxEvents within window. Process-local by design:
// it guards burst spam at the edge, while durable cooldowns handle the
// per-user posting cadence.
type WindowLimiter struct {
	window    time.Duration
	maxEvents int

	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewWindowLimiter creates a limiter allowing maxEvents per window per key.
func NewWindowLimiter(window time.Duration, maxEvents int) *WindowLimiter {
	return &WindowLimiter{
		window:    window,
		maxEvents: maxEvents,
		hits:      make(map[string][]time.Time),
	}
}

// Allow records an event for (guildID, channelID) and reports whether it is
// within the limit.
func (l *WindowLimiter) Allow(guildID, channelID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	key := guildID + "/" + channelID
	cutoff := now.Add(-l.window)

	q := l.hits[key]
	kept := q[:0]
	for _, t := range q {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.maxEvents {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// Remaining reports how many events are left in the current window.
func (l *WindowLimiter) Remaining(guildID, channelID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.maxEvents - len(l.hits[guildID+"/"+channelID])
	if remaining < 0 {
		return 0
	}
	return remaining
}
