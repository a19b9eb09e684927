package ai

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// usageEntry records a burst of requests at a point in time
type usageEntry struct {
	at    time.Time
	count int
}

// Limiter bounds AI requests per user per UTC day. State is process-local
// and intentionally not persisted: a restart resets everyone's quota.
type Limiter struct {
	mu           sync.Mutex
	usage        map[uuid.UUID][]usageEntry
	defaultLimit int
	now          func() time.Time
}

// NewLimiter creates a limiter with the given default daily limit
func NewLimiter(defaultLimit int) *Limiter {
	return &Limiter{
		usage:        make(map[uuid.UUID][]usageEntry),
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// DefaultLimit returns the limit applied when no per-user override is set
func (l *Limiter) DefaultLimit() int {
	return l.defaultLimit
}

// startOfUTCDay returns midnight UTC of the given time's day
func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Check reports whether the user may make another request today.
// customLimit overrides the default when greater than zero. The returned
// reset time is the next UTC midnight.
func (l *Limiter) Check(userID uuid.UUID, customLimit int) (allowed bool, remaining int, reset time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := l.defaultLimit
	if customLimit > 0 {
		limit = customLimit
	}

	now := l.now()
	dayStart := startOfUTCDay(now)
	reset = dayStart.Add(24 * time.Hour)

	used := l.pruneAndSum(userID, dayStart)

	remaining = limit - used
	if remaining < 0 {
		remaining = 0
	}
	return used < limit, remaining, reset
}

// Increment records one request for the user
func (l *Limiter) Increment(userID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entries := l.usage[userID]
	// never coalesce across the UTC day boundary, or the midnight prune
	// would drop requests that belong to the new day
	if n := len(entries); n > 0 && now.Sub(entries[n-1].at) < time.Minute &&
		startOfUTCDay(entries[n-1].at).Equal(startOfUTCDay(now)) {
		entries[n-1].count++
		l.usage[userID] = entries
		return
	}
	l.usage[userID] = append(entries, usageEntry{at: now, count: 1})
}

// Usage returns the number of requests the user has made today
func (l *Limiter) Usage(userID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pruneAndSum(userID, startOfUTCDay(l.now()))
}

// pruneAndSum drops entries before dayStart and sums the remainder.
// Caller must hold the mutex.
func (l *Limiter) pruneAndSum(userID uuid.UUID, dayStart time.Time) int {
	entries := l.usage[userID]
	kept := entries[:0]
	total := 0
	for _, e := range entries {
		if e.at.UTC().Before(dayStart) {
			continue
		}
		kept = append(kept, e)
		total += e.count
	}
	if len(kept) == 0 {
		delete(l.usage, userID)
	} else {
		l.usage[userID] = kept
	}
	return total
}
