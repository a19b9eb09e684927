package ai

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLimiterExhaustsQuota(t *testing.T) {
	limiter := NewLimiter(3)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := limiter.Check(userID, 0)
		assert.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3-i, remaining)
		limiter.Increment(userID)
	}

	allowed, remaining, reset := limiter.Check(userID, 0)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// Reset is the next UTC midnight
	assert.Equal(t, time.UTC, reset.Location())
	assert.Equal(t, 0, reset.Hour())
	assert.True(t, reset.After(time.Now().UTC()))
}

func TestLimiterResetsAtUTCRollover(t *testing.T) {
	limiter := NewLimiter(2)
	userID := uuid.New()

	current := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.Increment(userID)
	limiter.Increment(userID)

	allowed, _, _ := limiter.Check(userID, 0)
	assert.False(t, allowed)

	// Clock crosses midnight UTC: quota is fresh
	current = time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)

	allowed, remaining, reset := limiter.Check(userID, 0)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), reset)
	assert.Equal(t, 0, limiter.Usage(userID))
}

func TestLimiterCountsRequestsJustAfterMidnight(t *testing.T) {
	limiter := NewLimiter(5)
	userID := uuid.New()

	current := time.Date(2026, 3, 10, 23, 59, 40, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.Increment(userID)

	// Within the coalescing window but on the new UTC day: the request
	// must open a fresh entry so the midnight prune cannot drop it.
	current = time.Date(2026, 3, 11, 0, 0, 10, 0, time.UTC)
	limiter.Increment(userID)

	assert.Equal(t, 1, limiter.Usage(userID))

	allowed, remaining, _ := limiter.Check(userID, 0)
	assert.True(t, allowed)
	assert.Equal(t, 4, remaining)
}

func TestLimiterCustomLimitPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		defaultLim  int
		customLim   int
		used        int
		wantAllowed bool
		wantRemain  int
	}{
		{name: "custom raises limit above default", defaultLim: 2, customLim: 5, used: 2, wantAllowed: true, wantRemain: 3},
		{name: "custom lowers limit below default", defaultLim: 10, customLim: 1, used: 1, wantAllowed: false, wantRemain: 0},
		{name: "zero custom falls back to default", defaultLim: 2, customLim: 0, used: 1, wantAllowed: true, wantRemain: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(tt.defaultLim)
			userID := uuid.New()
			for i := 0; i < tt.used; i++ {
				limiter.Increment(userID)
			}

			allowed, remaining, _ := limiter.Check(userID, tt.customLim)
			assert.Equal(t, tt.wantAllowed, allowed)
			assert.Equal(t, tt.wantRemain, remaining)
		})
	}
}

func TestLimiterIsolatesUsers(t *testing.T) {
	limiter := NewLimiter(1)
	userA := uuid.New()
	userB := uuid.New()

	limiter.Increment(userA)

	allowed, _, _ := limiter.Check(userA, 0)
	assert.False(t, allowed)

	allowed, remaining, _ := limiter.Check(userB, 0)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
}
