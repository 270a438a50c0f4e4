package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MaxCallsPerDay:       100,
		MaxCallsPerHour:      3,
		MinDelayBetweenCalls: 0,
	}
}

// limiterAt returns a limiter with a controllable clock
func limiterAt(cfg Config, start time.Time) (*QuotaLimiter, *time.Time) {
	current := start
	l := NewQuotaLimiter(cfg, nil)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestCanCallFreshLimiter(t *testing.T) {
	l, _ := limiterAt(testConfig(), time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC))

	decision, err := l.CanCall()
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 100, decision.RemainingDaily)
	assert.Equal(t, 3, decision.RemainingHourly)
}

func TestHourlyLimitAndRollover(t *testing.T) {
	start := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	l, clock := limiterAt(testConfig(), start)

	for i := 0; i < 3; i++ {
		decision, err := l.CanCall()
		require.NoError(t, err)
		require.True(t, decision.Allowed)
		require.NoError(t, l.RecordCall("verify"))
		*clock = clock.Add(time.Minute)
	}

	decision, err := l.CanCall()
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonHourlyLimit, decision.Reason)
	assert.Equal(t, 0, decision.RemainingHourly)
	assert.Greater(t, decision.WaitTime, time.Duration(0))

	// After the hour rolls over the counter is lazily reset
	*clock = time.Date(2025, 3, 8, 11, 0, 1, 0, time.UTC)
	decision, err = l.CanCall()
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 3, decision.RemainingHourly)
	// The daily counter survives the hour change
	assert.Equal(t, 97, decision.RemainingDaily)
}

func TestDailyLimit(t *testing.T) {
	cfg := Config{MaxCallsPerDay: 2, MaxCallsPerHour: 100}
	start := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	l, clock := limiterAt(cfg, start)

	require.NoError(t, l.RecordCall("verify"))
	require.NoError(t, l.RecordCall("verify"))

	decision, err := l.CanCall()
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonDailyLimit, decision.Reason)

	// Daily reset on calendar-day change
	*clock = start.AddDate(0, 0, 1)
	decision, err = l.CanCall()
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 2, decision.RemainingDaily)
}

func TestDailyCheckedBeforeHourly(t *testing.T) {
	cfg := Config{MaxCallsPerDay: 1, MaxCallsPerHour: 1}
	l, _ := limiterAt(cfg, time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC))

	require.NoError(t, l.RecordCall("verify"))

	decision, err := l.CanCall()
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonDailyLimit, decision.Reason)
}

func TestMinDelayBetweenCalls(t *testing.T) {
	cfg := Config{MaxCallsPerDay: 100, MaxCallsPerHour: 100, MinDelayBetweenCalls: 10 * time.Second}
	start := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	l, clock := limiterAt(cfg, start)

	require.NoError(t, l.RecordCall("verify"))

	*clock = start.Add(4 * time.Second)
	decision, err := l.CanCall()
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonRateLimit, decision.Reason)
	assert.Equal(t, 6*time.Second, decision.WaitTime)

	*clock = start.Add(11 * time.Second)
	decision, err = l.CanCall()
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRecordCallHistoryBounded(t *testing.T) {
	cfg := Config{MaxCallsPerDay: 1000, MaxCallsPerHour: 1000}
	start := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	l, clock := limiterAt(cfg, start)

	for i := 0; i < 150; i++ {
		require.NoError(t, l.RecordCall("verify"))
		*clock = clock.Add(time.Second)
	}

	history, err := l.History()
	require.NoError(t, err)
	assert.Len(t, history, 100)
	// Oldest entries were dropped: the first retained call is number 50
	assert.Equal(t, start.Add(50*time.Second), history[0].At)
}

func TestSharedStoreAcrossLimiters(t *testing.T) {
	store := NewMemoryStore()
	cfg := Config{MaxCallsPerDay: 100, MaxCallsPerHour: 2}
	start := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)

	a := NewQuotaLimiter(cfg, store)
	a.now = func() time.Time { return start }
	b := NewQuotaLimiter(cfg, store)
	b.now = func() time.Time { return start }

	require.NoError(t, a.RecordCall("verify"))
	require.NoError(t, b.RecordCall("verify"))

	// Both limiters see the shared budget as exhausted
	decision, err := a.CanCall()
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonHourlyLimit, decision.Reason)
}
