// Package ratelimit tracks the daily and hourly call budget against the
// result provider and caches finished-event results.
package ratelimit

import (
	"sync"
	"time"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
)

// Reason explains a rejected call
type Reason string

const (
	ReasonDailyLimit  Reason = "daily_limit"
	ReasonHourlyLimit Reason = "hourly_limit"
	ReasonRateLimit   Reason = "rate_limit"
)

// maxHistoryEntries bounds the rolling call history
const maxHistoryEntries = 100

// Config holds quota limits
type Config struct {
	MaxCallsPerDay       int
	MaxCallsPerHour      int
	MinDelayBetweenCalls time.Duration
}

// Decision is the outcome of a quota check
type Decision struct {
	Allowed         bool          `json:"allowed"`
	Reason          Reason        `json:"reason,omitempty"`
	RemainingDaily  int           `json:"remaining_daily"`
	RemainingHourly int           `json:"remaining_hourly"`
	WaitTime        time.Duration `json:"wait_time,omitempty"`
}

// CallRecord is one entry of the rolling call history
type CallRecord struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// State is the persistable limiter state. Counters reset lazily when the
// calendar day or hour changes relative to the stored markers.
type State struct {
	DailyCount  int          `json:"daily_count"`
	HourlyCount int          `json:"hourly_count"`
	LastCall    time.Time    `json:"last_call"`
	DayMarker   time.Time    `json:"day_marker"`
	HourMarker  time.Time    `json:"hour_marker"`
	History     []CallRecord `json:"history"`
}

// CounterStore persists limiter state. The in-memory default undercounts in
// a multi-process deployment; back it with a shared atomic store there.
type CounterStore interface {
	Load() (State, error)
	Save(State) error
}

// MemoryStore is the process-local CounterStore
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored state
func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

// Save replaces the stored state
func (m *MemoryStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

// QuotaLimiter gates and records every outbound call to the result provider
type QuotaLimiter struct {
	cfg   Config
	store CounterStore
	mu    sync.Mutex
	now   func() time.Time
}

// NewQuotaLimiter creates a limiter backed by the given store. A nil store
// falls back to process-local memory.
func NewQuotaLimiter(cfg Config, store CounterStore) *QuotaLimiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &QuotaLimiter{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// CanCall checks, in order, the daily cap, the hourly cap, and the minimum
// inter-call delay.
func (l *QuotaLimiter) CanCall() (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, err := l.store.Load()
	if err != nil {
		return Decision{}, err
	}
	state = resetStale(state, now)

	decision := Decision{
		RemainingDaily:  l.cfg.MaxCallsPerDay - state.DailyCount,
		RemainingHourly: l.cfg.MaxCallsPerHour - state.HourlyCount,
	}

	switch {
	case state.DailyCount >= l.cfg.MaxCallsPerDay:
		decision.Reason = ReasonDailyLimit
		decision.WaitTime = startOfNextDay(now).Sub(now)
	case state.HourlyCount >= l.cfg.MaxCallsPerHour:
		decision.Reason = ReasonHourlyLimit
		decision.WaitTime = startOfNextHour(now).Sub(now)
	case !state.LastCall.IsZero() && now.Sub(state.LastCall) < l.cfg.MinDelayBetweenCalls:
		decision.Reason = ReasonRateLimit
		decision.WaitTime = l.cfg.MinDelayBetweenCalls - now.Sub(state.LastCall)
	default:
		decision.Allowed = true
	}

	if !decision.Allowed {
		metrics.RecordQuotaRejection(string(decision.Reason))
	}
	metrics.UpdateRemainingCalls(decision.RemainingDaily, decision.RemainingHourly)

	if err := l.store.Save(state); err != nil {
		return Decision{}, err
	}
	return decision, nil
}

// RecordCall increments the counters, stamps the last-call time and appends
// to the bounded rolling history.
func (l *QuotaLimiter) RecordCall(label string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, err := l.store.Load()
	if err != nil {
		return err
	}
	state = resetStale(state, now)

	state.DailyCount++
	state.HourlyCount++
	state.LastCall = now
	state.History = append(state.History, CallRecord{Label: label, At: now})
	if len(state.History) > maxHistoryEntries {
		state.History = state.History[len(state.History)-maxHistoryEntries:]
	}

	metrics.UpdateRemainingCalls(
		l.cfg.MaxCallsPerDay-state.DailyCount,
		l.cfg.MaxCallsPerHour-state.HourlyCount,
	)

	return l.store.Save(state)
}

// History returns a copy of the rolling call history
func (l *QuotaLimiter) History() ([]CallRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	history := make([]CallRecord, len(state.History))
	copy(history, state.History)
	return history, nil
}

// resetStale zeroes counters whose calendar window has rolled over.
// Reset happens lazily on the next check or record, never via a timer.
func resetStale(state State, now time.Time) State {
	if !sameDay(state.DayMarker, now) {
		state.DailyCount = 0
		state.DayMarker = now
	}
	if !sameHour(state.HourMarker, now) {
		state.HourlyCount = 0
		state.HourMarker = now
	}
	return state
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameHour(a, b time.Time) bool {
	return sameDay(a, b) && a.Hour() == b.Hour()
}

func startOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func startOfNextHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}
