// Package provider defines the collaborator contracts the engine consumes
// and the shared client infrastructure their implementations build on.
// Concrete wire formats live behind these interfaces.
package provider

import (
	"context"
	"errors"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// StatsProvider supplies ordered Sample sequences per entity and stat,
// most-recent-first.
type StatsProvider interface {
	// FetchSamples retrieves the recent historical samples for a team
	FetchSamples(ctx context.Context, teamID string, limit int) ([]models.Sample, error)

	// Name returns the name of the provider
	Name() string
}

// OddsProvider supplies bookmaker quotes and the events it prices
type OddsProvider interface {
	// FetchEvents retrieves the upcoming events the provider quotes
	FetchEvents(ctx context.Context) ([]models.EventRecord, error)

	// FetchQuotes retrieves quotes for an event market line
	FetchQuotes(ctx context.Context, eventID, market string, line float64, side models.BetSide) ([]models.BookmakerQuote, error)

	// Name returns the name of the provider
	Name() string
}

// ResultProvider reports finished-event results
type ResultProvider interface {
	// FetchResult retrieves the final result for an event.
	// Returns models.ErrMatchNotFound when the provider has no record and
	// models.ErrMatchNotFinished when the event has not concluded.
	FetchResult(ctx context.Context, eventID string) (*EventResult, error)

	// Name returns the name of the provider
	Name() string
}

// StatTotal is a per-stat final total with its home/away split
type StatTotal struct {
	Home  float64 `json:"home"`
	Away  float64 `json:"away"`
	Total float64 `json:"total"`
}

// EventResult represents the final per-stat totals of a finished event
type EventResult struct {
	EventID  string               `json:"event_id"`
	Finished bool                 `json:"finished"`
	Stats    map[string]StatTotal `json:"stats"`
}

// Total returns the combined total for a stat key and whether it was recorded
func (r *EventResult) Total(statKey string) (float64, bool) {
	t, ok := r.Stats[statKey]
	if !ok {
		return 0, false
	}
	return t.Total, true
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Common provider errors
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
