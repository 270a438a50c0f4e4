package models

import "time"

// BookmakerQuote represents one bookmaker's decimal price for an event market.
// Quotes are ephemeral: fetched fresh per evaluation and never owned by the engine.
type BookmakerQuote struct {
	Bookmaker  string    `json:"bookmaker" validate:"required"`
	Odds       float64   `json:"odds" validate:"required,gte=1.01"`
	ObservedAt time.Time `json:"observed_at"`
	SourceURL  string    `json:"source_url"`
}

// ImpliedProbability returns the probability implied by the quote's price
func (q *BookmakerQuote) ImpliedProbability() float64 {
	if q.Odds <= 0 {
		return 0
	}
	return 1.0 / q.Odds
}
