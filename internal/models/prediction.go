package models

import (
	"time"

	"github.com/google/uuid"
)

// BetSide represents the side of an over/under line
type BetSide string

const (
	BetSideOver  BetSide = "over"
	BetSideUnder BetSide = "under"
)

// Outcome represents the verification outcome of a prediction
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomePush    Outcome = "push"
)

// ConfidenceTier is a coarse reliability label for a probability estimate
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Result holds the verified outcome of a prediction
type Result struct {
	Outcome     Outcome    `db:"outcome" json:"outcome" validate:"required,oneof=pending won lost push"`
	ActualValue *float64   `db:"actual_value" json:"actual_value"`
	VerifiedAt  *time.Time `db:"verified_at" json:"verified_at"`
}

// Prediction represents a modeled over/under line for a single event market
type Prediction struct {
	ID          uuid.UUID      `db:"id" json:"id" validate:"required,uuid4"`
	EventID     string         `db:"event_id" json:"event_id" validate:"required"` // external event identifier
	HomeTeam    string         `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam    string         `db:"away_team" json:"away_team" validate:"required"`
	StatKey     string         `db:"stat_key" json:"stat_key" validate:"required"`
	Market      string         `db:"market" json:"market"`
	Line        float64        `db:"line" json:"line" validate:"required"`
	Side        BetSide        `db:"side" json:"side" validate:"required,oneof=over under"`
	Probability float64        `db:"probability" json:"probability" validate:"required,gt=0,lt=1"`
	FairOdds    float64        `db:"fair_odds" json:"fair_odds" validate:"required,gt=1"`
	Confidence  ConfidenceTier `db:"confidence" json:"confidence" validate:"required,oneof=high medium low"`
	SampleSize  int            `db:"sample_size" json:"sample_size"`
	KickoffTime time.Time      `db:"kickoff_time" json:"kickoff_time"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at" validate:"required"`
	Result      Result         `db:"result" json:"result"`
}

// IsPending checks if the prediction still awaits verification
func (p *Prediction) IsPending() bool {
	return p.Result.Outcome == OutcomePending || p.Result.Outcome == ""
}

// IsVerified checks if the prediction has reached a terminal outcome
func (p *Prediction) IsVerified() bool {
	switch p.Result.Outcome {
	case OutcomeWon, OutcomeLost, OutcomePush:
		return true
	}
	return false
}

// SettleResult applies a terminal outcome to the prediction.
// Returns ErrAlreadyVerified if the prediction is not pending.
func (p *Prediction) SettleResult(outcome Outcome, actual float64, at time.Time) error {
	if p.IsVerified() {
		return ErrAlreadyVerified
	}
	switch outcome {
	case OutcomeWon, OutcomeLost, OutcomePush:
	default:
		return ErrInvalidOutcome
	}
	p.Result.Outcome = outcome
	p.Result.ActualValue = &actual
	p.Result.VerifiedAt = &at
	return nil
}

// ResetResult undoes a terminal outcome back to pending. This is the only
// valid transition out of a terminal state.
func (p *Prediction) ResetResult() {
	p.Result = Result{Outcome: OutcomePending}
}
