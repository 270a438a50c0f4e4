package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionIsPending(t *testing.T) {
	p := Prediction{}
	assert.True(t, p.IsPending(), "zero-value result counts as pending")

	p.Result.Outcome = OutcomePending
	assert.True(t, p.IsPending())

	p.Result.Outcome = OutcomeWon
	assert.False(t, p.IsPending())
	assert.True(t, p.IsVerified())
}

func TestSettleResult(t *testing.T) {
	now := time.Now()

	p := Prediction{Result: Result{Outcome: OutcomePending}}
	require.NoError(t, p.SettleResult(OutcomeWon, 11, now))
	assert.Equal(t, OutcomeWon, p.Result.Outcome)
	require.NotNil(t, p.Result.ActualValue)
	assert.Equal(t, 11.0, *p.Result.ActualValue)
	require.NotNil(t, p.Result.VerifiedAt)
	assert.Equal(t, now, *p.Result.VerifiedAt)
}

func TestSettleResultAlreadyVerified(t *testing.T) {
	p := Prediction{Result: Result{Outcome: OutcomeLost}}
	err := p.SettleResult(OutcomeWon, 3, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.Equal(t, OutcomeLost, p.Result.Outcome, "terminal outcome must not be overwritten")
}

func TestSettleResultRejectsNonTerminalOutcome(t *testing.T) {
	p := Prediction{Result: Result{Outcome: OutcomePending}}
	err := p.SettleResult(OutcomePending, 0, time.Now())
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestResetResult(t *testing.T) {
	actual := 7.0
	at := time.Now()
	p := Prediction{Result: Result{Outcome: OutcomePush, ActualValue: &actual, VerifiedAt: &at}}

	p.ResetResult()

	assert.Equal(t, OutcomePending, p.Result.Outcome)
	assert.Nil(t, p.Result.ActualValue)
	assert.Nil(t, p.Result.VerifiedAt)

	// Settling after an undo is valid again
	require.NoError(t, p.SettleResult(OutcomeWon, 9, at))
}

func TestSampleStat(t *testing.T) {
	s := Sample{Date: time.Now(), Stats: map[string]float64{"corners": 8}}

	v, ok := s.Stat("corners")
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)

	_, ok = s.Stat("cards")
	assert.False(t, ok)
	assert.False(t, s.HasStat("cards"))
}

func TestQuoteImpliedProbability(t *testing.T) {
	q := BookmakerQuote{Bookmaker: "bet365", Odds: 2.50}
	assert.InDelta(t, 0.40, q.ImpliedProbability(), 1e-9)

	zero := BookmakerQuote{Odds: 0}
	assert.Equal(t, 0.0, zero.ImpliedProbability())
}
