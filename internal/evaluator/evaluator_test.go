package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

func quote(bookmaker string, odds float64) models.BookmakerQuote {
	return models.BookmakerQuote{Bookmaker: bookmaker, Odds: odds}
}

func TestEVPercent(t *testing.T) {
	assert.InDelta(t, 35.0, EVPercent(0.60, 2.25), 1e-9)
	assert.InDelta(t, 0.0, EVPercent(0.50, 2.00), 1e-9)
	assert.InDelta(t, -10.0, EVPercent(0.45, 2.00), 1e-9)
}

func TestEdgePercent(t *testing.T) {
	// 0.60 - 1/2.25 = 0.15555...
	assert.InDelta(t, 15.5556, EdgePercent(0.60, 2.25), 1e-4)
}

func TestGrade(t *testing.T) {
	tests := []struct {
		ev   float64
		want Rating
	}{
		{-5, RatingPoor},
		{0, RatingPoor},
		{3, RatingFair},
		{5, RatingFair},
		{8, RatingGood},
		{10, RatingGood},
		{15, RatingGreat},
		{20, RatingGreat},
		{35, RatingExcellent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.ev), "Grade(%.1f)", tt.ev)
	}
}

func TestMedianFairOdds(t *testing.T) {
	quotes := []models.BookmakerQuote{
		quote("a", 2.80), quote("b", 2.90), quote("c", 3.00), quote("d", 3.00),
		quote("e", 3.05), quote("f", 3.10), quote("g", 3.15), quote("h", 3.20),
		quote("i", 3.25), quote("j", 3.50),
	}

	eval, err := Evaluate(1/3.075, quotes, Constraints{UnitValue: 100})
	require.NoError(t, err)

	assert.InDelta(t, 3.075, eval.FairOdds, 1e-9)
	assert.InDelta(t, 0.3252, eval.FairProbability, 1e-4)

	// The 3.50 outlier quote carries roughly +13.8% EV at the consensus probability
	var outlier *QuoteEvaluation
	for i := range eval.Quotes {
		if eval.Quotes[i].Quote.Odds == 3.50 {
			outlier = &eval.Quotes[i]
		}
	}
	require.NotNil(t, outlier)
	assert.InDelta(t, 13.82, outlier.EVPercent, 0.01)
}

func TestEvaluateInvalidProbability(t *testing.T) {
	quotes := []models.BookmakerQuote{quote("a", 2.0)}

	for _, p := range []float64{0, -0.2, 1.000001} {
		_, err := Evaluate(p, quotes, Constraints{})
		assert.ErrorIs(t, err, models.ErrInvalidProbability, "probability %v", p)
	}

	// Exactly 1.0 is a valid (if degenerate) probability
	_, err := Evaluate(1.0, quotes, Constraints{UnitValue: 100})
	assert.NoError(t, err)
}

func TestEvaluateNoQuotes(t *testing.T) {
	_, err := Evaluate(0.6, nil, Constraints{})
	assert.ErrorIs(t, err, models.ErrNoQuotes)
}

func TestEvaluateBestPriceSelection(t *testing.T) {
	quotes := []models.BookmakerQuote{
		quote("bet365", 2.10),
		quote("unibet", 2.25),
		quote("pinnacle", 2.20),
	}

	eval, err := Evaluate(0.60, quotes, Constraints{UnitValue: 100})
	require.NoError(t, err)
	require.NotNil(t, eval.BestOpportunity)

	assert.Equal(t, "unibet", eval.BestOpportunity.Bookmaker)
	assert.Equal(t, 2.25, eval.BestOpportunity.Odds)
	assert.True(t, eval.HasValue)
	assert.Equal(t, RatingExcellent, eval.BestOpportunity.Rating)
}

func TestEvaluatePlayableSubset(t *testing.T) {
	quotes := []models.BookmakerQuote{
		quote("bet365", 2.10),
		quote("unibet", 2.25),
	}

	constraints := Constraints{
		PlayableBookmakers: []string{"bet365"},
		UnitValue:          100,
	}

	eval, err := Evaluate(0.60, quotes, constraints)
	require.NoError(t, err)
	require.NotNil(t, eval.BestOpportunity)

	// The higher unibet price is not playable and must be ignored
	assert.Equal(t, "bet365", eval.BestOpportunity.Bookmaker)
}

func TestEvaluateEmptyPlayableSubsetSkips(t *testing.T) {
	quotes := []models.BookmakerQuote{
		quote("bet365", 2.10),
	}

	constraints := Constraints{
		PlayableBookmakers: []string{"pinnacle"},
		UnitValue:          100,
	}

	eval, err := Evaluate(0.60, quotes, constraints)
	require.NoError(t, err)
	assert.True(t, eval.Skipped)
	assert.Nil(t, eval.BestOpportunity)
	assert.False(t, eval.HasValue)
}

func TestEvaluateNoValueBetIsNotAnError(t *testing.T) {
	quotes := []models.BookmakerQuote{
		quote("bet365", 1.50),
	}

	eval, err := Evaluate(0.55, quotes, Constraints{UnitValue: 100})
	require.NoError(t, err)
	assert.False(t, eval.HasValue)
	require.NotNil(t, eval.BestOpportunity)
	assert.Equal(t, RatingPoor, eval.BestOpportunity.Rating)
}

// EV must be monotonically increasing in both probability and odds:
// no valid input pair may reverse the ordering.
func TestEVMonotonicity(t *testing.T) {
	probabilities := []float64{0.05, 0.2, 0.4, 0.6, 0.8, 0.95}
	odds := []float64{1.01, 1.5, 2.0, 3.5, 7.0, 15.0}

	for _, o := range odds {
		for i := 1; i < len(probabilities); i++ {
			lower := EVPercent(probabilities[i-1], o)
			higher := EVPercent(probabilities[i], o)
			assert.Greater(t, higher, lower, "EV not increasing in probability at odds %.2f", o)
		}
	}

	for _, p := range probabilities {
		for i := 1; i < len(odds); i++ {
			lower := EVPercent(p, odds[i-1])
			higher := EVPercent(p, odds[i])
			assert.Greater(t, higher, lower, "EV not increasing in odds at probability %.2f", p)
		}
	}
}
