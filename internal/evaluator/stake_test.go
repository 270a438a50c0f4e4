package evaluator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitsForOdds(t *testing.T) {
	tests := []struct {
		odds  float64
		units string
	}{
		{1.50, "1"},
		{2.00, "1"},
		{2.01, "0.75"},
		{2.75, "0.75"},
		{3.00, "0.5"},
		{4.00, "0.5"},
		{5.50, "0.25"},
		{7.00, "0.25"},
		{7.01, "0.1"},
		{12.00, "0.1"},
	}

	for _, tt := range tests {
		want, err := decimal.NewFromString(tt.units)
		require.NoError(t, err)
		assert.True(t, unitsForOdds(tt.odds).Equal(want), "unitsForOdds(%.2f) = %s, want %s", tt.odds, unitsForOdds(tt.odds), want)
	}
}

func TestNewOpportunityStakeSizing(t *testing.T) {
	best := QuoteEvaluation{
		Quote:       quote("bet365", 2.25),
		EVPercent:   35.0,
		EdgePercent: 15.56,
		Rating:      RatingExcellent,
	}

	opp := newOpportunity(best, 100)

	// 2.25 falls in the 0.75u bracket: stake 75.00, profit 75 * 1.25
	assert.True(t, opp.RecommendedStake.Equal(decimal.NewFromFloat(75.00)), "stake = %s", opp.RecommendedStake)
	assert.True(t, opp.PotentialProfit.Equal(decimal.NewFromFloat(93.75)), "profit = %s", opp.PotentialProfit)
	assert.Equal(t, "bet365", opp.Bookmaker)
	assert.Equal(t, RatingExcellent, opp.Rating)
}

func TestNewOpportunityLongShot(t *testing.T) {
	best := QuoteEvaluation{Quote: quote("unibet", 9.00), EVPercent: 8.0, Rating: RatingGood}

	opp := newOpportunity(best, 50)

	// 0.10u of a 50 unit value
	assert.True(t, opp.RecommendedStake.Equal(decimal.NewFromFloat(5.00)), "stake = %s", opp.RecommendedStake)
	assert.True(t, opp.PotentialProfit.Equal(decimal.NewFromFloat(40.00)), "profit = %s", opp.PotentialProfit)
}
