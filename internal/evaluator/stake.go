package evaluator

import (
	"github.com/shopspring/decimal"
)

// stakeBracket maps a best-odds ceiling onto a unit multiplier. Longer
// prices get smaller stakes.
type stakeBracket struct {
	maxOdds float64
	units   decimal.Decimal
}

var stakeBrackets = []stakeBracket{
	{maxOdds: 2.00, units: decimal.NewFromFloat(1.00)},
	{maxOdds: 2.75, units: decimal.NewFromFloat(0.75)},
	{maxOdds: 4.00, units: decimal.NewFromFloat(0.50)},
	{maxOdds: 7.00, units: decimal.NewFromFloat(0.25)},
}

// longShotUnits applies above the last bracket ceiling
var longShotUnits = decimal.NewFromFloat(0.10)

// Opportunity is the advisory best-price recommendation for a market
type Opportunity struct {
	Bookmaker        string          `json:"bookmaker"`
	Odds             float64         `json:"odds"`
	SourceURL        string          `json:"source_url,omitempty"`
	EVPercent        float64         `json:"ev_percent"`
	EdgePercent      float64         `json:"edge_percent"`
	Rating           Rating          `json:"rating"`
	StakeUnits       decimal.Decimal `json:"stake_units"`
	RecommendedStake decimal.Decimal `json:"recommended_stake"`
	PotentialProfit  decimal.Decimal `json:"potential_profit"`
}

// newOpportunity builds the advisory stake recommendation for the best quote
func newOpportunity(best QuoteEvaluation, unitValue float64) *Opportunity {
	units := unitsForOdds(best.Quote.Odds)
	stake := decimal.NewFromFloat(unitValue).Mul(units).Round(2)
	profit := stake.Mul(decimal.NewFromFloat(best.Quote.Odds - 1)).Round(2)

	return &Opportunity{
		Bookmaker:        best.Quote.Bookmaker,
		Odds:             best.Quote.Odds,
		SourceURL:        best.Quote.SourceURL,
		EVPercent:        best.EVPercent,
		EdgePercent:      best.EdgePercent,
		Rating:           best.Rating,
		StakeUnits:       units,
		RecommendedStake: stake,
		PotentialProfit:  profit,
	}
}

// unitsForOdds resolves the stake bracket for a decimal price
func unitsForOdds(odds float64) decimal.Decimal {
	for _, bracket := range stakeBrackets {
		if odds <= bracket.maxOdds {
			return bracket.units
		}
	}
	return longShotUnits
}
