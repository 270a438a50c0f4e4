// Package evaluator compares modeled probabilities against live bookmaker
// prices to quantify expected value.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// Rating grades an EV percentage
type Rating string

const (
	RatingPoor      Rating = "poor"
	RatingFair      Rating = "fair"
	RatingGood      Rating = "good"
	RatingGreat     Rating = "great"
	RatingExcellent Rating = "excellent"
)

// Constraints restricts and parameterizes an evaluation
type Constraints struct {
	// PlayableBookmakers limits best-price selection to books the caller
	// can actually bet with. Empty means all quotes are playable.
	PlayableBookmakers []string
	// UnitValue is the bankroll fraction backing one stake unit
	UnitValue float64
}

// QuoteEvaluation holds per-quote value metrics
type QuoteEvaluation struct {
	Quote       models.BookmakerQuote `json:"quote"`
	EVPercent   float64               `json:"ev_percent"`
	EdgePercent float64               `json:"edge_percent"`
	Rating      Rating                `json:"rating"`
}

// Evaluation is the result of comparing a modeled probability against a
// set of bookmaker quotes
type Evaluation struct {
	Probability     float64           `json:"probability"`
	FairOdds        float64           `json:"fair_odds"`
	FairProbability float64           `json:"fair_probability"`
	Quotes          []QuoteEvaluation `json:"quotes"`
	BestOpportunity *Opportunity      `json:"best_opportunity,omitempty"`
	// HasValue is false for the expected "no value bet" case (best EV <= 0)
	HasValue bool `json:"has_value"`
	// Skipped marks a market where the playable subset yielded no quotes
	Skipped bool `json:"skipped,omitempty"`
}

// Evaluate computes fair odds, per-quote EV/edge, and the best playable
// opportunity for a modeled probability. A market without value is a normal
// structured result, not an error.
func Evaluate(probability float64, quotes []models.BookmakerQuote, constraints Constraints) (*Evaluation, error) {
	if probability <= 0 || probability > 1 {
		return nil, fmt.Errorf("probability %.4f: %w", probability, models.ErrInvalidProbability)
	}
	if len(quotes) == 0 {
		return nil, models.ErrNoQuotes
	}

	fairOdds := medianOdds(quotes)

	eval := &Evaluation{
		Probability:     probability,
		FairOdds:        fairOdds,
		FairProbability: 1 / fairOdds,
		Quotes:          make([]QuoteEvaluation, 0, len(quotes)),
	}

	for _, q := range quotes {
		ev := EVPercent(probability, q.Odds)
		eval.Quotes = append(eval.Quotes, QuoteEvaluation{
			Quote:       q,
			EVPercent:   ev,
			EdgePercent: EdgePercent(probability, q.Odds),
			Rating:      Grade(ev),
		})
	}

	best := bestPlayableQuote(eval.Quotes, constraints.PlayableBookmakers)
	if best == nil {
		// No playable book quotes this market; skip rather than fall
		// back to books the caller cannot use.
		eval.Skipped = true
		return eval, nil
	}

	eval.HasValue = best.EVPercent > 0
	eval.BestOpportunity = newOpportunity(*best, constraints.UnitValue)

	return eval, nil
}

// EVPercent is the expected value of one unit staked, as a percentage
func EVPercent(probability, odds float64) float64 {
	return (probability*odds - 1) * 100
}

// EdgePercent is the gap between modeled and quote-implied probability,
// as a percentage
func EdgePercent(probability, odds float64) float64 {
	return (probability - 1/odds) * 100
}

// Grade maps an EV percentage onto a coarse rating
func Grade(evPercent float64) Rating {
	switch {
	case evPercent <= 0:
		return RatingPoor
	case evPercent <= 5:
		return RatingFair
	case evPercent <= 10:
		return RatingGood
	case evPercent <= 20:
		return RatingGreat
	default:
		return RatingExcellent
	}
}

// medianOdds returns the median decimal price across quotes. The median is
// robust against a handful of aberrant bookmaker lines.
func medianOdds(quotes []models.BookmakerQuote) float64 {
	odds := make([]float64, len(quotes))
	for i, q := range quotes {
		odds[i] = q.Odds
	}
	sort.Float64s(odds)

	mid := len(odds) / 2
	if len(odds)%2 == 1 {
		return odds[mid]
	}
	return (odds[mid-1] + odds[mid]) / 2
}

// bestPlayableQuote picks the highest-priced quote among playable books
func bestPlayableQuote(quotes []QuoteEvaluation, playable []string) *QuoteEvaluation {
	playableSet := make(map[string]bool, len(playable))
	for _, name := range playable {
		playableSet[name] = true
	}

	var best *QuoteEvaluation
	for i := range quotes {
		if len(playableSet) > 0 && !playableSet[quotes[i].Quote.Bookmaker] {
			continue
		}
		if best == nil || quotes[i].Quote.Odds > best.Quote.Odds {
			best = &quotes[i]
		}
	}
	return best
}
