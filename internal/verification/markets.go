// Package verification resolves prediction outcomes against real results
// under the shared provider quota.
package verification

import (
	"fmt"
	"strings"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
)

// Market is the enumerated market taxonomy. Loose market names from
// providers resolve into exactly one of these before any extraction runs,
// so ambiguous substring checks never reach the outcome logic.
type Market string

const (
	MarketCorners       Market = "corners"
	MarketYellowCards   Market = "yellow_cards"
	MarketShotsOnTarget Market = "shots_on_target"
	MarketShots         Market = "shots"
	MarketGoals         Market = "goals"
	MarketFouls         Market = "fouls"
	MarketOffsides      Market = "offsides"
)

// extractor pulls the actual total for a market from an event result
type extractor func(*provider.EventResult) (float64, bool)

func statTotal(key string) extractor {
	return func(r *provider.EventResult) (float64, bool) {
		return r.Total(key)
	}
}

// marketExtractors maps every taxonomy entry onto its extraction function
var marketExtractors = map[Market]extractor{
	MarketCorners:       statTotal("corners"),
	MarketYellowCards:   statTotal("yellow_cards"),
	MarketShotsOnTarget: statTotal("shots_on_target"),
	MarketShots:         statTotal("shots"),
	MarketGoals:         statTotal("goals"),
	MarketFouls:         statTotal("fouls"),
	MarketOffsides:      statTotal("offsides"),
}

// marketAlias resolves a loose name fragment onto a taxonomy entry.
// Order matters: more specific fragments come first.
type marketAlias struct {
	fragment string
	market   Market
}

var marketAliases = []marketAlias{
	{"shot on target", MarketShotsOnTarget},
	{"shots on target", MarketShotsOnTarget},
	{"corner", MarketCorners},
	{"yellow", MarketYellowCards},
	{"booking", MarketYellowCards},
	{"card", MarketYellowCards},
	{"shot", MarketShots},
	{"goal", MarketGoals},
	{"foul", MarketFouls},
	{"offside", MarketOffsides},
}

// ResolveMarket maps a raw market key onto the taxonomy. Exact taxonomy
// names win; otherwise the ordered alias fragments decide.
func ResolveMarket(key string) (Market, bool) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, ok := marketExtractors[Market(normalized)]; ok {
		return Market(normalized), true
	}

	for _, alias := range marketAliases {
		if strings.Contains(normalized, alias.fragment) {
			return alias.market, true
		}
	}
	return "", false
}

// ActualValue resolves the final total for the prediction's market key.
// Returns models.ErrUnsupportedMarket when no taxonomy entry matches or the
// result carries no figure for it.
func ActualValue(result *provider.EventResult, marketKey string) (float64, error) {
	market, ok := ResolveMarket(marketKey)
	if !ok {
		return 0, fmt.Errorf("market %q: %w", marketKey, models.ErrUnsupportedMarket)
	}

	extract := marketExtractors[market]
	value, ok := extract(result)
	if !ok {
		return 0, fmt.Errorf("market %q has no recorded total: %w", marketKey, models.ErrUnsupportedMarket)
	}
	return value, nil
}
