package matcher

import (
	"time"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// Match failure reasons reported to the caller
const (
	ReasonTeamsBelowThreshold = "Team similarity below threshold"
	ReasonDatesTooFarApart    = "Dates too far apart"
	ReasonLeaguesDoNotMatch   = "Leagues do not match"
	ReasonNoMatchingEvent     = "No matching event found"
)

// minLeagueSimilarity is the containment-level floor for competition labels
const minLeagueSimilarity = 0.5

// Options holds matcher thresholds
type Options struct {
	MinSimilarity float64
	DateWindow    time.Duration
	Aliases       map[string]string
}

// DefaultOptions returns the default matcher thresholds
func DefaultOptions() Options {
	return Options{
		MinSimilarity: 0.7,
		DateWindow:    24 * time.Hour,
		Aliases:       DefaultAliases(),
	}
}

// MatchResult describes the correspondence between two event records
type MatchResult struct {
	Matched          bool    `json:"matched"`
	Confidence       float64 `json:"confidence"`
	HomeSimilarity   float64 `json:"home_similarity"`
	AwaySimilarity   float64 `json:"away_similarity"`
	LeagueSimilarity float64 `json:"league_similarity,omitempty"`
	Reason           string  `json:"reason,omitempty"`
}

// EventMatch pairs a target record with its resolved counterpart
type EventMatch struct {
	Target models.EventRecord  `json:"target"`
	Event  *models.EventRecord `json:"event,omitempty"`
	Result MatchResult         `json:"result"`
}

// Match scores two differently-sourced event records. Both team-name
// similarities must clear the threshold, dates (when both present) must fall
// inside the window, and competition labels (when both present) must be
// recognizably similar. Pure function over its inputs.
func Match(a, b models.EventRecord, opts Options) MatchResult {
	homeSim := similarity(
		normalizeName(a.HomeTeam, opts.Aliases),
		normalizeName(b.HomeTeam, opts.Aliases),
	)
	awaySim := similarity(
		normalizeName(a.AwayTeam, opts.Aliases),
		normalizeName(b.AwayTeam, opts.Aliases),
	)

	result := MatchResult{
		HomeSimilarity: homeSim,
		AwaySimilarity: awaySim,
		Confidence:     (homeSim + awaySim) / 2,
	}

	if homeSim < opts.MinSimilarity || awaySim < opts.MinSimilarity {
		result.Reason = ReasonTeamsBelowThreshold
		return result
	}

	if a.HasDate() && b.HasDate() {
		diff := a.StartTime.Sub(*b.StartTime)
		if diff < 0 {
			diff = -diff
		}
		if diff > opts.DateWindow {
			result.Reason = ReasonDatesTooFarApart
			return result
		}
	}

	if a.League != "" && b.League != "" {
		leagueSim := similarity(
			normalizeName(a.League, nil),
			normalizeName(b.League, nil),
		)
		result.LeagueSimilarity = leagueSim
		if leagueSim <= minLeagueSimilarity {
			result.Reason = ReasonLeaguesDoNotMatch
			return result
		}
	}

	result.Matched = true
	return result
}

// FindMatchingEvent returns the highest-confidence candidate at or above
// minConfidence, or nil when nothing clears the bar.
func FindMatchingEvent(target models.EventRecord, candidates []models.EventRecord, minConfidence float64, opts Options) (*models.EventRecord, MatchResult) {
	var (
		best       *models.EventRecord
		bestResult MatchResult
	)

	for i := range candidates {
		result := Match(target, candidates[i], opts)
		if !result.Matched || result.Confidence < minConfidence {
			continue
		}
		if best == nil || result.Confidence > bestResult.Confidence {
			best = &candidates[i]
			bestResult = result
		}
	}

	if best == nil {
		return nil, MatchResult{Reason: ReasonNoMatchingEvent}
	}
	return best, bestResult
}

// MatchMultipleEvents resolves each target against the candidate list,
// reporting unmatched targets alongside the matches.
func MatchMultipleEvents(targets, candidates []models.EventRecord, minConfidence float64, opts Options) []EventMatch {
	matches := make([]EventMatch, 0, len(targets))
	for _, target := range targets {
		event, result := FindMatchingEvent(target, candidates, minConfidence, opts)
		matches = append(matches, EventMatch{
			Target: target,
			Event:  event,
			Result: result,
		})
	}
	return matches
}
