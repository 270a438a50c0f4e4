package estimator

import (
	"fmt"
	"math"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// Default hyperparameters. Exposed as options because their values were
// chosen empirically, not derived.
const (
	DefaultDecayFactor        = 0.9
	DefaultProbabilityBandMin = 0.58
	DefaultProbabilityBandMax = 0.62
	DefaultLineStep           = 0.5
	DefaultBlendWeight        = 0.6
)

// Confidence tier thresholds
const (
	highTierMinSamples   = 8
	highTierMaxStdDev    = 2.0
	mediumTierMinSamples = 5
	mediumTierMaxStdDev  = 3.0
)

// maxSearchSteps bounds the line search in each direction. Candidates more
// than a few standard deviations from the mean can never land in the band.
const maxSearchSteps = 50

// Options holds the estimator hyperparameters
type Options struct {
	DecayFactor        float64
	ProbabilityBandMin float64
	ProbabilityBandMax float64
	LineStep           float64
	BlendWeight        float64
}

// DefaultOptions returns the default estimator hyperparameters
func DefaultOptions() Options {
	return Options{
		DecayFactor:        DefaultDecayFactor,
		ProbabilityBandMin: DefaultProbabilityBandMin,
		ProbabilityBandMax: DefaultProbabilityBandMax,
		LineStep:           DefaultLineStep,
		BlendWeight:        DefaultBlendWeight,
	}
}

// CandidateLine is one modeled over/under line whose probability falls
// inside the target band
type CandidateLine struct {
	Line        float64               `json:"line"`
	Side        models.BetSide        `json:"side"`
	Probability float64               `json:"probability"`
	FairOdds    float64               `json:"fair_odds"`
	Confidence  models.ConfidenceTier `json:"confidence"`
	SampleSize  int                   `json:"sample_size"`
	HomeMean    float64               `json:"home_mean"`
	AwayMean    float64               `json:"away_mean"`
}

// Estimate models the combined home+away total for statKey and returns every
// candidate line whose over or under probability falls inside the configured
// band. Samples must be ordered most-recent-first. Returns
// models.ErrInsufficientSamples when either side has no samples for the stat.
func Estimate(samplesHome, samplesAway []models.Sample, statKey string, opts Options) ([]CandidateLine, error) {
	homeValues := statValues(samplesHome, statKey)
	awayValues := statValues(samplesAway, statKey)
	if len(homeValues) == 0 || len(awayValues) == 0 {
		return nil, fmt.Errorf("stat %q: %w", statKey, models.ErrInsufficientSamples)
	}

	home := NewStatDistribution(homeValues, opts.DecayFactor)
	away := NewStatDistribution(awayValues, opts.DecayFactor)

	mean, stdDev := combineIndependent(home, away, opts.BlendWeight)
	if stdDev == 0 {
		// Degenerate distribution: every tail probability is 0 or 1,
		// so no line can land inside the band.
		return nil, nil
	}

	sampleSize := home.SampleSize + away.SampleSize
	confidence := confidenceTier(sampleSize, stdDev)
	homeMean := home.BlendedMean(opts.BlendWeight)
	awayMean := away.BlendedMean(opts.BlendWeight)

	var candidates []CandidateLine
	appendInBand := func(line float64) {
		for _, side := range []models.BetSide{models.BetSideOver, models.BetSideUnder} {
			p := tailProbability(line, mean, stdDev, side)
			if p < opts.ProbabilityBandMin || p > opts.ProbabilityBandMax {
				continue
			}
			candidates = append(candidates, CandidateLine{
				Line:        line,
				Side:        side,
				Probability: p,
				FairOdds:    1 / p,
				Confidence:  confidence,
				SampleSize:  sampleSize,
				HomeMean:    homeMean,
				AwayMean:    awayMean,
			})
		}
	}

	// Walk outward from the mean, snapped onto the line-step grid so
	// candidates land on bookable lines.
	start := math.Round(mean/opts.LineStep) * opts.LineStep
	appendInBand(start)
	for i := 1; i <= maxSearchSteps; i++ {
		offset := float64(i) * opts.LineStep
		above := start + offset
		below := start - offset
		if above > mean+4*stdDev && below < mean-4*stdDev {
			break
		}
		appendInBand(below)
		appendInBand(above)
	}

	return candidates, nil
}

// tailProbability computes the normal-tail probability of the given side
// clearing the line.
func tailProbability(line, mean, stdDev float64, side models.BetSide) float64 {
	z := (line - mean) / stdDev
	if side == models.BetSideOver {
		return 1 - normalCDF(z)
	}
	return normalCDF(z)
}

// normalCDF is the standard normal cumulative distribution function
func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// confidenceTier grades an estimate by sample size and spread
func confidenceTier(sampleSize int, stdDev float64) models.ConfidenceTier {
	switch {
	case sampleSize >= highTierMinSamples && stdDev < highTierMaxStdDev:
		return models.ConfidenceHigh
	case sampleSize >= mediumTierMinSamples && stdDev < mediumTierMaxStdDev:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
