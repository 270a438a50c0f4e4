package estimator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

func samplesFromValues(statKey string, values ...float64) []models.Sample {
	samples := make([]models.Sample, len(values))
	day := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	for i, v := range values {
		samples[i] = models.Sample{
			Date:  day.AddDate(0, 0, -7*i),
			Stats: map[string]float64{statKey: v},
		}
	}
	return samples
}

func TestEstimateInsufficientSamples(t *testing.T) {
	home := samplesFromValues("corners", 6, 5, 7)

	_, err := Estimate(home, nil, "corners", DefaultOptions())
	assert.ErrorIs(t, err, models.ErrInsufficientSamples)

	_, err = Estimate(nil, home, "corners", DefaultOptions())
	assert.ErrorIs(t, err, models.ErrInsufficientSamples)

	// Samples exist but never recorded the requested stat
	_, err = Estimate(home, home, "yellow_cards", DefaultOptions())
	assert.ErrorIs(t, err, models.ErrInsufficientSamples)
}

func TestEstimateKnownDistribution(t *testing.T) {
	// With no decay both means are exact: home mean 6, away mean 5,
	// each side population stddev sqrt(0.5), combined N(11, 1).
	home := samplesFromValues("corners", 6, 5, 7, 6, 5, 7, 6, 6)
	away := samplesFromValues("corners", 5, 4, 6, 5, 4, 6, 5, 5)

	opts := Options{
		DecayFactor:        1.0,
		ProbabilityBandMin: 0.30,
		ProbabilityBandMax: 0.35,
		LineStep:           0.5,
		BlendWeight:        0.6,
	}

	candidates, err := Estimate(home, away, "corners", opts)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Only over 11.5 (z=0.5) and under 10.5 (z=-0.5) fall inside the band
	byKey := map[string]CandidateLine{}
	for _, c := range candidates {
		byKey[string(c.Side)] = c
	}

	over := byKey["over"]
	assert.Equal(t, 11.5, over.Line)
	assert.InDelta(t, 0.30854, over.Probability, 1e-4)
	assert.InDelta(t, 1/0.30854, over.FairOdds, 1e-3)

	under := byKey["under"]
	assert.Equal(t, 10.5, under.Line)
	assert.InDelta(t, 0.30854, under.Probability, 1e-4)

	for _, c := range candidates {
		assert.Equal(t, 16, c.SampleSize)
		assert.Equal(t, models.ConfidenceHigh, c.Confidence)
		assert.InDelta(t, 6.0, c.HomeMean, 1e-9)
		assert.InDelta(t, 5.0, c.AwayMean, 1e-9)
	}
}

func TestEstimateCandidatesStayInsideBand(t *testing.T) {
	home := samplesFromValues("corners", 8, 4, 9, 3, 7, 5, 10, 2)
	away := samplesFromValues("corners", 6, 3, 8, 4, 7, 2, 9, 5)

	opts := DefaultOptions()
	candidates, err := Estimate(home, away, "corners", opts)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Probability, opts.ProbabilityBandMin)
		assert.LessOrEqual(t, c.Probability, opts.ProbabilityBandMax)
		assert.InDelta(t, 1/c.Probability, c.FairOdds, 1e-9)
		assert.Greater(t, c.FairOdds, 1.0)
	}
}

func TestEstimateZeroVariance(t *testing.T) {
	// Identical values every game: the distribution degenerates and no
	// line can sit inside the band. Not an error.
	home := samplesFromValues("corners", 6, 6, 6, 6)
	away := samplesFromValues("corners", 5, 5, 5, 5)

	candidates, err := Estimate(home, away, "corners", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestConfidenceTier(t *testing.T) {
	tests := []struct {
		name       string
		sampleSize int
		stdDev     float64
		want       models.ConfidenceTier
	}{
		{"large sample tight spread", 10, 1.5, models.ConfidenceHigh},
		{"boundary high tier", 8, 1.99, models.ConfidenceHigh},
		{"high samples wide spread", 12, 2.5, models.ConfidenceMedium},
		{"medium sample", 5, 2.9, models.ConfidenceMedium},
		{"too few samples", 4, 0.5, models.ConfidenceLow},
		{"too much spread", 20, 3.5, models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confidenceTier(tt.sampleSize, tt.stdDev))
		})
	}
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normalCDF(0), 1e-9)
	assert.InDelta(t, 0.8413, normalCDF(1), 1e-4)
	assert.InDelta(t, 0.1587, normalCDF(-1), 1e-4)
	assert.InDelta(t, 0.9772, normalCDF(2), 1e-4)
}

func TestTailProbabilityComplements(t *testing.T) {
	over := tailProbability(9.5, 10.2, 2.1, models.BetSideOver)
	under := tailProbability(9.5, 10.2, 2.1, models.BetSideUnder)
	assert.InDelta(t, 1.0, over+under, 1e-9)
}
