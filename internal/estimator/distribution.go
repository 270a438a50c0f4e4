// Package estimator converts historical per-entity samples into
// recency-weighted distributions and searches candidate lines for
// probabilities inside a target band.
package estimator

import (
	"math"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// StatDistribution is the derived aggregate for one (entity, stat) pair
type StatDistribution struct {
	Mean         float64 // simple unweighted mean
	WeightedMean float64 // recency-weighted mean
	StdDev       float64
	SampleSize   int
}

// NewStatDistribution computes a distribution from stat values ordered
// most-recent-first. Sample at index i receives weight decayFactor^i.
func NewStatDistribution(values []float64, decayFactor float64) StatDistribution {
	n := len(values)
	if n == 0 {
		return StatDistribution{}
	}

	var sum, weightedSum, weightTotal float64
	weight := 1.0
	for _, v := range values {
		sum += v
		weightedSum += v * weight
		weightTotal += weight
		weight *= decayFactor
	}

	mean := sum / float64(n)
	weightedMean := weightedSum / weightTotal

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return StatDistribution{
		Mean:         mean,
		WeightedMean: weightedMean,
		StdDev:       math.Sqrt(variance),
		SampleSize:   n,
	}
}

// BlendedMean mixes the weighted and simple means. blendWeight is the share
// given to the recency-weighted mean.
func (d StatDistribution) BlendedMean(blendWeight float64) float64 {
	return d.WeightedMean*blendWeight + d.Mean*(1-blendWeight)
}

// statValues extracts the stat series from samples, preserving order.
// Samples without the stat are skipped.
func statValues(samples []models.Sample, statKey string) []float64 {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if v, ok := s.Stat(statKey); ok {
			values = append(values, v)
		}
	}
	return values
}

// combineIndependent sums two side distributions under an independence
// assumption: means add, variances add.
func combineIndependent(home, away StatDistribution, blendWeight float64) (mean, stdDev float64) {
	mean = home.BlendedMean(blendWeight) + away.BlendedMean(blendWeight)
	stdDev = math.Sqrt(home.StdDev*home.StdDev + away.StdDev*away.StdDev)
	return mean, stdDev
}
