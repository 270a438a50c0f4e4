package verification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// minBulkDelay is the floor on the pause between sequential provider calls
const minBulkDelay = 500 * time.Millisecond

// BulkReport summarizes a sequential verification pass. Items that failed
// are isolated per prediction; one bad event never aborts the pass.
type BulkReport struct {
	Verified int                    `json:"verified"`
	Deferred int                    `json:"deferred"`
	Failed   int                    `json:"failed"`
	Outcomes map[uuid.UUID]*Outcome `json:"outcomes"`
	Failures map[uuid.UUID]string   `json:"failures"`
}

// VerifyAll resolves pending predictions one at a time, pausing between
// provider calls so bursts never hit the upstream. Cached results skip the
// pause. Stops early only on context cancellation, returning the partial
// report alongside the context error. A quota rejection defers the
// remaining items rather than burning through them.
func (c *Controller) VerifyAll(ctx context.Context, preds []*models.Prediction, delay time.Duration) (*BulkReport, error) {
	if delay < minBulkDelay {
		delay = minBulkDelay
	}

	start := time.Now()
	report := &BulkReport{
		Outcomes: make(map[uuid.UUID]*Outcome),
		Failures: make(map[uuid.UUID]string),
	}

	for i, pred := range preds {
		if err := ctx.Err(); err != nil {
			metrics.ObserveBulkVerification(time.Since(start).Seconds())
			return report, err
		}

		outcome, err := c.Verify(ctx, pred)
		if err != nil {
			var rateErr *RateLimitError
			if errors.As(err, &rateErr) {
				report.Deferred = len(preds) - i
				c.log.WithFields(logrus.Fields{
					"deferred":  report.Deferred,
					"reason":    rateErr.Reason,
					"wait_time": rateErr.WaitTime,
				}).Warn("Bulk verification deferred by quota")
				break
			}

			report.Failed++
			report.Failures[pred.ID] = err.Error()
			c.log.WithError(err).WithField("prediction_id", pred.ID).Warn("Verification failed")
		} else {
			report.Verified++
			report.Outcomes[pred.ID] = outcome
		}

		if i < len(preds)-1 && (outcome == nil || !outcome.FromCache) {
			select {
			case <-ctx.Done():
				metrics.ObserveBulkVerification(time.Since(start).Seconds())
				return report, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	metrics.ObserveBulkVerification(time.Since(start).Seconds())
	c.log.WithFields(logrus.Fields{
		"total":    len(preds),
		"verified": report.Verified,
		"deferred": report.Deferred,
		"failed":   report.Failed,
		"duration": time.Since(start),
	}).Info("Bulk verification finished")

	return report, nil
}
