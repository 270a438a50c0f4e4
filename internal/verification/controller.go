package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/ratelimit"
)

// RateLimitError reports a verification attempt deferred by the quota gate.
// Callers inspect WaitTime to schedule the retry.
type RateLimitError struct {
	Reason   ratelimit.Reason
	WaitTime time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("verification deferred (%s), retry in %s", e.Reason, e.WaitTime)
}

// Outcome is the resolved result of a single verification. The controller
// never mutates the prediction; persisting the transition is the caller's job.
type Outcome struct {
	PredictionID string         `json:"prediction_id"`
	Outcome      models.Outcome `json:"outcome"`
	ActualValue  float64        `json:"actual_value"`
	FromCache    bool           `json:"from_cache"`
}

// Controller checks predictions against final results, routing every
// network fetch through the shared quota limiter and result cache.
type Controller struct {
	results provider.ResultProvider
	limiter *ratelimit.QuotaLimiter
	cache   *ratelimit.ResultCache
	log     *logrus.Logger
}

// NewController creates a verification controller
func NewController(results provider.ResultProvider, limiter *ratelimit.QuotaLimiter, cache *ratelimit.ResultCache, log *logrus.Logger) *Controller {
	return &Controller{
		results: results,
		limiter: limiter,
		cache:   cache,
		log:     log,
	}
}

// Verify resolves the outcome of a single prediction. Cached finished
// results bypass the quota entirely; a cache miss consumes one provider
// call. Returns models.ErrAlreadyVerified when the prediction is settled,
// *RateLimitError when the quota gate rejects the fetch, and
// models.ErrMatchNotFinished / models.ErrMatchNotFound passed through from
// the provider.
func (c *Controller) Verify(ctx context.Context, pred *models.Prediction) (*Outcome, error) {
	start := time.Now()

	if pred.IsVerified() {
		return nil, fmt.Errorf("prediction %s: %w", pred.ID, models.ErrAlreadyVerified)
	}

	result, fromCache, err := c.fetchResult(ctx, pred.EventID)
	if err != nil {
		metrics.RecordVerificationFailure(failureReason(err))
		return nil, err
	}

	actual, err := ActualValue(result, pred.Market)
	if err != nil {
		metrics.RecordVerificationFailure(failureReason(err))
		return nil, err
	}

	outcome := resolveOutcome(pred.Side, pred.Line, actual)
	metrics.RecordVerification(string(outcome), time.Since(start).Seconds())

	c.log.WithFields(logrus.Fields{
		"prediction_id": pred.ID,
		"event_id":      pred.EventID,
		"market":        pred.Market,
		"line":          pred.Line,
		"side":          pred.Side,
		"actual":        actual,
		"outcome":       outcome,
		"from_cache":    fromCache,
	}).Info("Prediction verified")

	return &Outcome{
		PredictionID: pred.ID.String(),
		Outcome:      outcome,
		ActualValue:  actual,
		FromCache:    fromCache,
	}, nil
}

// fetchResult serves the finished result from cache when possible, otherwise
// spends one quota slot on the provider. Only finished results are cached.
func (c *Controller) fetchResult(ctx context.Context, eventID string) (*provider.EventResult, bool, error) {
	if cached := c.cache.Get(eventID); cached != nil {
		return cached, true, nil
	}

	decision, err := c.limiter.CanCall()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check call quota: %w", err)
	}
	if !decision.Allowed {
		c.log.WithFields(logrus.Fields{
			"event_id":  eventID,
			"reason":    decision.Reason,
			"wait_time": decision.WaitTime,
		}).Warn("Result fetch rejected by quota")
		return nil, false, &RateLimitError{Reason: decision.Reason, WaitTime: decision.WaitTime}
	}

	result, err := c.results.FetchResult(ctx, eventID)
	recordErr := c.limiter.RecordCall(eventID)
	if recordErr != nil {
		c.log.WithError(recordErr).Warn("Failed to record provider call")
	}
	metrics.RecordProviderCall(c.results.Name())
	if err != nil {
		return nil, false, err
	}

	if !result.Finished {
		return nil, false, fmt.Errorf("event %s: %w", eventID, models.ErrMatchNotFinished)
	}

	c.cache.Set(eventID, result)
	return result, false, nil
}

// resolveOutcome applies the over/under rules to the actual total. A total
// landing exactly on the line is a push either way.
func resolveOutcome(side models.BetSide, line, actual float64) models.Outcome {
	if actual == line {
		return models.OutcomePush
	}
	if side == models.BetSideOver {
		if actual > line {
			return models.OutcomeWon
		}
		return models.OutcomeLost
	}
	if actual < line {
		return models.OutcomeWon
	}
	return models.OutcomeLost
}

// failureReason buckets a verification error for the failure counter
func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, models.ErrMatchNotFinished):
		return "match_not_finished"
	case errors.Is(err, models.ErrUnsupportedMarket):
		return "unsupported_market"
	default:
		return "provider_error"
	}
}
