package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/config"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/evaluator"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/logger"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/repository"
)

// QuoteWatcher re-prices pending predictions against live quote pushes from
// the odds provider's stream. A scan only sees the prices of the moment it
// runs; the watcher keeps evaluating the same candidate lines as bookmakers
// move, surfacing value that appears after the scan finished.
type QuoteWatcher struct {
	repo   repository.PredictionRepository
	cfg    *config.Config
	logger *logrus.Logger
	audit  *logger.AuditLogger
}

// NewQuoteWatcher creates a new quote watcher
func NewQuoteWatcher(repo repository.PredictionRepository, cfg *config.Config, log *logrus.Logger) *QuoteWatcher {
	return &QuoteWatcher{
		repo:   repo,
		cfg:    cfg,
		logger: log,
		audit:  logger.NewAuditLogger(log),
	}
}

// PendingEventIDs returns the distinct event ids of pending predictions
// kicking off inside the window. This is the subscription list for the
// quote stream.
func (w *QuoteWatcher) PendingEventIDs(ctx context.Context, window time.Duration) ([]string, error) {
	pending, err := w.repo.GetPending(ctx, time.Now().Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to load pending predictions: %w", err)
	}

	seen := make(map[string]bool, len(pending))
	ids := make([]string, 0, len(pending))
	for _, pred := range pending {
		if seen[pred.EventID] {
			continue
		}
		seen[pred.EventID] = true
		ids = append(ids, pred.EventID)
	}
	return ids, nil
}

// HandleUpdate re-prices every pending prediction the quote push touches
// and returns the ones that clear the EV floor at the pushed prices.
func (w *QuoteWatcher) HandleUpdate(ctx context.Context, update provider.QuoteUpdate) ([]ValueBet, error) {
	if len(update.Quotes) == 0 {
		return nil, nil
	}

	preds, err := w.repo.GetByEventID(ctx, update.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for event %s: %w", update.EventID, err)
	}

	constraints := evaluator.Constraints{
		PlayableBookmakers: w.cfg.Evaluator.PlayableBookmakers,
		UnitValue:          w.cfg.Evaluator.UnitValue,
	}

	var bets []ValueBet
	for _, pred := range preds {
		if !pred.IsPending() {
			continue
		}
		if pred.Market != update.Market || pred.Line != update.Line || pred.Side != update.Side {
			continue
		}

		eval, err := evaluator.Evaluate(pred.Probability, update.Quotes, constraints)
		if errors.Is(err, models.ErrNoQuotes) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("evaluate failed for prediction %s: %w", pred.ID, err)
		}
		metrics.RecordEvaluation()

		if !eval.HasValue || eval.BestOpportunity.EVPercent < w.cfg.Evaluator.MinEV {
			w.logger.WithFields(logrus.Fields{
				"prediction_id": pred.ID,
				"event_id":      update.EventID,
				"market":        update.Market,
				"line":          update.Line,
			}).Debug("Quote moved, no value at current prices")
			continue
		}

		best := eval.BestOpportunity
		w.audit.LogValueBetFound(pred.ID.String(), best.Bookmaker, best.Odds, best.EVPercent, best.EdgePercent, string(best.Rating))
		metrics.RecordValueBetFound()

		bets = append(bets, ValueBet{
			Prediction: pred,
			Evaluation: eval,
			Event: models.EventRecord{
				SourceID: update.EventID,
				HomeTeam: pred.HomeTeam,
				AwayTeam: pred.AwayTeam,
			},
		})
	}

	return bets, nil
}
