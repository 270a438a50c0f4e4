package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/config"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/logger"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/repository"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/verification"
)

// VerificationService settles pending predictions. The controller resolves
// outcomes; the state transition and its persistence happen here.
type VerificationService struct {
	controller *verification.Controller
	repo       repository.PredictionRepository
	cfg        *config.Config
	logger     *logrus.Logger
	audit      *logger.AuditLogger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	controller *verification.Controller,
	repo repository.PredictionRepository,
	cfg *config.Config,
	log *logrus.Logger,
) *VerificationService {
	return &VerificationService{
		controller: controller,
		repo:       repo,
		cfg:        cfg,
		logger:     log,
		audit:      logger.NewAuditLogger(log),
	}
}

// VerifyPending loads every pending prediction whose kickoff has passed and
// settles the ones whose events have finished. Quota exhaustion mid-pass
// leaves the remainder pending for the next run.
func (s *VerificationService) VerifyPending(ctx context.Context) (*verification.BulkReport, error) {
	pending, err := s.repo.GetPending(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load pending predictions: %w", err)
	}
	metrics.UpdatePendingPredictions(len(pending))

	if len(pending) == 0 {
		s.logger.Info("No pending predictions to verify")
		return &verification.BulkReport{
			Outcomes: map[uuid.UUID]*verification.Outcome{},
			Failures: map[uuid.UUID]string{},
		}, nil
	}

	report, err := s.controller.VerifyAll(ctx, pending, s.cfg.Verification.BulkDelay())
	if report != nil {
		s.settleOutcomes(ctx, pending, report)
	}
	if err != nil {
		return report, err
	}

	if count, countErr := s.repo.CountPending(ctx); countErr == nil {
		metrics.UpdatePendingPredictions(count)
	}

	return report, nil
}

// VerifyOne settles a single prediction by ID
func (s *VerificationService) VerifyOne(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	pred, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := s.controller.Verify(ctx, pred)
	if err != nil {
		return nil, err
	}

	if err := s.settle(ctx, pred, outcome); err != nil {
		return nil, err
	}

	return pred, nil
}

// Undo reverts a settled prediction back to pending
func (s *VerificationService) Undo(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	pred, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pred.IsVerified() {
		return nil, fmt.Errorf("prediction %s is not settled: %w", id, models.ErrInvalidOutcome)
	}

	previous := pred.Result.Outcome
	pred.ResetResult()
	if err := s.repo.UpdateResult(ctx, pred); err != nil {
		return nil, err
	}

	s.audit.LogOutcomeChange(pred.ID.String(), string(previous), string(models.OutcomePending), 0, time.Now().UTC())
	s.logger.WithFields(logrus.Fields{
		"prediction_id": pred.ID,
		"previous":      previous,
	}).Info("Prediction reverted to pending")

	return pred, nil
}

// Performance aggregates settled outcomes over a date range
func (s *VerificationService) Performance(ctx context.Context, start, end time.Time) (*repository.PerformanceSummary, error) {
	return s.repo.PerformanceSummary(ctx, start, end)
}

// settleOutcomes applies and persists every resolved outcome of a bulk pass
func (s *VerificationService) settleOutcomes(ctx context.Context, pending []*models.Prediction, report *verification.BulkReport) {
	for _, pred := range pending {
		outcome, ok := report.Outcomes[pred.ID]
		if !ok {
			continue
		}
		if err := s.settle(ctx, pred, outcome); err != nil {
			s.logger.WithError(err).WithField("prediction_id", pred.ID).Error("Failed to settle prediction")
			report.Failures[pred.ID] = err.Error()
		}
	}
}

// settle applies the outcome to the prediction and persists the transition
func (s *VerificationService) settle(ctx context.Context, pred *models.Prediction, outcome *verification.Outcome) error {
	verifiedAt := time.Now().UTC()
	if err := pred.SettleResult(outcome.Outcome, outcome.ActualValue, verifiedAt); err != nil {
		return fmt.Errorf("failed to settle prediction %s: %w", pred.ID, err)
	}
	if err := s.repo.UpdateResult(ctx, pred); err != nil {
		return fmt.Errorf("failed to persist prediction %s: %w", pred.ID, err)
	}

	s.audit.LogOutcomeChange(pred.ID.String(), string(models.OutcomePending), string(outcome.Outcome), outcome.ActualValue, verifiedAt)
	return nil
}
