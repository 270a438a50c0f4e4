// Package service orchestrates the scan and verification flows on top of
// the core engine packages.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/config"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/estimator"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/evaluator"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/logger"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/matcher"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/repository"
)

// defaultSampleLimit is the historical sample depth requested per team
const defaultSampleLimit = 10

// ScanService runs the full detection pipeline: historical samples feed the
// estimator, candidate lines are priced against reconciled odds events, and
// surviving value bets are persisted as pending predictions.
type ScanService struct {
	stats  provider.StatsProvider
	odds   provider.OddsProvider
	repo   repository.PredictionRepository
	cfg    *config.Config
	logger *logrus.Logger
	audit  *logger.AuditLogger
}

// NewScanService creates a new scan service
func NewScanService(
	stats provider.StatsProvider,
	odds provider.OddsProvider,
	repo repository.PredictionRepository,
	cfg *config.Config,
	log *logrus.Logger,
) *ScanService {
	return &ScanService{
		stats:  stats,
		odds:   odds,
		repo:   repo,
		cfg:    cfg,
		logger: log,
		audit:  logger.NewAuditLogger(log),
	}
}

// ValueBet pairs a persisted prediction with the market evaluation that
// surfaced it
type ValueBet struct {
	Prediction *models.Prediction    `json:"prediction"`
	Evaluation *evaluator.Evaluation `json:"evaluation"`
	Event      models.EventRecord    `json:"event"`
}

// ScanReport summarizes one scan pass
type ScanReport struct {
	ValueBets []ValueBet    `json:"value_bets"`
	Scanned   int           `json:"scanned"`
	Unmatched int           `json:"unmatched"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// Scan runs the detection pipeline for the given fixtures and stat keys.
// Fixtures come from the stats-side schedule; each one is reconciled against
// the odds provider's event list before any market is priced. An empty
// value-bet list is a normal result.
func (s *ScanService) Scan(ctx context.Context, fixtures []models.EventRecord, statKeys []string) (*ScanReport, error) {
	start := time.Now()

	oddsEvents, err := s.odds.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds events: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"fixtures":    len(fixtures),
		"odds_events": len(oddsEvents),
		"stat_keys":   statKeys,
	}).Info("Starting scan")

	aliases := matcher.DefaultAliases()
	if s.cfg.Matcher.AliasFile != "" {
		loaded, err := matcher.LoadAliases(s.cfg.Matcher.AliasFile)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load alias file, using defaults")
		} else {
			aliases = loaded
		}
	}

	matchOpts := matcher.Options{
		MinSimilarity: s.cfg.Matcher.MinSimilarity,
		DateWindow:    s.cfg.Matcher.DateWindow(),
		Aliases:       aliases,
	}

	report := &ScanReport{}
	for _, fixture := range fixtures {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		oddsEvent, matchRes := matcher.FindMatchingEvent(fixture, oddsEvents, s.cfg.Matcher.MinConfidence, matchOpts)
		metrics.RecordEntityMatch(matchRes.Matched)
		if oddsEvent == nil {
			report.Unmatched++
			s.logger.WithFields(logrus.Fields{
				"home_team": fixture.HomeTeam,
				"away_team": fixture.AwayTeam,
				"reason":    matchRes.Reason,
			}).Debug("Fixture skipped, no odds event matched")
			continue
		}

		bets, err := s.scanFixture(ctx, fixture, *oddsEvent, statKeys)
		if err != nil {
			report.Skipped++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"home_team": fixture.HomeTeam,
				"away_team": fixture.AwayTeam,
			}).Warn("Fixture skipped")
			continue
		}
		report.ValueBets = append(report.ValueBets, bets...)
	}

	// strongest opportunities first
	sort.Slice(report.ValueBets, func(i, j int) bool {
		return report.ValueBets[i].Evaluation.BestOpportunity.EVPercent >
			report.ValueBets[j].Evaluation.BestOpportunity.EVPercent
	})

	report.Duration = time.Since(start)
	metrics.ObserveScanDuration(report.Duration.Seconds())

	s.logger.WithFields(logrus.Fields{
		"scanned":    report.Scanned,
		"unmatched":  report.Unmatched,
		"skipped":    report.Skipped,
		"value_bets": len(report.ValueBets),
		"duration":   report.Duration,
	}).Info("Scan finished")

	return report, nil
}

// scanFixture prices every candidate line of one reconciled fixture
func (s *ScanService) scanFixture(ctx context.Context, fixture, oddsEvent models.EventRecord, statKeys []string) ([]ValueBet, error) {
	samplesHome, err := s.stats.FetchSamples(ctx, fixture.HomeTeam, defaultSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch home samples: %w", err)
	}
	samplesAway, err := s.stats.FetchSamples(ctx, fixture.AwayTeam, defaultSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch away samples: %w", err)
	}

	estOpts := estimator.Options{
		DecayFactor:        s.cfg.Estimator.DecayFactor,
		ProbabilityBandMin: s.cfg.Estimator.ProbabilityBandMin,
		ProbabilityBandMax: s.cfg.Estimator.ProbabilityBandMax,
		LineStep:           s.cfg.Estimator.LineStep,
		BlendWeight:        s.cfg.Estimator.BlendWeight,
	}
	constraints := evaluator.Constraints{
		PlayableBookmakers: s.cfg.Evaluator.PlayableBookmakers,
		UnitValue:          s.cfg.Evaluator.UnitValue,
	}

	var bets []ValueBet
	for _, statKey := range statKeys {
		candidates, err := estimator.Estimate(samplesHome, samplesAway, statKey, estOpts)
		if errors.Is(err, models.ErrInsufficientSamples) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("estimate failed for %s: %w", statKey, err)
		}

		for _, candidate := range candidates {
			metrics.RecordPredictionGenerated()

			quotes, err := s.odds.FetchQuotes(ctx, oddsEvent.SourceID, statKey, candidate.Line, candidate.Side)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"event_id": oddsEvent.SourceID,
					"stat_key": statKey,
					"line":     candidate.Line,
				}).Debug("No quotes for candidate line")
				continue
			}

			eval, err := evaluator.Evaluate(candidate.Probability, quotes, constraints)
			if errors.Is(err, models.ErrNoQuotes) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("evaluate failed for %s: %w", statKey, err)
			}
			metrics.RecordEvaluation()

			if !eval.HasValue || eval.BestOpportunity.EVPercent < s.cfg.Evaluator.MinEV {
				continue
			}

			pred, err := s.persistPrediction(ctx, fixture, oddsEvent, statKey, candidate)
			if err != nil {
				return nil, err
			}

			best := eval.BestOpportunity
			s.audit.LogValueBetFound(pred.ID.String(), best.Bookmaker, best.Odds, best.EVPercent, best.EdgePercent, string(best.Rating))
			metrics.RecordValueBetFound()

			bets = append(bets, ValueBet{Prediction: pred, Evaluation: eval, Event: oddsEvent})
		}
	}

	return bets, nil
}

func (s *ScanService) persistPrediction(ctx context.Context, fixture, oddsEvent models.EventRecord, statKey string, candidate estimator.CandidateLine) (*models.Prediction, error) {
	pred := &models.Prediction{
		ID:          uuid.New(),
		EventID:     oddsEvent.SourceID,
		HomeTeam:    fixture.HomeTeam,
		AwayTeam:    fixture.AwayTeam,
		StatKey:     statKey,
		Market:      statKey,
		Line:        candidate.Line,
		Side:        candidate.Side,
		Probability: candidate.Probability,
		FairOdds:    candidate.FairOdds,
		Confidence:  candidate.Confidence,
		SampleSize:  candidate.SampleSize,
		CreatedAt:   time.Now().UTC(),
		Result:      models.Result{Outcome: models.OutcomePending},
	}
	if fixture.StartTime != nil {
		pred.KickoffTime = *fixture.StartTime
	} else if oddsEvent.StartTime != nil {
		pred.KickoffTime = *oddsEvent.StartTime
	}

	if err := s.repo.Create(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to persist prediction: %w", err)
	}

	s.audit.LogPredictionCreated(
		pred.ID.String(), pred.EventID, pred.StatKey, pred.Line, string(pred.Side),
		pred.Probability, pred.FairOdds, string(pred.Confidence),
	)

	return pred, nil
}
