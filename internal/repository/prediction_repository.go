package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/database"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = `id, event_id, home_team, away_team, stat_key, market, line, side,
	       probability, fair_odds, confidence, sample_size, kickoff_time, created_at,
	       outcome, actual_value, verified_at`

// Create inserts a new prediction
func (r *PostgresPredictionRepository) Create(ctx context.Context, pred *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, event_id, home_team, away_team, stat_key, market, line, side,
		                         probability, fair_odds, confidence, sample_size, kickoff_time,
		                         created_at, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	outcome := pred.Result.Outcome
	if outcome == "" {
		outcome = models.OutcomePending
	}

	_, err := r.db.Exec(ctx, query,
		pred.ID, pred.EventID, pred.HomeTeam, pred.AwayTeam, pred.StatKey, pred.Market, pred.Line,
		pred.Side, pred.Probability, pred.FairOdds, pred.Confidence, pred.SampleSize,
		pred.KickoffTime, pred.CreatedAt, outcome,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	pred, err := scanPrediction(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return pred, nil
}

// GetPending retrieves pending predictions whose kickoff time is before the
// cutoff, oldest kickoff first so the longest-waiting events settle first.
func (r *PostgresPredictionRepository) GetPending(ctx context.Context, before time.Time) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE outcome = 'pending' AND kickoff_time <= $1
		ORDER BY kickoff_time ASC
	`

	rows, err := r.db.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending predictions: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// GetByEventID retrieves all predictions for an external event
func (r *PostgresPredictionRepository) GetByEventID(ctx context.Context, eventID string) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE event_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by event: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// UpdateResult persists a verified outcome (or a reset back to pending)
func (r *PostgresPredictionRepository) UpdateResult(ctx context.Context, pred *models.Prediction) error {
	query := `
		UPDATE predictions
		SET outcome = $2, actual_value = $3, verified_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, pred.ID, pred.Result.Outcome, pred.Result.ActualValue, pred.Result.VerifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update prediction result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// CountPending returns the number of unverified predictions
func (r *PostgresPredictionRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM predictions WHERE outcome = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending predictions: %w", err)
	}
	return count, nil
}

// PerformanceSummary aggregates settled outcomes over a date range. Pushes
// are excluded from the win rate denominator.
func (r *PostgresPredictionRepository) PerformanceSummary(ctx context.Context, start, end time.Time) (*PerformanceSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE outcome IN ('won', 'lost', 'push')),
			COUNT(*) FILTER (WHERE outcome = 'won'),
			COUNT(*) FILTER (WHERE outcome = 'lost'),
			COUNT(*) FILTER (WHERE outcome = 'push')
		FROM predictions
		WHERE verified_at >= $1 AND verified_at <= $2
	`

	summary := &PerformanceSummary{}
	err := r.db.QueryRow(ctx, query, start, end).Scan(&summary.Total, &summary.Won, &summary.Lost, &summary.Pushed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate prediction performance: %w", err)
	}

	if decided := summary.Won + summary.Lost; decided > 0 {
		summary.WinRate = float64(summary.Won) / float64(decided)
	}

	return summary, nil
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	pred := &models.Prediction{}
	err := row.Scan(
		&pred.ID, &pred.EventID, &pred.HomeTeam, &pred.AwayTeam, &pred.StatKey, &pred.Market,
		&pred.Line, &pred.Side, &pred.Probability, &pred.FairOdds, &pred.Confidence,
		&pred.SampleSize, &pred.KickoffTime, &pred.CreatedAt,
		&pred.Result.Outcome, &pred.Result.ActualValue, &pred.Result.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return pred, nil
}

func scanPredictions(rows pgx.Rows) ([]*models.Prediction, error) {
	var preds []*models.Prediction
	for rows.Next() {
		pred, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, pred)
	}
	return preds, rows.Err()
}
