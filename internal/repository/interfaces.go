// Package repository provides data access interfaces and PostgreSQL implementations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// PredictionRepository defines prediction data access
type PredictionRepository interface {
	// Create inserts a new prediction
	Create(ctx context.Context, pred *models.Prediction) error

	// GetByID retrieves a prediction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)

	// GetPending retrieves pending predictions whose kickoff has passed
	GetPending(ctx context.Context, before time.Time) ([]*models.Prediction, error)

	// GetByEventID retrieves all predictions for an external event
	GetByEventID(ctx context.Context, eventID string) ([]*models.Prediction, error)

	// UpdateResult persists a verified outcome
	UpdateResult(ctx context.Context, pred *models.Prediction) error

	// CountPending returns the number of unverified predictions
	CountPending(ctx context.Context) (int, error)

	// PerformanceSummary aggregates settled outcomes over a date range
	PerformanceSummary(ctx context.Context, start, end time.Time) (*PerformanceSummary, error)
}

// PerformanceSummary is an aggregate view over settled predictions
type PerformanceSummary struct {
	Total   int     `json:"total"`
	Won     int     `json:"won"`
	Lost    int     `json:"lost"`
	Pushed  int     `json:"pushed"`
	WinRate float64 `json:"win_rate"`
}
