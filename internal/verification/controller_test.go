package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/logger"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/ratelimit"
)

// MockResultProvider mocks the result provider
type MockResultProvider struct {
	mock.Mock
}

func (m *MockResultProvider) FetchResult(ctx context.Context, eventID string) (*provider.EventResult, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.EventResult), args.Error(1)
}

func (m *MockResultProvider) Name() string {
	return "mock-results"
}

func finishedResult(eventID string, corners float64) *provider.EventResult {
	return &provider.EventResult{
		EventID:  eventID,
		Finished: true,
		Stats: map[string]provider.StatTotal{
			"corners": {Home: corners / 2, Away: corners / 2, Total: corners},
		},
	}
}

func pendingPrediction(eventID, market string, line float64, side models.BetSide) *models.Prediction {
	return &models.Prediction{
		ID:      uuid.New(),
		EventID: eventID,
		Market:  market,
		Line:    line,
		Side:    side,
	}
}

func newTestController(results provider.ResultProvider, cfg ratelimit.Config, ttl time.Duration) *Controller {
	limiter := ratelimit.NewQuotaLimiter(cfg, nil)
	cache := ratelimit.NewResultCache(ttl)
	return NewController(results, limiter, cache, logger.NewLogger("error"))
}

func defaultQuota() ratelimit.Config {
	return ratelimit.Config{MaxCallsPerDay: 100, MaxCallsPerHour: 10}
}

func TestVerifyOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		side    models.BetSide
		line    float64
		actual  float64
		outcome models.Outcome
	}{
		{
			name:    "Over wins above the line",
			side:    models.BetSideOver,
			line:    8.5,
			actual:  11,
			outcome: models.OutcomeWon,
		},
		{
			name:    "Over pushes on the line",
			side:    models.BetSideOver,
			line:    8.5,
			actual:  8.5,
			outcome: models.OutcomePush,
		},
		{
			name:    "Over loses below the line",
			side:    models.BetSideOver,
			line:    8.5,
			actual:  6,
			outcome: models.OutcomeLost,
		},
		{
			name:    "Under wins below the line",
			side:    models.BetSideUnder,
			line:    8.5,
			actual:  6,
			outcome: models.OutcomeWon,
		},
		{
			name:    "Under pushes on the line",
			side:    models.BetSideUnder,
			line:    8.5,
			actual:  8.5,
			outcome: models.OutcomePush,
		},
		{
			name:    "Under loses above the line",
			side:    models.BetSideUnder,
			line:    8.5,
			actual:  11,
			outcome: models.OutcomeLost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := new(MockResultProvider)
			results.On("FetchResult", mock.Anything, "evt-1").
				Return(finishedResult("evt-1", tt.actual), nil)

			ctrl := newTestController(results, defaultQuota(), time.Minute)
			pred := pendingPrediction("evt-1", "corners", tt.line, tt.side)

			outcome, err := ctrl.Verify(context.Background(), pred)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome.Outcome)
			assert.Equal(t, tt.actual, outcome.ActualValue)
			assert.True(t, pred.IsPending(), "verify must not mutate the prediction")
		})
	}
}

func TestVerifyCachesFinishedResults(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, "evt-1").
		Return(finishedResult("evt-1", 11), nil).
		Once()

	ctrl := newTestController(results, defaultQuota(), time.Minute)

	first, err := ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver))
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 9.5, models.BetSideUnder))
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, models.OutcomeLost, second.Outcome)

	results.AssertNumberOfCalls(t, "FetchResult", 1)
}

func TestVerifyQuotaRejection(t *testing.T) {
	results := new(MockResultProvider)

	ctrl := newTestController(results, ratelimit.Config{MaxCallsPerDay: 0, MaxCallsPerHour: 10}, time.Minute)

	_, err := ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver))
	require.Error(t, err)

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, ratelimit.ReasonDailyLimit, rateErr.Reason)
	results.AssertNotCalled(t, "FetchResult", mock.Anything, mock.Anything)
}

func TestVerifyAlreadyVerified(t *testing.T) {
	results := new(MockResultProvider)
	ctrl := newTestController(results, defaultQuota(), time.Minute)

	pred := pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver)
	require.NoError(t, pred.SettleResult(models.OutcomeWon, 11, time.Now()))

	_, err := ctrl.Verify(context.Background(), pred)
	assert.ErrorIs(t, err, models.ErrAlreadyVerified)
	results.AssertNotCalled(t, "FetchResult", mock.Anything, mock.Anything)
}

func TestVerifyMatchNotFinished(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, "evt-1").
		Return(&provider.EventResult{EventID: "evt-1", Finished: false}, nil)

	ctrl := newTestController(results, defaultQuota(), time.Minute)

	_, err := ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver))
	assert.ErrorIs(t, err, models.ErrMatchNotFinished)

	// unfinished results must not enter the cache
	_, err = ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver))
	assert.ErrorIs(t, err, models.ErrMatchNotFinished)
	results.AssertNumberOfCalls(t, "FetchResult", 2)
}

func TestVerifyMatchNotFound(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, "evt-x").
		Return(nil, models.ErrMatchNotFound)

	ctrl := newTestController(results, defaultQuota(), time.Minute)

	_, err := ctrl.Verify(context.Background(), pendingPrediction("evt-x", "corners", 8.5, models.BetSideOver))
	assert.ErrorIs(t, err, models.ErrMatchNotFound)
}

func TestVerifyUnsupportedMarket(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, "evt-1").
		Return(finishedResult("evt-1", 11), nil)

	ctrl := newTestController(results, defaultQuota(), time.Minute)

	_, err := ctrl.Verify(context.Background(), pendingPrediction("evt-1", "possession", 55, models.BetSideOver))
	assert.ErrorIs(t, err, models.ErrUnsupportedMarket)
}

func TestVerifyConsumesQuota(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, mock.Anything).
		Return(finishedResult("evt-1", 11), nil)

	limiter := ratelimit.NewQuotaLimiter(defaultQuota(), nil)
	cache := ratelimit.NewResultCache(time.Minute)
	ctrl := NewController(results, limiter, cache, logger.NewLogger("error"))

	_, err := ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver))
	require.NoError(t, err)

	decision, err := limiter.CanCall()
	require.NoError(t, err)
	assert.Equal(t, 99, decision.RemainingDaily)

	// cache hit leaves the quota untouched
	_, err = ctrl.Verify(context.Background(), pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver))
	require.NoError(t, err)

	decision, err = limiter.CanCall()
	require.NoError(t, err)
	assert.Equal(t, 99, decision.RemainingDaily)
}

func TestVerifyAllSequential(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, "evt-1").Return(finishedResult("evt-1", 11), nil)
	results.On("FetchResult", mock.Anything, "evt-2").Return(finishedResult("evt-2", 6), nil)
	results.On("FetchResult", mock.Anything, "evt-3").Return(nil, models.ErrMatchNotFound)

	ctrl := newTestController(results, defaultQuota(), time.Minute)

	preds := []*models.Prediction{
		pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver),
		pendingPrediction("evt-2", "corners", 8.5, models.BetSideOver),
		pendingPrediction("evt-3", "corners", 8.5, models.BetSideOver),
	}

	start := time.Now()
	report, err := ctrl.VerifyAll(context.Background(), preds, 500*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Verified)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Deferred)
	assert.Equal(t, models.OutcomeWon, report.Outcomes[preds[0].ID].Outcome)
	assert.Equal(t, models.OutcomeLost, report.Outcomes[preds[1].ID].Outcome)
	assert.Contains(t, report.Failures[preds[2].ID], "not found")

	// two inter-call pauses for three items
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestVerifyAllDefersOnQuota(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, mock.Anything).
		Return(finishedResult("evt", 11), nil)

	ctrl := newTestController(results, ratelimit.Config{MaxCallsPerDay: 2, MaxCallsPerHour: 2}, time.Minute)

	preds := []*models.Prediction{
		pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver),
		pendingPrediction("evt-2", "corners", 8.5, models.BetSideOver),
		pendingPrediction("evt-3", "corners", 8.5, models.BetSideOver),
		pendingPrediction("evt-4", "corners", 8.5, models.BetSideOver),
	}

	report, err := ctrl.VerifyAll(context.Background(), preds, 500*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Verified)
	assert.Equal(t, 2, report.Deferred)
	results.AssertNumberOfCalls(t, "FetchResult", 2)
}

func TestVerifyAllContextCancellation(t *testing.T) {
	results := new(MockResultProvider)
	results.On("FetchResult", mock.Anything, mock.Anything).
		Return(finishedResult("evt", 11), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newTestController(results, defaultQuota(), time.Minute)
	report, err := ctrl.VerifyAll(ctx, []*models.Prediction{
		pendingPrediction("evt-1", "corners", 8.5, models.BetSideOver),
	}, 500*time.Millisecond)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, report.Verified)
	results.AssertNotCalled(t, "FetchResult", mock.Anything, mock.Anything)
}
