package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/recommendation"
	"github.com/garyjia/ai-collections/internal/routing"
	"github.com/garyjia/ai-collections/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	calls int
	err   error
}

func (g *fakeGenerator) Generate(ctx context.Context, rc entity.RoutingContext, decision entity.RoutingDecision) (*entity.CollectionRecommendation, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &entity.CollectionRecommendation{
		ID:                "rec-" + rc.Invoice().ID,
		CustomerID:        rc.Customer().ID,
		CustomerEmail:     rc.Customer().Email,
		InvoiceID:         rc.Invoice().ID,
		InvoiceNumber:     rc.Invoice().Number,
		ModelTier:         decision.ModelTier,
		ModelUsed:         decision.AIModel,
		IntendedModel:     decision.AIModel,
		Confidence:        80,
		RecommendedAction: "Send a reminder",
		Tone:              entity.ToneStandard,
		Timing:            entity.TimingTomorrow,
		DraftEmail:        &entity.DraftEmail{Subject: "Reminder", Body: "Please pay."},
		ApprovalRequired:  decision.ReviewLevel != entity.ReviewQuickApprove,
		ReviewLevel:       decision.ReviewLevel,
		Status:            entity.RecommendationPending,
		CreatedAt:         fixedNow,
	}, nil
}

type collectionFixture struct {
	svc       CollectionService
	recs      *memRecommendationRepo
	generator *fakeGenerator
	locker    *stubLocker
	metrics   *recordingMetrics
}

func newCollectionFixture() *collectionFixture {
	f := &collectionFixture{
		recs:      newMemRecommendationRepo(),
		generator: &fakeGenerator{},
		locker:    &stubLocker{held: map[string]bool{}},
		metrics:   newRecordingMetrics(),
	}
	f.svc = NewCollectionService(
		scoring.NewEngine(scoring.WithClock(func() time.Time { return fixedNow })),
		routing.NewEngine(routing.DefaultThresholds(), routing.DefaultTiers()),
		f.generator,
		f.recs,
		f.locker,
		f.metrics,
		nopLogger{},
	)
	return f
}

func collectionRequest() CollectionRequest {
	return CollectionRequest{
		Customer: entity.Customer{ID: "cust-1", Name: "Acme", Email: "ap@acme.test", AccountValue: 8000},
		Invoice: entity.Invoice{
			ID:         "inv-1",
			Number:     "INV-1001",
			CustomerID: "cust-1",
			Amount:     2500,
			IssueDate:  fixedNow.AddDate(0, 0, -40),
			DueDate:    fixedNow.AddDate(0, 0, -10),
			Status:     entity.InvoiceStatusOverdue,
		},
	}
}

func TestCollectionService_Recommend(t *testing.T) {
	f := newCollectionFixture()

	result, err := f.svc.Recommend(context.Background(), collectionRequest())
	require.NoError(t, err)

	require.NotNil(t, result.Score)
	assert.Equal(t, result.Score.RiskLevel, entity.DefaultRiskThresholds().Classify(result.Score.Score))
	assert.Equal(t, result.Routing.ModelTier, result.Recommendation.ModelTier)
	assert.NotEmpty(t, result.Routing.Reasoning)

	stored, err := f.recs.GetByID(context.Background(), result.Recommendation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.RecommendationPending, stored.Status)

	assert.Equal(t, []string{"inv-1"}, f.locker.acquired)
	assert.Equal(t, 1, f.metrics.recommendations)
}

func TestCollectionService_Recommend_RejectsInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CollectionRequest)
		wantErr error
	}{
		{
			name:    "paid invoice",
			mutate:  func(r *CollectionRequest) { r.Invoice.Status = entity.InvoiceStatusPaid },
			wantErr: ErrInvoiceNotCollectible,
		},
		{
			name:    "invoice of another customer",
			mutate:  func(r *CollectionRequest) { r.Invoice.CustomerID = "cust-2" },
			wantErr: scoring.ErrInvalidInput,
		},
		{
			name:    "missing invoice id",
			mutate:  func(r *CollectionRequest) { r.Invoice.ID = "" },
			wantErr: scoring.ErrInvalidInput,
		},
		{
			name:    "negative amount",
			mutate:  func(r *CollectionRequest) { r.Invoice.Amount = -1 },
			wantErr: scoring.ErrInvalidInput,
		},
		{
			name:    "missing due date",
			mutate:  func(r *CollectionRequest) { r.Invoice.DueDate = time.Time{} },
			wantErr: scoring.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCollectionFixture()
			req := collectionRequest()
			tt.mutate(&req)

			_, err := f.svc.Recommend(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.generator.calls)
			assert.Empty(t, f.recs.recs)
		})
	}
}

func TestCollectionService_Recommend_LockHeld(t *testing.T) {
	f := newCollectionFixture()
	f.locker.held["inv-1"] = true

	_, err := f.svc.Recommend(context.Background(), collectionRequest())
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.Zero(t, f.generator.calls)
}

func TestCollectionService_Recommend_LockError(t *testing.T) {
	f := newCollectionFixture()
	f.locker.err = errors.New("redis: connection refused")

	_, err := f.svc.Recommend(context.Background(), collectionRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationInProgress)
}

func TestCollectionService_Recommend_PendingExists(t *testing.T) {
	f := newCollectionFixture()
	_, err := f.svc.Recommend(context.Background(), collectionRequest())
	require.NoError(t, err)

	_, err = f.svc.Recommend(context.Background(), collectionRequest())
	assert.ErrorIs(t, err, ErrRecommendationPending)
	assert.Equal(t, 1, f.generator.calls)
}

func TestCollectionService_Recommend_CreateRace(t *testing.T) {
	f := newCollectionFixture()
	f.recs.createErr = fmt.Errorf("invoice inv-1: %w", port.ErrPendingExists)

	_, err := f.svc.Recommend(context.Background(), collectionRequest())
	assert.ErrorIs(t, err, ErrRecommendationPending)
}

func TestCollectionService_Recommend_GenerationFailure(t *testing.T) {
	f := newCollectionFixture()
	f.generator.err = fmt.Errorf("%w: both attempts failed", recommendation.ErrGenerationFailed)

	_, err := f.svc.Recommend(context.Background(), collectionRequest())
	assert.ErrorIs(t, err, recommendation.ErrGenerationFailed)
	assert.Empty(t, f.recs.recs)
	assert.Equal(t, 1, f.metrics.failures)
	assert.Zero(t, f.metrics.recommendations)
}

func TestCollectionService_Get(t *testing.T) {
	f := newCollectionFixture()

	_, err := f.svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	result, err := f.svc.Recommend(context.Background(), collectionRequest())
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), result.Recommendation.ID)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.InvoiceID)

	list, err := f.svc.List(context.Background(), port.RecommendationFilter{Status: entity.RecommendationPending})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
