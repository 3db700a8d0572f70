package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/scoring"
)

// Scorer computes relationship scores; implemented by scoring.Engine
type Scorer interface {
	Now() time.Time
	ScoreAt(customer entity.Customer, invoice entity.Invoice, asOf time.Time) (*entity.ScoreResult, error)
}

// Router selects a model tier; implemented by routing.Engine
type Router interface {
	Route(rc entity.RoutingContext) entity.RoutingDecision
}

// Generator drafts recommendations; implemented by recommendation.Generator
type Generator interface {
	Generate(ctx context.Context, rc entity.RoutingContext, decision entity.RoutingDecision) (*entity.CollectionRecommendation, error)
}

// CollectionRequest carries the customer and invoice snapshots to evaluate
type CollectionRequest struct {
	Customer entity.Customer `json:"customer"`
	Invoice  entity.Invoice  `json:"invoice"`
}

// CollectionResult is the full pipeline output for one invoice
type CollectionResult struct {
	Score          *entity.ScoreResult              `json:"score"`
	Routing        entity.RoutingDecision           `json:"routing"`
	Recommendation *entity.CollectionRecommendation `json:"recommendation"`
}

// CollectionService runs the scoring, routing and generation pipeline
type CollectionService interface {
	Recommend(ctx context.Context, req CollectionRequest) (*CollectionResult, error)
	Get(ctx context.Context, id string) (*entity.CollectionRecommendation, error)
	List(ctx context.Context, filter port.RecommendationFilter) ([]*entity.CollectionRecommendation, error)
}

type collectionServiceImpl struct {
	scorer    Scorer
	router    Router
	generator Generator
	recRepo   port.RecommendationRepository
	locker    port.InvoiceLocker
	metrics   port.RecommendationMetrics
	logger    Logger
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	scorer Scorer,
	router Router,
	generator Generator,
	recRepo port.RecommendationRepository,
	locker port.InvoiceLocker,
	metrics port.RecommendationMetrics,
	logger Logger,
) CollectionService {
	return &collectionServiceImpl{
		scorer:    scorer,
		router:    router,
		generator: generator,
		recRepo:   recRepo,
		locker:    locker,
		metrics:   metrics,
		logger:    logger,
	}
}

// Recommend scores the customer, routes to a tier and persists a drafted recommendation.
// Nothing is persisted when any step fails.
func (s *collectionServiceImpl) Recommend(ctx context.Context, req CollectionRequest) (*CollectionResult, error) {
	customer, invoice := req.Customer, req.Invoice

	if invoice.IsPaid() {
		return nil, fmt.Errorf("%w: invoice %s is paid", ErrInvoiceNotCollectible, invoice.ID)
	}
	if invoice.ID == "" || customer.ID == "" {
		return nil, fmt.Errorf("%w: customer and invoice ids are required", scoring.ErrInvalidInput)
	}
	if invoice.CustomerID != "" && invoice.CustomerID != customer.ID {
		return nil, fmt.Errorf("%w: invoice %s belongs to customer %s", scoring.ErrInvalidInput, invoice.ID, invoice.CustomerID)
	}

	asOf := s.scorer.Now()
	score, err := s.scorer.ScoreAt(customer, invoice, asOf)
	if err != nil {
		return nil, err
	}

	rc := entity.NewRoutingContext(customer, invoice, *score, asOf)
	decision := s.router.Route(rc)

	release, err := s.locker.Acquire(ctx, invoice.ID)
	if err != nil {
		if errors.Is(err, port.ErrLockHeld) {
			return nil, fmt.Errorf("%w: %s", ErrGenerationInProgress, invoice.ID)
		}
		return nil, fmt.Errorf("failed to lock invoice: %w", err)
	}
	defer release()

	pending, err := s.recRepo.GetPendingByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending recommendation: %w", err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: %s", ErrRecommendationPending, pending.ID)
	}

	started := time.Now()
	rec, err := s.generator.Generate(ctx, rc, decision)
	if err != nil {
		s.metrics.ObserveGenerationFailure(decision.ModelTier)
		s.logger.Error("Recommendation generation failed",
			"invoice_id", invoice.ID,
			"tier", decision.ModelTier,
			"error", err)
		return nil, err
	}

	if err := s.recRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, port.ErrPendingExists) {
			return nil, fmt.Errorf("%w: %s", ErrRecommendationPending, invoice.ID)
		}
		return nil, fmt.Errorf("failed to save recommendation: %w", err)
	}

	s.metrics.ObserveRecommendation(rec.ModelTier, rec.FallbackUsed, time.Since(started).Seconds())
	s.logger.Info("Recommendation created",
		"recommendation_id", rec.ID,
		"invoice_id", invoice.ID,
		"score", score.Score,
		"risk_level", score.RiskLevel,
		"tier", decision.ModelTier,
		"fallback_used", rec.FallbackUsed)

	return &CollectionResult{
		Score:          score,
		Routing:        decision,
		Recommendation: rec,
	}, nil
}

// Get returns a recommendation or ErrNotFound
func (s *collectionServiceImpl) Get(ctx context.Context, id string) (*entity.CollectionRecommendation, error) {
	rec, err := s.recRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("recommendation %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// List returns recommendations matching the filter
func (s *collectionServiceImpl) List(ctx context.Context, filter port.RecommendationFilter) ([]*entity.CollectionRecommendation, error) {
	recs, err := s.recRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}
