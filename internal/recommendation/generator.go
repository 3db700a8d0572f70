// Package recommendation drafts collection recommendations through tiered drafting
// capabilities, with a one-shot fallback to the ROUTINE tier.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/routing"
)

// Generator turns a routing decision into a CollectionRecommendation
type Generator struct {
	capabilities port.CapabilitySet
	tiers        routing.Tiers
	prompts      *routing.PromptBuilder
	impact       ImpactConfig
	now          func() time.Time
	newID        func() string
	logger       *zap.Logger
}

// Option configures the generator
type Option func(*Generator)

// WithPromptBuilder overrides the built-in prompt templates
func WithPromptBuilder(b *routing.PromptBuilder) Option {
	return func(g *Generator) {
		g.prompts = b
	}
}

// WithImpactConfig overrides the business-impact constants
func WithImpactConfig(cfg ImpactConfig) Option {
	return func(g *Generator) {
		g.impact = cfg
	}
}

// WithClock sets the creation-time source
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithIDGenerator sets the recommendation ID source
func WithIDGenerator(newID func() string) Option {
	return func(g *Generator) {
		g.newID = newID
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator bound to one capability per tier
func NewGenerator(capabilities port.CapabilitySet, tiers routing.Tiers, opts ...Option) (*Generator, error) {
	if _, ok := capabilities[entity.TierRoutine]; !ok {
		return nil, fmt.Errorf("%w: %s capability is required for fallback", ErrNoCapability, entity.TierRoutine)
	}

	g := &Generator{
		capabilities: capabilities,
		tiers:        tiers,
		impact:       DefaultImpactConfig(),
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.prompts == nil {
		b, err := routing.NewPromptBuilder(routing.DefaultPromptConfig())
		if err != nil {
			return nil, err
		}
		g.prompts = b
	}

	return g, nil
}

// Generate drafts a recommendation with the capability bound to the decision's tier.
// Any failure of that call (error, timeout, cancellation or unparseable output) triggers
// exactly one call to the ROUTINE capability; only if that also fails is
// ErrGenerationFailed returned. A partial recommendation is never returned.
func (g *Generator) Generate(ctx context.Context, rc entity.RoutingContext, decision entity.RoutingDecision) (*entity.CollectionRecommendation, error) {
	prompt, err := g.prompts.Build(decision.PromptTemplate, rc)
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %w", ErrGenerationFailed, err)
	}

	draft, modelUsed, primaryErr := g.attempt(ctx, decision.ModelTier, decision.AIModel, prompt)
	fallbackUsed := false

	if primaryErr != nil {
		fallbackModel := g.tiers.Routine.Model
		g.logger.Warn("Drafting capability failed, falling back to routine tier",
			zap.String("invoice_id", rc.Invoice().ID),
			zap.String("tier", decision.ModelTier.String()),
			zap.String("intended_model", decision.AIModel),
			zap.String("fallback_model", fallbackModel),
			zap.Error(primaryErr))

		var fallbackErr error
		draft, modelUsed, fallbackErr = g.attempt(ctx, entity.TierRoutine, fallbackModel, prompt)
		if fallbackErr != nil {
			g.logger.Error("Fallback drafting failed",
				zap.String("invoice_id", rc.Invoice().ID),
				zap.Error(fallbackErr))
			return nil, fmt.Errorf("%w: %s: %w; fallback %s: %w",
				ErrGenerationFailed, decision.AIModel, primaryErr, fallbackModel, fallbackErr)
		}
		fallbackUsed = true
	}

	confidence := draft.Confidence
	if fallbackUsed {
		// A lower-capability draft must not report more confidence than the score supports
		confidence = math.Min(confidence, float64(rc.Confidence()))
	}

	rec := &entity.CollectionRecommendation{
		ID:                 g.newID(),
		CustomerID:         rc.Customer().ID,
		CustomerExternalID: rc.Customer().ExternalID,
		CustomerEmail:      rc.Customer().Email,
		InvoiceID:          rc.Invoice().ID,
		InvoiceNumber:      rc.Invoice().Number,
		ModelTier:          decision.ModelTier,
		ModelUsed:          modelUsed,
		IntendedModel:      decision.AIModel,
		FallbackUsed:       fallbackUsed,
		Confidence:         confidence,
		RecommendedAction:  draft.RecommendedAction,
		Tone:               draft.Tone,
		Timing:             draft.Timing,
		DraftEmail:         draft.DraftEmail,
		Reasoning:          draft.Reasoning,
		Alternatives:       draft.Alternatives,
		BusinessImpact:     ComputeImpact(rc, g.impact),
		ApprovalRequired:   decision.ReviewLevel != entity.ReviewQuickApprove,
		ReviewLevel:        decision.ReviewLevel,
		EscalationTriggers: EscalationTriggers(decision.ModelTier, rc, g.impact),
		Status:             entity.RecommendationPending,
		CreatedAt:          g.now(),
	}

	g.logger.Info("Recommendation drafted",
		zap.String("recommendation_id", rec.ID),
		zap.String("invoice_id", rec.InvoiceID),
		zap.String("tier", rec.ModelTier.String()),
		zap.String("model_used", rec.ModelUsed),
		zap.Bool("fallback_used", rec.FallbackUsed))

	return rec, nil
}

type draftResult struct {
	resp *port.DraftResponse
	err  error
}

// attempt makes one bounded capability call and parses its output. The tier timeout
// is enforced here even if the capability ignores its context.
func (g *Generator) attempt(ctx context.Context, tier entity.ModelTier, model, prompt string) (*draftPayload, string, error) {
	capability, ok := g.capabilities[tier]
	if !ok || capability == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNoCapability, tier)
	}

	timeout := g.tiers.Profile(tier).Timeout
	if timeout <= 0 {
		timeout = routing.DefaultTiers().Profile(tier).Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan draftResult, 1)
	go func() {
		resp, err := capability.Draft(callCtx, port.DraftRequest{
			Model:        model,
			SystemPrompt: routing.SystemPrompt,
			Prompt:       prompt,
		})
		done <- draftResult{resp: resp, err: err}
	}()

	var result draftResult
	select {
	case result = <-done:
	case <-callCtx.Done():
		return nil, "", contextError(callCtx.Err())
	}

	if result.err != nil {
		if callCtx.Err() != nil {
			return nil, "", fmt.Errorf("%w: %w", contextError(callCtx.Err()), result.err)
		}
		return nil, "", result.err
	}
	if result.resp == nil {
		return nil, "", fmt.Errorf("%w: empty response", ErrUnparseableDraft)
	}

	draft, err := parseDraft(result.resp.Content)
	if err != nil {
		return nil, "", err
	}

	return draft, model, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrDraftTimeout, err)
	}
	return err
}
