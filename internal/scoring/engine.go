// Package scoring computes a deterministic relationship score, a confidence estimate
// and a risk level for a customer/invoice pair.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// ErrInvalidInput is returned for structurally invalid snapshots. Missing optional
// fields never produce it.
var ErrInvalidInput = errors.New("invalid scoring input")

// Engine scores customers. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights    Weights
	thresholds entity.RiskThresholds
	now        func() time.Time
}

// Option configures the scoring engine
type Option func(*Engine)

// WithWeights overrides the factor-group weights
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithRiskThresholds overrides the score-to-risk mapping
func WithRiskThresholds(t entity.RiskThresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithClock sets the time source used to derive days past due
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a scoring engine with default weights and thresholds
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:    DefaultWeights(),
		thresholds: entity.DefaultRiskThresholds(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Now returns the engine clock reading
func (e *Engine) Now() time.Time {
	return e.now()
}

// Thresholds returns the risk thresholds the engine classifies with
func (e *Engine) Thresholds() entity.RiskThresholds {
	return e.thresholds
}

// Score computes the relationship score as of the engine clock
func (e *Engine) Score(customer entity.Customer, invoice entity.Invoice) (*entity.ScoreResult, error) {
	return e.ScoreAt(customer, invoice, e.now())
}

// ScoreAt computes the relationship score as of asOf. The result depends only on its arguments.
func (e *Engine) ScoreAt(customer entity.Customer, invoice entity.Invoice, asOf time.Time) (*entity.ScoreResult, error) {
	if err := validate(customer, invoice); err != nil {
		return nil, err
	}

	factors := DeriveFactors(customer, invoice, asOf)
	groups := computeFactorScores(factors)

	score := int(clamp(math.Round(e.weights.apply(groups)), 0, 100))
	confidence := computeConfidence(score, factors, groups)
	risk := e.thresholds.Classify(score)

	return &entity.ScoreResult{
		Score:          score,
		Confidence:     confidence,
		FactorScores:   groups,
		RiskLevel:      risk,
		Recommendation: RecommendationText(risk, confidence),
		Factors:        factors,
	}, nil
}

func validate(customer entity.Customer, invoice entity.Invoice) error {
	if invoice.Amount < 0 {
		return fmt.Errorf("%w: invoice amount must not be negative, got %.2f", ErrInvalidInput, invoice.Amount)
	}
	if invoice.DueDate.IsZero() {
		return fmt.Errorf("%w: invoice %q has no due date", ErrInvalidInput, invoice.Number)
	}
	if customer.AccountValue < 0 {
		return fmt.Errorf("%w: account value must not be negative, got %.2f", ErrInvalidInput, customer.AccountValue)
	}
	if customer.AccountAgeMonths != nil && *customer.AccountAgeMonths < 0 {
		return fmt.Errorf("%w: account age must not be negative", ErrInvalidInput)
	}

	p := customer.Profile
	if p == nil {
		return nil
	}
	counts := []struct {
		name  string
		value *int
	}{
		{"total_payments", p.TotalPayments},
		{"on_time_payments", p.OnTimePayments},
		{"defaults", p.Defaults},
		{"prior_resolutions", p.PriorResolutions},
		{"contact_attempts", p.ContactAttempts},
		{"dispute_count", p.DisputeCount},
	}
	for _, c := range counts {
		if c.value != nil && *c.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidInput, c.name, *c.value)
		}
	}
	if p.TotalPayments != nil && p.OnTimePayments != nil && *p.OnTimePayments > *p.TotalPayments {
		return fmt.Errorf("%w: on-time payments (%d) exceed total payments (%d)",
			ErrInvalidInput, *p.OnTimePayments, *p.TotalPayments)
	}
	return nil
}
