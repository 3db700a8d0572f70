package scoring

import (
	"fmt"
	"math"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// Weights are the factor-group weights of the relationship score
type Weights struct {
	PaymentHistory  float64 `mapstructure:"payment_history"`
	FinancialHealth float64 `mapstructure:"financial_health"`
	Relationship    float64 `mapstructure:"relationship"`
	Behavioral      float64 `mapstructure:"behavioral"`
	External        float64 `mapstructure:"external"`
}

// DefaultWeights returns the 0.35/0.25/0.20/0.15/0.05 weighting
func DefaultWeights() Weights {
	return Weights{
		PaymentHistory:  0.35,
		FinancialHealth: 0.25,
		Relationship:    0.20,
		Behavioral:      0.15,
		External:        0.05,
	}
}

// Validate ensures every weight is non-negative and the weights sum to 1
func (w Weights) Validate() error {
	groups := []struct {
		name  string
		value float64
	}{
		{"payment_history", w.PaymentHistory},
		{"financial_health", w.FinancialHealth},
		{"relationship", w.Relationship},
		{"behavioral", w.Behavioral},
		{"external", w.External},
	}
	for _, g := range groups {
		if g.value < 0 {
			return fmt.Errorf("weight %s must not be negative, got %.2f", g.name, g.value)
		}
	}

	sum := w.PaymentHistory + w.FinancialHealth + w.Relationship + w.Behavioral + w.External
	if math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

func (w Weights) apply(s entity.FactorScores) float64 {
	return w.PaymentHistory*s.PaymentHistory +
		w.FinancialHealth*s.FinancialHealth +
		w.Relationship*s.Relationship +
		w.Behavioral*s.Behavioral +
		w.External*s.External
}
