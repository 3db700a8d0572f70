package scoring

import (
	"math"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// Confidence bounds: there is always some basis for a default, so zero is never reported
const (
	MinConfidence = 10
	MaxConfidence = 100
)

// confidenceComponents breaks the confidence estimate into its four parts
type confidenceComponents struct {
	completeness float64
	consistency  float64
	accuracy     float64
	volume       float64
}

func (c confidenceComponents) total() int {
	raw := 0.30*c.completeness + 0.25*c.consistency + 0.25*c.accuracy + 0.20*c.volume
	return int(clamp(math.Round(raw), MinConfidence, MaxConfidence))
}

// computeConfidence estimates how much the score can be trusted, independent of the score value
// except for the historical-accuracy lookup.
func computeConfidence(score int, factors entity.ScoringFactors, scores entity.FactorScores) int {
	expected := factors.ExpectedFields
	if expected <= 0 {
		expected = ExpectedFields
	}

	return confidenceComponents{
		completeness: clamp(float64(factors.PresentFields)/float64(expected)*100, 0, 100),
		consistency:  clamp(100-2*stdDev(scores.PaymentHistory, scores.FinancialHealth, scores.Relationship), 0, 100),
		accuracy:     historicalAccuracy(score),
		volume:       dataVolume(factors.PaymentHistory.TotalPayments, factors.Relationship.AccountAgeMonths),
	}.total()
}

// historicalAccuracy favors extreme scores, which are easier to validate than borderline ones
func historicalAccuracy(score int) float64 {
	switch {
	case score >= 80:
		return 92
	case score >= 60:
		return 78
	case score >= 40:
		return 65
	default:
		return 45
	}
}

// dataVolume saturates with payment sample count (60 points) and tenure (40 points)
func dataVolume(payments, months int) float64 {
	p := math.Max(0, float64(payments))
	m := math.Max(0, float64(months))
	return 60*(1-math.Exp(-p/12)) + 40*(1-math.Exp(-m/24))
}

// stdDev is the population standard deviation
func stdDev(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := mean(values...)
	var sq float64
	for _, v := range values {
		sq += (v - avg) * (v - avg)
	}
	return math.Sqrt(sq / float64(len(values)))
}
