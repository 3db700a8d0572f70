package scoring

import "github.com/garyjia/ai-collections/internal/domain/entity"

// CollectMoreDataMessage overrides every score-derived message when confidence is below 60
const CollectMoreDataMessage = "Collect more data before choosing a collection strategy: the available customer history is too thin to trust this score."

const moderateConfidence = 60
const highConfidence = 80

type confidenceBucket int

const (
	confidenceModerate confidenceBucket = iota
	confidenceHigh
)

type messageKey struct {
	risk       entity.RiskLevel
	confidence confidenceBucket
}

var recommendationMessages = map[messageKey]string{
	{entity.RiskLow, confidenceHigh}:        "Strong relationship: send a gentle reminder and protect the goodwill.",
	{entity.RiskLow, confidenceModerate}:    "Healthy relationship: a standard reminder is appropriate; keep monitoring payment behavior.",
	{entity.RiskMedium, confidenceHigh}:     "Moderate risk: follow up firmly and ask for a committed payment date.",
	{entity.RiskMedium, confidenceModerate}: "Moderate risk: standard follow-up, and confirm billing contacts and invoice details.",
	{entity.RiskHigh, confidenceHigh}:       "High risk: escalate promptly and consider a payment plan or credit hold.",
	{entity.RiskHigh, confidenceModerate}:   "High risk: reach out personally before escalating, then tighten terms.",
}

// RecommendationText returns the templated guidance for a risk level and confidence
func RecommendationText(risk entity.RiskLevel, confidence int) string {
	if confidence < moderateConfidence {
		return CollectMoreDataMessage
	}

	bucket := confidenceModerate
	if confidence >= highConfidence {
		bucket = confidenceHigh
	}

	if msg, ok := recommendationMessages[messageKey{risk, bucket}]; ok {
		return msg
	}
	return CollectMoreDataMessage
}
