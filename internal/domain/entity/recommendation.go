package entity

import "time"

// Tone of a collection message
type Tone string

const (
	ToneGentle   Tone = "gentle"
	ToneStandard Tone = "standard"
	ToneFirm     Tone = "firm"
	ToneUrgent   Tone = "urgent"
)

// IsValid returns true if the tone is known
func (t Tone) IsValid() bool {
	switch t {
	case ToneGentle, ToneStandard, ToneFirm, ToneUrgent:
		return true
	default:
		return false
	}
}

// Timing of a collection action
type Timing string

const (
	TimingImmediate Timing = "immediate"
	TimingTomorrow  Timing = "tomorrow"
	TimingNextWeek  Timing = "next-week"
	TimingEscalate  Timing = "escalate"
)

// IsValid returns true if the timing is known
func (t Timing) IsValid() bool {
	switch t {
	case TimingImmediate, TimingTomorrow, TimingNextWeek, TimingEscalate:
		return true
	default:
		return false
	}
}

// DraftEmail is a drafted collection email
type DraftEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Alternative is a secondary collection approach offered to the reviewer
type Alternative struct {
	Approach    string  `json:"approach"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	Timeline    string  `json:"timeline"`
}

// BusinessImpact estimates what is at stake for a collection action
type BusinessImpact struct {
	RevenueAtRisk    float64   `json:"revenue_at_risk"`
	RelationshipRisk RiskLevel `json:"relationship_risk"`
	ChurnProbability float64   `json:"churn_probability"`
}

// CollectionRecommendation is created once per routing decision and is immutable
// afterwards except for Status, which the approval workflow owns.
type CollectionRecommendation struct {
	ID                 string `json:"id"`
	CustomerID         string `json:"customer_id"`
	CustomerExternalID string `json:"customer_external_id,omitempty"`
	CustomerEmail      string `json:"customer_email,omitempty"`
	InvoiceID          string `json:"invoice_id"`
	InvoiceNumber      string `json:"invoice_number,omitempty"`

	ModelTier     ModelTier `json:"model_tier"`
	ModelUsed     string    `json:"model_used"`
	IntendedModel string    `json:"intended_model"`
	FallbackUsed  bool      `json:"fallback_used"`

	Confidence        float64        `json:"confidence"`
	RecommendedAction string         `json:"recommended_action"`
	Tone              Tone           `json:"tone"`
	Timing            Timing         `json:"timing"`
	DraftEmail        *DraftEmail    `json:"draft_email,omitempty"`
	Reasoning         string         `json:"reasoning"`
	Alternatives      []Alternative  `json:"alternatives"`
	BusinessImpact    BusinessImpact `json:"business_impact"`

	ApprovalRequired   bool        `json:"approval_required"`
	ReviewLevel        ReviewLevel `json:"review_level"`
	EscalationTriggers []string    `json:"escalation_triggers"`

	Status    RecommendationStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// RecommendationStatus mirrors the approval workflow state of a recommendation
type RecommendationStatus string

const (
	RecommendationPending  RecommendationStatus = "pending"
	RecommendationApproved RecommendationStatus = "approved"
	RecommendationRejected RecommendationStatus = "rejected"
	RecommendationModified RecommendationStatus = "modified"
	RecommendationExecuted RecommendationStatus = "executed"
)
