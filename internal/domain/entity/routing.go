package entity

import "time"

// ModelTier is an escalating level of drafting capability and human-review intensity
type ModelTier string

const (
	TierRoutine   ModelTier = "ROUTINE"
	TierStrategic ModelTier = "STRATEGIC"
	TierSensitive ModelTier = "SENSITIVE"
)

var tierSeverity = map[ModelTier]int{
	TierRoutine:   0,
	TierStrategic: 1,
	TierSensitive: 2,
}

// String returns the string representation of the tier
func (t ModelTier) String() string {
	return string(t)
}

// IsValid returns true if the tier is known
func (t ModelTier) IsValid() bool {
	_, ok := tierSeverity[t]
	return ok
}

// Severity orders tiers: ROUTINE < STRATEGIC < SENSITIVE
func (t ModelTier) Severity() int {
	return tierSeverity[t]
}

// ReviewLevel is the depth of human review a tier requires
type ReviewLevel string

const (
	ReviewQuickApprove ReviewLevel = "quick_approve"
	ReviewStrategic    ReviewLevel = "strategic_review"
	ReviewExecutive    ReviewLevel = "executive_review"
)

// PromptTemplate selects the structured prompt body for a tier
type PromptTemplate string

const (
	PromptRoutine   PromptTemplate = "routine"
	PromptStrategic PromptTemplate = "strategic"
	PromptSensitive PromptTemplate = "sensitive"
)

// RoutingContext is the immutable contract between scoring and routing.
// Fields are unexported so a context cannot be altered after construction.
type RoutingContext struct {
	customer          Customer
	invoice           Invoice
	relationshipScore int
	riskLevel         RiskLevel
	confidence        int
	daysPastDue       int
	asOf              time.Time
}

// NewRoutingContext bundles a scoring result with the snapshots it was computed from
func NewRoutingContext(customer Customer, invoice Invoice, score ScoreResult, asOf time.Time) RoutingContext {
	return RoutingContext{
		customer:          customer,
		invoice:           invoice,
		relationshipScore: score.Score,
		riskLevel:         score.RiskLevel,
		confidence:        score.Confidence,
		daysPastDue:       invoice.DaysPastDue(asOf),
		asOf:              asOf,
	}
}

func (c RoutingContext) Customer() Customer     { return c.customer }
func (c RoutingContext) Invoice() Invoice       { return c.invoice }
func (c RoutingContext) RelationshipScore() int { return c.relationshipScore }
func (c RoutingContext) RiskLevel() RiskLevel   { return c.riskLevel }
func (c RoutingContext) Confidence() int        { return c.confidence }
func (c RoutingContext) DaysPastDue() int       { return c.daysPastDue }
func (c RoutingContext) AsOf() time.Time        { return c.asOf }
func (c RoutingContext) AccountValue() float64  { return c.customer.AccountValue }
func (c RoutingContext) InvoiceAmount() float64 { return c.invoice.Amount }

// RoutingDecision binds a tier to a drafting model, cost budget and review depth
type RoutingDecision struct {
	ModelTier           ModelTier      `json:"model_tier"`
	AIModel             string         `json:"ai_model"`
	Capability          string         `json:"capability"`
	EstimatedCost       float64        `json:"estimated_cost"`
	ReviewLevel         ReviewLevel    `json:"review_level"`
	EstimatedReviewTime float64        `json:"estimated_review_time"` // minutes
	Reasoning           string         `json:"reasoning"`
	PromptTemplate      PromptTemplate `json:"prompt_template"`
	TriggeredConditions []string       `json:"triggered_conditions,omitempty"`
}
