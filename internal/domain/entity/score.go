package entity

import "fmt"

// RiskLevel is the collectability risk derived from a relationship score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// RiskThresholds maps a score onto a RiskLevel. Scoring and routing share one instance
// so the two engines can never disagree on the mapping.
type RiskThresholds struct {
	Low    int `mapstructure:"low"`    // score >= Low is low risk
	Medium int `mapstructure:"medium"` // score >= Medium is medium risk
}

// DefaultRiskThresholds returns the 85/65 thresholds
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Low: 85, Medium: 65}
}

// Classify returns the risk level for a score
func (t RiskThresholds) Classify(score int) RiskLevel {
	switch {
	case score >= t.Low:
		return RiskLow
	case score >= t.Medium:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Validate ensures thresholds are within 0-100 and ordered
func (t RiskThresholds) Validate() error {
	if t.Low < 0 || t.Low > 100 || t.Medium < 0 || t.Medium > 100 {
		return fmt.Errorf("risk thresholds must be between 0 and 100 (low: %d, medium: %d)", t.Low, t.Medium)
	}
	if t.Low <= t.Medium {
		return fmt.Errorf("low-risk threshold must be greater than medium-risk threshold (low: %d, medium: %d)", t.Low, t.Medium)
	}
	return nil
}

// PaymentHistoryFactors are the normalized payment-history inputs
type PaymentHistoryFactors struct {
	TotalPayments   int     `json:"total_payments"`
	OnTimePayments  int     `json:"on_time_payments"`
	Defaults        int     `json:"defaults"`
	AverageDaysLate float64 `json:"average_days_late"`
	PaymentsPerYear float64 `json:"payments_per_year"`
}

// OnTimeRate returns the fraction of payments made on time
func (p PaymentHistoryFactors) OnTimeRate() float64 {
	if p.TotalPayments <= 0 {
		return 1
	}
	return float64(p.OnTimePayments) / float64(p.TotalPayments)
}

// FinancialHealthFactors are the normalized financial-health inputs
type FinancialHealthFactors struct {
	CreditUtilization float64 `json:"credit_utilization"`
	DebtRatio         float64 `json:"debt_ratio"`
	CashFlowStability float64 `json:"cash_flow_stability"`
	AccountBalance    float64 `json:"account_balance"`
	GrowthRate        float64 `json:"growth_rate"`
}

// RelationshipFactors are the normalized relationship inputs
type RelationshipFactors struct {
	AccountAgeMonths            int     `json:"account_age_months"`
	CommunicationResponsiveness float64 `json:"communication_responsiveness"`
	PriorResolutions            int     `json:"prior_resolutions"`
	ContractCompliance          float64 `json:"contract_compliance"`
	PartnershipDepth            float64 `json:"partnership_depth"`
}

// BehavioralFactors are the normalized behavioral inputs
type BehavioralFactors struct {
	ContactAttempts      int     `json:"contact_attempts"`
	AverageResponseHours float64 `json:"average_response_hours"`
	DisputeCount         int     `json:"dispute_count"`
	EngagementLevel      float64 `json:"engagement_level"`
}

// ExternalFactors are the normalized external/market inputs
type ExternalFactors struct {
	IndustryRisk      float64 `json:"industry_risk"`
	EconomicIndicator float64 `json:"economic_indicator"`
	SeasonalFactor    float64 `json:"seasonal_factor"`
}

// ScoringFactors is derived per scoring call and never persisted on its own
type ScoringFactors struct {
	PaymentHistory  PaymentHistoryFactors  `json:"payment_history"`
	FinancialHealth FinancialHealthFactors `json:"financial_health"`
	Relationship    RelationshipFactors    `json:"relationship"`
	Behavioral      BehavioralFactors      `json:"behavioral"`
	External        ExternalFactors        `json:"external"`

	// PresentFields counts the sub-fields supplied by the snapshot rather than defaulted
	PresentFields int `json:"present_fields"`
	// ExpectedFields is the total number of sub-fields
	ExpectedFields int `json:"expected_fields"`
}

// FactorScores are the per-group 0-100 scores
type FactorScores struct {
	PaymentHistory  float64 `json:"payment_history"`
	FinancialHealth float64 `json:"financial_health"`
	Relationship    float64 `json:"relationship"`
	Behavioral      float64 `json:"behavioral"`
	External        float64 `json:"external"`
}

// ScoreResult is the output of the relationship scoring engine
type ScoreResult struct {
	Score          int            `json:"score"`
	Confidence     int            `json:"confidence"`
	FactorScores   FactorScores   `json:"factor_scores"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Recommendation string         `json:"recommendation"`
	Factors        ScoringFactors `json:"factors"`
}
