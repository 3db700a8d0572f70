package entity

// Customer is a read-only snapshot of a customer account supplied by the persistence layer
type Customer struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"` // CRM/ERP identifier used for activity logging
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Industry   string `json:"industry,omitempty"`

	// RelationshipScore is the last persisted score; it may be stale and is recomputed on every scoring call
	RelationshipScore int     `json:"relationship_score"`
	AccountValue      float64 `json:"account_value"` // annualized revenue

	HealthScore      *float64 `json:"health_score,omitempty"`       // 0-100
	AccountAgeMonths *int     `json:"account_age_months,omitempty"` // tenure

	Profile *CustomerProfile `json:"profile,omitempty"`
}

// CustomerProfile carries the optional raw attributes the scoring engine normalizes.
// Every field is optional; nil means "not supplied" and the documented default applies.
type CustomerProfile struct {
	// Payment history
	TotalPayments   *int     `json:"total_payments,omitempty"`
	OnTimePayments  *int     `json:"on_time_payments,omitempty"`
	Defaults        *int     `json:"defaults,omitempty"`
	AverageDaysLate *float64 `json:"average_days_late,omitempty"`
	PaymentsPerYear *float64 `json:"payments_per_year,omitempty"`

	// Financial health
	CreditUtilization *float64 `json:"credit_utilization,omitempty"`  // 0-1
	DebtRatio         *float64 `json:"debt_ratio,omitempty"`          // 0-1
	CashFlowStability *float64 `json:"cash_flow_stability,omitempty"` // 0-1
	AccountBalance    *float64 `json:"account_balance,omitempty"`
	GrowthRate        *float64 `json:"growth_rate,omitempty"` // fraction, 0.08 = 8%

	// Relationship
	CommunicationResponsiveness *float64 `json:"communication_responsiveness,omitempty"` // 0-1
	PriorResolutions            *int     `json:"prior_resolutions,omitempty"`
	ContractCompliance          *float64 `json:"contract_compliance,omitempty"` // 0-1
	PartnershipDepth            *float64 `json:"partnership_depth,omitempty"`   // 0-1

	// Behavioral
	ContactAttempts      *int     `json:"contact_attempts,omitempty"`
	AverageResponseHours *float64 `json:"average_response_hours,omitempty"`
	DisputeCount         *int     `json:"dispute_count,omitempty"`
	EngagementLevel      *float64 `json:"engagement_level,omitempty"` // 0-1

	// External
	IndustryRisk      *float64 `json:"industry_risk,omitempty"`      // 0-1, higher is riskier
	EconomicIndicator *float64 `json:"economic_indicator,omitempty"` // 0-1
	SeasonalFactor    *float64 `json:"seasonal_factor,omitempty"`    // 0-1
}
