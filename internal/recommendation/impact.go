package recommendation

import (
	"math"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// RiskFactors holds one value per risk level
type RiskFactors struct {
	High   float64 `mapstructure:"high"`
	Medium float64 `mapstructure:"medium"`
	Low    float64 `mapstructure:"low"`
}

func (f RiskFactors) For(level entity.RiskLevel) float64 {
	switch level {
	case entity.RiskHigh:
		return f.High
	case entity.RiskMedium:
		return f.Medium
	default:
		return f.Low
	}
}

// ImpactConfig holds the business-impact and escalation constants
type ImpactConfig struct {
	ChurnMultipliers  RiskFactors `mapstructure:"churn_multipliers"`
	BaseChurn         RiskFactors `mapstructure:"base_churn"`
	MaxChurn          float64     `mapstructure:"max_churn"`
	MaxTimeMultiplier float64     `mapstructure:"max_time_multiplier"`
	TimeHorizonDays   float64     `mapstructure:"time_horizon_days"`

	// RelationshipRisk grades relationship fragility. It is deliberately separate from
	// the collectability thresholds used by scoring.
	RelationshipRisk entity.RiskThresholds `mapstructure:"relationship_risk"`

	EscalationAccountValue float64 `mapstructure:"escalation_account_value"`
}

// DefaultImpactConfig returns the standard impact constants
func DefaultImpactConfig() ImpactConfig {
	return ImpactConfig{
		ChurnMultipliers:       RiskFactors{High: 0.8, Medium: 0.3, Low: 0.1},
		BaseChurn:              RiskFactors{High: 0.35, Medium: 0.15, Low: 0.05},
		MaxChurn:               0.85,
		MaxTimeMultiplier:      2.0,
		TimeHorizonDays:        180,
		RelationshipRisk:       entity.RiskThresholds{Low: 70, Medium: 50},
		EscalationAccountValue: 50000,
	}
}

// ComputeImpact estimates revenue at risk, relationship fragility and churn probability
func ComputeImpact(rc entity.RoutingContext, cfg ImpactConfig) entity.BusinessImpact {
	risk := rc.RiskLevel()

	timeMultiplier := 1.0
	if cfg.TimeHorizonDays > 0 {
		timeMultiplier = math.Min(cfg.MaxTimeMultiplier, 1+float64(rc.DaysPastDue())/cfg.TimeHorizonDays)
	}

	return entity.BusinessImpact{
		RevenueAtRisk:    rc.InvoiceAmount() + rc.AccountValue()*cfg.ChurnMultipliers.For(risk),
		RelationshipRisk: cfg.RelationshipRisk.Classify(rc.RelationshipScore()),
		ChurnProbability: math.Min(cfg.MaxChurn, cfg.BaseChurn.For(risk)*timeMultiplier),
	}
}
