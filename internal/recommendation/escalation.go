package recommendation

import (
	"fmt"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// Response windows tighten as tier severity rises
var baseEscalationTriggers = map[entity.ModelTier][]string{
	entity.TierRoutine: {
		"No customer response within 7 days",
		"Customer disputes the invoice",
		"Promised payment date is missed",
	},
	entity.TierStrategic: {
		"No customer response within 5 days",
		"Customer disputes the invoice or requests a payment plan",
		"Promised payment date is missed",
		"Account manager flags a relationship concern",
	},
	entity.TierSensitive: {
		"No customer response within 48 hours",
		"Any dispute, complaint or mention of legal action",
		"Customer signals intent to cancel or reduce the contract",
		"Executive sponsor must approve every follow-up",
	},
}

// BaseEscalationTriggers returns the fixed trigger list of a tier
func BaseEscalationTriggers(tier entity.ModelTier) []string {
	return append([]string(nil), baseEscalationTriggers[tier]...)
}

// EscalationTriggers returns the tier's base list plus conditional triggers for
// high-risk and high-value accounts
func EscalationTriggers(tier entity.ModelTier, rc entity.RoutingContext, cfg ImpactConfig) []string {
	triggers := BaseEscalationTriggers(tier)

	if rc.RiskLevel() == entity.RiskHigh {
		triggers = append(triggers, "High collection risk: review credit hold before the next contact")
	}
	if rc.AccountValue() > cfg.EscalationAccountValue {
		triggers = append(triggers, fmt.Sprintf("High-value account (over $%.0f): notify the account executive before escalating",
			cfg.EscalationAccountValue))
	}
	return triggers
}
