// Package routing selects the drafting tier, model and human-review depth for a scored invoice.
package routing

import (
	"fmt"
	"strings"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// Engine routes scored invoices to a model tier. It is a pure function of its
// configuration and input, and safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	tiers      Tiers
}

// NewEngine creates a routing engine
func NewEngine(thresholds Thresholds, tiers Tiers) *Engine {
	return &Engine{thresholds: thresholds, tiers: tiers}
}

// Tiers returns the configured tier table
func (e *Engine) Tiers() Tiers {
	return e.tiers
}

// Route selects a tier by evaluating the SENSITIVE gate, then the STRATEGIC gate.
// The first gate with any matching condition wins, and every matched condition of
// that gate is recorded.
func (e *Engine) Route(rc entity.RoutingContext) entity.RoutingDecision {
	tier := entity.TierRoutine
	conditions := e.sensitiveConditions(rc)
	if len(conditions) > 0 {
		tier = entity.TierSensitive
	} else if conditions = e.strategicConditions(rc); len(conditions) > 0 {
		tier = entity.TierStrategic
	}

	profile := e.tiers.Profile(tier)
	fixed := fixedProfiles[tier]

	return entity.RoutingDecision{
		ModelTier:           tier,
		AIModel:             profile.Model,
		Capability:          fixed.capability,
		EstimatedCost:       profile.Cost,
		ReviewLevel:         fixed.review,
		EstimatedReviewTime: profile.ReviewMinutes,
		Reasoning:           reasoning(tier, conditions),
		PromptTemplate:      fixed.template,
		TriggeredConditions: conditions,
	}
}

func (e *Engine) sensitiveConditions(rc entity.RoutingContext) []string {
	t := e.thresholds
	var conditions []string

	if rc.AccountValue() > t.SensitiveAccountValue {
		conditions = append(conditions, fmt.Sprintf("high-value account (%s)", money(rc.AccountValue())))
	}
	if rc.DaysPastDue() > t.SensitiveDaysPastDue {
		conditions = append(conditions, fmt.Sprintf("severely overdue (%d days)", rc.DaysPastDue()))
	}
	if rc.RelationshipScore() < t.SensitiveRelationshipScore {
		conditions = append(conditions, fmt.Sprintf("fragile relationship (score %d)", rc.RelationshipScore()))
	}
	if rc.RiskLevel() == entity.RiskHigh {
		conditions = append(conditions, "high collection risk")
	}
	return conditions
}

func (e *Engine) strategicConditions(rc entity.RoutingContext) []string {
	t := e.thresholds
	var conditions []string

	if rc.AccountValue() > t.StrategicAccountValue {
		conditions = append(conditions, fmt.Sprintf("significant account value (%s)", money(rc.AccountValue())))
	}
	if rc.InvoiceAmount() > t.StrategicInvoiceAmount {
		conditions = append(conditions, fmt.Sprintf("large invoice (%s)", money(rc.InvoiceAmount())))
	}
	if rc.RelationshipScore() < t.StrategicRelationshipScore {
		conditions = append(conditions, fmt.Sprintf("relationship needs care (score %d)", rc.RelationshipScore()))
	}
	if rc.RiskLevel() == entity.RiskMedium {
		conditions = append(conditions, "medium collection risk")
	}
	if rc.Confidence() < t.StrategicConfidence {
		conditions = append(conditions, fmt.Sprintf("low scoring confidence (%d%%)", rc.Confidence()))
	}
	return conditions
}

func reasoning(tier entity.ModelTier, conditions []string) string {
	if len(conditions) == 0 {
		return fmt.Sprintf("%s: no escalation conditions met", tier)
	}
	return fmt.Sprintf("%s: %s", tier, strings.Join(conditions, ", "))
}

// money formats an amount as $12,345
func money(v float64) string {
	whole := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
