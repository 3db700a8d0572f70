package routing

import (
	"fmt"
	"time"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// Thresholds are the gate boundaries for tier selection
type Thresholds struct {
	SensitiveAccountValue      float64 `mapstructure:"sensitive_account_value"`
	SensitiveDaysPastDue       int     `mapstructure:"sensitive_days_past_due"`
	SensitiveRelationshipScore int     `mapstructure:"sensitive_relationship_score"`
	StrategicAccountValue      float64 `mapstructure:"strategic_account_value"`
	StrategicInvoiceAmount     float64 `mapstructure:"strategic_invoice_amount"`
	StrategicRelationshipScore int     `mapstructure:"strategic_relationship_score"`
	StrategicConfidence        int     `mapstructure:"strategic_confidence"`
}

// DefaultThresholds returns the standard gate boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{
		SensitiveAccountValue:      100000,
		SensitiveDaysPastDue:       90,
		SensitiveRelationshipScore: 40,
		StrategicAccountValue:      25000,
		StrategicInvoiceAmount:     10000,
		StrategicRelationshipScore: 65,
		StrategicConfidence:        70,
	}
}

// Validate ensures the sensitive gate is at least as strict as the strategic gate
func (t Thresholds) Validate() error {
	if t.SensitiveAccountValue < t.StrategicAccountValue {
		return fmt.Errorf("sensitive account value (%.0f) must not be below strategic account value (%.0f)",
			t.SensitiveAccountValue, t.StrategicAccountValue)
	}
	if t.SensitiveRelationshipScore > t.StrategicRelationshipScore {
		return fmt.Errorf("sensitive relationship score (%d) must not exceed strategic relationship score (%d)",
			t.SensitiveRelationshipScore, t.StrategicRelationshipScore)
	}
	if t.SensitiveDaysPastDue < 0 {
		return fmt.Errorf("sensitive days past due must not be negative, got %d", t.SensitiveDaysPastDue)
	}
	return nil
}

// TierProfile is the configurable part of a tier: which model drafts, and what it costs
type TierProfile struct {
	Model         string        `mapstructure:"model"`
	Cost          float64       `mapstructure:"cost"`
	ReviewMinutes float64       `mapstructure:"review_minutes"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Tiers holds one profile per model tier
type Tiers struct {
	Routine   TierProfile `mapstructure:"routine"`
	Strategic TierProfile `mapstructure:"strategic"`
	Sensitive TierProfile `mapstructure:"sensitive"`
}

// DefaultTiers returns the default model/cost/review-time table
func DefaultTiers() Tiers {
	return Tiers{
		Routine:   TierProfile{Model: "gpt-4o-mini", Cost: 0.001, ReviewMinutes: 0.5, Timeout: 15 * time.Second},
		Strategic: TierProfile{Model: "gpt-4o", Cost: 0.05, ReviewMinutes: 3, Timeout: 30 * time.Second},
		Sensitive: TierProfile{Model: "gpt-4.1", Cost: 0.20, ReviewMinutes: 20, Timeout: 45 * time.Second},
	}
}

// Profile returns the profile for a tier
func (t Tiers) Profile(tier entity.ModelTier) TierProfile {
	switch tier {
	case entity.TierSensitive:
		return t.Sensitive
	case entity.TierStrategic:
		return t.Strategic
	default:
		return t.Routine
	}
}

// Timeouts returns the per-tier drafting timeouts
func (t Tiers) Timeouts() map[entity.ModelTier]time.Duration {
	return map[entity.ModelTier]time.Duration{
		entity.TierRoutine:   t.Routine.Timeout,
		entity.TierStrategic: t.Strategic.Timeout,
		entity.TierSensitive: t.Sensitive.Timeout,
	}
}

// Validate ensures every tier names a model and has a positive timeout
func (t Tiers) Validate() error {
	for _, tier := range []entity.ModelTier{entity.TierRoutine, entity.TierStrategic, entity.TierSensitive} {
		p := t.Profile(tier)
		if p.Model == "" {
			return fmt.Errorf("tier %s has no model configured", tier)
		}
		if p.Timeout <= 0 {
			return fmt.Errorf("tier %s timeout must be positive", tier)
		}
		if p.Cost < 0 || p.ReviewMinutes < 0 {
			return fmt.Errorf("tier %s cost and review minutes must not be negative", tier)
		}
	}
	return nil
}

// fixedProfile is the part of a tier that is not configurable
type fixedProfile struct {
	capability string
	review     entity.ReviewLevel
	template   entity.PromptTemplate
}

var fixedProfiles = map[entity.ModelTier]fixedProfile{
	entity.TierRoutine:   {entity.CapabilityLightweightFast, entity.ReviewQuickApprove, entity.PromptRoutine},
	entity.TierStrategic: {entity.CapabilityMid, entity.ReviewStrategic, entity.PromptStrategic},
	entity.TierSensitive: {entity.CapabilityFrontier, entity.ReviewExecutive, entity.PromptSensitive},
}

// ReviewLevelFor returns the fixed review level bound to a tier
func ReviewLevelFor(tier entity.ModelTier) entity.ReviewLevel {
	return fixedProfiles[tier].review
}
