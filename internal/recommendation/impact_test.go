package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

func TestComputeImpact(t *testing.T) {
	cfg := DefaultImpactConfig()

	tests := []struct {
		name             string
		rc               entity.RoutingContext
		revenueAtRisk    float64
		relationshipRisk entity.RiskLevel
		churn            float64
	}{
		{
			name:             "healthy account",
			rc:               routingContext(45000, 15750, 85, 80, 12),
			revenueAtRisk:    15750 + 45000*0.1,
			relationshipRisk: entity.RiskLow,
			churn:            0.05 * (1 + 12.0/180),
		},
		{
			name:             "distressed account",
			rc:               routingContext(95000, 95000, 18, 55, 92),
			revenueAtRisk:    95000 + 95000*0.8,
			relationshipRisk: entity.RiskHigh,
			churn:            0.35 * (1 + 92.0/180),
		},
		{
			name:             "time multiplier capped",
			rc:               routingContext(10000, 2000, 30, 55, 400),
			revenueAtRisk:    2000 + 10000*0.8,
			relationshipRisk: entity.RiskHigh,
			churn:            0.70,
		},
		{
			name:             "not yet due",
			rc:               routingContext(10000, 2000, 70, 80, 0),
			revenueAtRisk:    2000 + 10000*0.3,
			relationshipRisk: entity.RiskLow,
			churn:            0.15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := ComputeImpact(tt.rc, cfg)
			assert.InDelta(t, tt.revenueAtRisk, impact.RevenueAtRisk, 1e-6)
			assert.Equal(t, tt.relationshipRisk, impact.RelationshipRisk)
			assert.InDelta(t, tt.churn, impact.ChurnProbability, 1e-9)
		})
	}
}

// Scores between the two threshold sets grade differently on purpose
func TestComputeImpact_RelationshipRiskDivergesFromScoringRisk(t *testing.T) {
	cfg := DefaultImpactConfig()

	rc := routingContext(10000, 1000, 75, 80, 5)
	assert.Equal(t, entity.RiskMedium, rc.RiskLevel())
	assert.Equal(t, entity.RiskLow, ComputeImpact(rc, cfg).RelationshipRisk)

	rc = routingContext(10000, 1000, 55, 80, 5)
	assert.Equal(t, entity.RiskHigh, rc.RiskLevel())
	assert.Equal(t, entity.RiskMedium, ComputeImpact(rc, cfg).RelationshipRisk)
}

func TestComputeImpact_ChurnNeverExceedsCap(t *testing.T) {
	cfg := DefaultImpactConfig()
	cfg.BaseChurn.High = 0.6

	impact := ComputeImpact(routingContext(10000, 1000, 10, 40, 365), cfg)
	assert.InDelta(t, 0.85, impact.ChurnProbability, 1e-9)
}

func TestEscalationTriggers_ContainsBaseList(t *testing.T) {
	cfg := DefaultImpactConfig()
	contexts := []entity.RoutingContext{
		routingContext(1000, 100, 95, 90, 0),
		routingContext(60000, 100, 95, 90, 0),
		routingContext(1000, 100, 20, 40, 100),
		routingContext(500000, 90000, 10, 20, 200),
	}

	for _, tier := range []entity.ModelTier{entity.TierRoutine, entity.TierStrategic, entity.TierSensitive} {
		base := BaseEscalationTriggers(tier)
		assert.NotEmpty(t, base)
		for _, rc := range contexts {
			assert.Subset(t, EscalationTriggers(tier, rc, cfg), base, "tier %s", tier)
		}
	}
}

func TestEscalationTriggers_ResponseWindowsTighten(t *testing.T) {
	assert.Contains(t, BaseEscalationTriggers(entity.TierRoutine)[0], "7 days")
	assert.Contains(t, BaseEscalationTriggers(entity.TierStrategic)[0], "5 days")
	assert.Contains(t, BaseEscalationTriggers(entity.TierSensitive)[0], "48 hours")
}

func TestEscalationTriggers_Conditional(t *testing.T) {
	cfg := DefaultImpactConfig()

	plain := EscalationTriggers(entity.TierStrategic, routingContext(30000, 100, 90, 90, 5), cfg)
	assert.Len(t, plain, len(BaseEscalationTriggers(entity.TierStrategic)))

	highRisk := EscalationTriggers(entity.TierSensitive, routingContext(30000, 100, 30, 90, 5), cfg)
	assert.Len(t, highRisk, len(BaseEscalationTriggers(entity.TierSensitive))+1)
	assert.Contains(t, highRisk[len(highRisk)-1], "credit hold")

	both := EscalationTriggers(entity.TierSensitive, routingContext(80000, 100, 30, 90, 5), cfg)
	assert.Len(t, both, len(BaseEscalationTriggers(entity.TierSensitive))+2)
	assert.Contains(t, both[len(both)-1], "over $50000")
}

func TestBaseEscalationTriggers_ReturnsCopy(t *testing.T) {
	list := BaseEscalationTriggers(entity.TierRoutine)
	list[0] = "mutated"

	assert.NotEqual(t, "mutated", BaseEscalationTriggers(entity.TierRoutine)[0])
}
