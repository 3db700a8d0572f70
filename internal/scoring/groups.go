package scoring

import (
	"math"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

func paymentHistoryScore(p entity.PaymentHistoryFactors) float64 {
	defaultPenalty := 50 * float64(p.Defaults)
	latePenalty := math.Min(30, 0.5*math.Max(0, p.AverageDaysLate))
	frequencyBonus := math.Min(20, 2*math.Max(0, p.PaymentsPerYear))

	return clamp(p.OnTimeRate()*100-defaultPenalty-latePenalty+frequencyBonus, 0, 100)
}

func financialHealthScore(f entity.FinancialHealthFactors) float64 {
	return mean(
		unitScore(1-f.CreditUtilization),
		unitScore(1-f.DebtRatio),
		unitScore(f.CashFlowStability),
		math.Min(100, 20*math.Log10(math.Max(0, f.AccountBalance)+1)),
		clamp((f.GrowthRate+0.5)*100, 0, 100),
	)
}

func relationshipScore(r entity.RelationshipFactors) float64 {
	return mean(
		clamp(float64(r.AccountAgeMonths)*100/36, 0, 100),
		unitScore(r.CommunicationResponsiveness),
		clamp(20*float64(r.PriorResolutions), 0, 100),
		unitScore(r.ContractCompliance),
		unitScore(r.PartnershipDepth),
	)
}

func behavioralScore(b entity.BehavioralFactors) float64 {
	return mean(
		clamp(100-10*float64(b.ContactAttempts), 0, 100),
		clamp(100-2*b.AverageResponseHours, 0, 100),
		clamp(100-25*float64(b.DisputeCount), 0, 100),
		unitScore(b.EngagementLevel),
	)
}

func externalScore(e entity.ExternalFactors) float64 {
	return mean(
		unitScore(1-e.IndustryRisk),
		unitScore(e.EconomicIndicator),
		unitScore(e.SeasonalFactor),
	)
}

// computeFactorScores scores each of the five groups independently
func computeFactorScores(f entity.ScoringFactors) entity.FactorScores {
	return entity.FactorScores{
		PaymentHistory:  paymentHistoryScore(f.PaymentHistory),
		FinancialHealth: financialHealthScore(f.FinancialHealth),
		Relationship:    relationshipScore(f.Relationship),
		Behavioral:      behavioralScore(f.Behavioral),
		External:        externalScore(f.External),
	}
}

// unitScore maps a [0,1] ratio onto [0,100]
func unitScore(v float64) float64 {
	return clamp(v*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
