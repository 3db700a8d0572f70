package scoring

import (
	"time"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// ExpectedFields is the number of scoring sub-fields across the five factor groups
const ExpectedFields = 22

// Defaults applied when a sub-field is not supplied by the customer snapshot
const (
	defaultTotalPayments        = 1
	defaultPaymentsPerYear      = 4.0
	defaultCreditUtilization    = 0.30
	defaultDebtRatio            = 0.40
	defaultCashFlowStability    = 0.70
	defaultAccountBalance       = 10000.0
	defaultGrowthRate           = 0.0
	defaultAccountAgeMonths     = 12
	defaultResponsiveness       = 0.70
	defaultContractCompliance   = 0.90
	defaultPartnershipDepth     = 0.50
	defaultAverageResponseHours = 24.0
	defaultEngagementLevel      = 0.60
	defaultIndustryRisk         = 0.30
	defaultEconomicIndicator    = 0.60
	defaultSeasonalFactor       = 0.70

	// contactAttemptInterval is the assumed cadence of collection contacts when none are recorded
	contactAttemptInterval = 15
)

// fieldCounter tracks how many sub-fields came from the snapshot
type fieldCounter struct {
	present int
}

func (c *fieldCounter) float(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	c.present++
	return *v
}

func (c *fieldCounter) int(v *int, def int) int {
	if v == nil {
		return def
	}
	c.present++
	return *v
}

// DeriveFactors normalizes a customer/invoice snapshot into scoring factors,
// filling every missing sub-field with its documented default.
func DeriveFactors(customer entity.Customer, invoice entity.Invoice, asOf time.Time) entity.ScoringFactors {
	daysPastDue := invoice.DaysPastDue(asOf)

	profile := customer.Profile
	if profile == nil {
		profile = &entity.CustomerProfile{}
	}

	var c fieldCounter

	// A missing history is treated as one on-time payment so the on-time rate stays defined
	total := c.int(profile.TotalPayments, defaultTotalPayments)
	payment := entity.PaymentHistoryFactors{
		TotalPayments:   total,
		OnTimePayments:  c.int(profile.OnTimePayments, total),
		Defaults:        c.int(profile.Defaults, 0),
		AverageDaysLate: c.float(profile.AverageDaysLate, float64(daysPastDue)),
		PaymentsPerYear: c.float(profile.PaymentsPerYear, defaultPaymentsPerYear),
	}

	cashFlow := profile.CashFlowStability
	if cashFlow == nil && customer.HealthScore != nil {
		derived := *customer.HealthScore / 100
		cashFlow = &derived
	}
	financial := entity.FinancialHealthFactors{
		CreditUtilization: c.float(profile.CreditUtilization, defaultCreditUtilization),
		DebtRatio:         c.float(profile.DebtRatio, defaultDebtRatio),
		CashFlowStability: c.float(cashFlow, defaultCashFlowStability),
		AccountBalance:    c.float(profile.AccountBalance, defaultAccountBalance),
		GrowthRate:        c.float(profile.GrowthRate, defaultGrowthRate),
	}

	relationship := entity.RelationshipFactors{
		AccountAgeMonths:            c.int(customer.AccountAgeMonths, defaultAccountAgeMonths),
		CommunicationResponsiveness: c.float(profile.CommunicationResponsiveness, defaultResponsiveness),
		PriorResolutions:            c.int(profile.PriorResolutions, 0),
		ContractCompliance:          c.float(profile.ContractCompliance, defaultContractCompliance),
		PartnershipDepth:            c.float(profile.PartnershipDepth, defaultPartnershipDepth),
	}

	behavioral := entity.BehavioralFactors{
		ContactAttempts:      c.int(profile.ContactAttempts, daysPastDue/contactAttemptInterval),
		AverageResponseHours: c.float(profile.AverageResponseHours, defaultAverageResponseHours),
		DisputeCount:         c.int(profile.DisputeCount, 0),
		EngagementLevel:      c.float(profile.EngagementLevel, defaultEngagementLevel),
	}

	external := entity.ExternalFactors{
		IndustryRisk:      c.float(profile.IndustryRisk, defaultIndustryRisk),
		EconomicIndicator: c.float(profile.EconomicIndicator, defaultEconomicIndicator),
		SeasonalFactor:    c.float(profile.SeasonalFactor, defaultSeasonalFactor),
	}

	return entity.ScoringFactors{
		PaymentHistory:  payment,
		FinancialHealth: financial,
		Relationship:    relationship,
		Behavioral:      behavioral,
		External:        external,
		PresentFields:   c.present,
		ExpectedFields:  ExpectedFields,
	}
}
