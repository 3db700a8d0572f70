package metrics

import (
	"strconv"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements port.RecommendationMetrics with Prometheus instruments
type Collector struct {
	recommendations    *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	decisions          *prometheus.CounterVec
	executions         *prometheus.CounterVec
	activityLogs       *prometheus.CounterVec
}

// NewCollector registers the pipeline metrics on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collections_recommendations_total",
				Help: "Total number of recommendations generated",
			},
			[]string{"tier", "fallback"},
		),
		generationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collections_generation_failures_total",
				Help: "Total number of generations where primary and fallback both failed",
			},
			[]string{"tier"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collections_generation_duration_seconds",
				Help:    "Duration of recommendation generation in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
			},
			[]string{"tier"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collections_decisions_total",
				Help: "Total number of human decisions by action",
			},
			[]string{"action"},
		),
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collections_executions_total",
				Help: "Total number of execution attempts by outcome",
			},
			[]string{"outcome"},
		),
		activityLogs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collections_activity_logs_total",
				Help: "Total number of activity log writes by system and result",
			},
			[]string{"system", "ok"},
		),
	}
}

func (c *Collector) ObserveRecommendation(tier entity.ModelTier, fallback bool, seconds float64) {
	c.recommendations.WithLabelValues(string(tier), strconv.FormatBool(fallback)).Inc()
	c.generationDuration.WithLabelValues(string(tier)).Observe(seconds)
}

func (c *Collector) ObserveGenerationFailure(tier entity.ModelTier) {
	c.generationFailures.WithLabelValues(string(tier)).Inc()
}

func (c *Collector) ObserveDecision(action entity.ApprovalAction) {
	c.decisions.WithLabelValues(string(action)).Inc()
}

func (c *Collector) ObserveExecution(outcome entity.Outcome) {
	c.executions.WithLabelValues(string(outcome)).Inc()
}

func (c *Collector) ObserveActivityLog(system string, ok bool) {
	c.activityLogs.WithLabelValues(system, strconv.FormatBool(ok)).Inc()
}

var _ port.RecommendationMetrics = (*Collector)(nil)
