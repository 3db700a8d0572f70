package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
openai:
  api_key: sk-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/collections.db", cfg.Database.Path)
	assert.InDelta(t, 0.35, cfg.Scoring.Weights.PaymentHistory, 1e-9)
	assert.Equal(t, entity.RiskThresholds{Low: 85, Medium: 65}, cfg.Scoring.RiskThresholds)
	assert.Equal(t, entity.RiskThresholds{Low: 70, Medium: 50}, cfg.Impact.RelationshipRisk)
	assert.Equal(t, 90, cfg.Routing.Thresholds.SensitiveDaysPastDue)
	assert.Equal(t, "gpt-4o-mini", cfg.Routing.Tiers.Routine.Model)
	assert.Equal(t, "gpt-4.1", cfg.Routing.Tiers.Sensitive.Model)
	assert.Equal(t, 45*time.Second, cfg.Routing.Tiers.Sensitive.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Activity.Timeout)
	assert.Empty(t, cfg.Redis.Address)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
openai:
  api_key: sk-test
scoring:
  weights:
    payment_history: 0.40
    financial_health: 0.20
  risk_thresholds:
    low: 80
    medium: 60
routing:
  tiers:
    strategic:
      model: gpt-4.1-mini
      timeout: 12s
impact:
  escalation_account_value: 75000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.40, cfg.Scoring.Weights.PaymentHistory, 1e-9)
	assert.InDelta(t, 0.20, cfg.Scoring.Weights.FinancialHealth, 1e-9)
	assert.Equal(t, 80, cfg.Scoring.RiskThresholds.Low)
	assert.Equal(t, "gpt-4.1-mini", cfg.Routing.Tiers.Strategic.Model)
	assert.Equal(t, 12*time.Second, cfg.Routing.Tiers.Strategic.Timeout)
	assert.InDelta(t, 0.05, cfg.Routing.Tiers.Strategic.Cost, 1e-9)
	assert.InDelta(t, 75000, cfg.Impact.EscalationAccountValue, 1e-9)
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing api key", "server:\n  port: 8080\n"},
		{"weights do not sum", "openai:\n  api_key: k\nscoring:\n  weights:\n    external: 0.5\n"},
		{"thresholds inverted", "openai:\n  api_key: k\nscoring:\n  risk_thresholds:\n    low: 50\n    medium: 60\n"},
		{"ses without sender", "openai:\n  api_key: k\nses:\n  enabled: true\n"},
		{"lark without chat", "openai:\n  api_key: k\nlark:\n  enabled: true\n  app_id: a\n  app_secret: s\n"},
		{"empty tier model", "openai:\n  api_key: k\nrouting:\n  tiers:\n    routine:\n      model: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
