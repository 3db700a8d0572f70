package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/recommendation"
	"github.com/garyjia/ai-collections/internal/routing"
	"github.com/garyjia/ai-collections/internal/scoring"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig                `mapstructure:"server"`
	Database  DatabaseConfig              `mapstructure:"database"`
	Logger    LoggerConfig                `mapstructure:"logger"`
	OpenAI    OpenAIConfig                `mapstructure:"openai"`
	Scoring   ScoringConfig               `mapstructure:"scoring"`
	Routing   RoutingConfig               `mapstructure:"routing"`
	Impact    recommendation.ImpactConfig `mapstructure:"impact"`
	Activity  ActivityConfig              `mapstructure:"activity"`
	Execution ExecutionConfig             `mapstructure:"execution"`
	SES       SESConfig                   `mapstructure:"ses"`
	Redis     RedisConfig                 `mapstructure:"redis"`
	CRM       CRMConfig                   `mapstructure:"crm"`
	Lark      LarkConfig                  `mapstructure:"lark"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// OpenAIConfig holds OpenAI API configuration. Per-tier models live under routing.tiers.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ScoringConfig holds the relationship scoring calibration
type ScoringConfig struct {
	Weights        scoring.Weights       `mapstructure:"weights"`
	RiskThresholds entity.RiskThresholds `mapstructure:"risk_thresholds"`
}

// RoutingConfig holds tier gates and the per-tier model table
type RoutingConfig struct {
	Thresholds  routing.Thresholds `mapstructure:"thresholds"`
	Tiers       routing.Tiers      `mapstructure:"tiers"`
	PromptsPath string             `mapstructure:"prompts_path"`
}

// ActivityConfig holds CRM/ERP activity logging configuration
type ActivityConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExecutionConfig holds deferred execution worker configuration
type ExecutionConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// SESConfig holds AWS SES email configuration
type SESConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Region           string `mapstructure:"region"`
	Sender           string `mapstructure:"sender"`
	ConfigurationSet string `mapstructure:"configuration_set"`
}

// RedisConfig holds the per-invoice lock store. An empty address selects the in-process locker.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// CRMConfig holds the CRM activity logging configuration
type CRMConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LarkConfig holds the Lark chat activity feed configuration
type LarkConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/collections.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	// OpenAI defaults
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("openai.max_tokens", 1200)

	// Scoring defaults
	weights := scoring.DefaultWeights()
	v.SetDefault("scoring.weights.payment_history", weights.PaymentHistory)
	v.SetDefault("scoring.weights.financial_health", weights.FinancialHealth)
	v.SetDefault("scoring.weights.relationship", weights.Relationship)
	v.SetDefault("scoring.weights.behavioral", weights.Behavioral)
	v.SetDefault("scoring.weights.external", weights.External)
	risk := entity.DefaultRiskThresholds()
	v.SetDefault("scoring.risk_thresholds.low", risk.Low)
	v.SetDefault("scoring.risk_thresholds.medium", risk.Medium)

	// Routing defaults
	th := routing.DefaultThresholds()
	v.SetDefault("routing.thresholds.sensitive_account_value", th.SensitiveAccountValue)
	v.SetDefault("routing.thresholds.sensitive_days_past_due", th.SensitiveDaysPastDue)
	v.SetDefault("routing.thresholds.sensitive_relationship_score", th.SensitiveRelationshipScore)
	v.SetDefault("routing.thresholds.strategic_account_value", th.StrategicAccountValue)
	v.SetDefault("routing.thresholds.strategic_invoice_amount", th.StrategicInvoiceAmount)
	v.SetDefault("routing.thresholds.strategic_relationship_score", th.StrategicRelationshipScore)
	v.SetDefault("routing.thresholds.strategic_confidence", th.StrategicConfidence)
	tiers := routing.DefaultTiers()
	for name, p := range map[string]routing.TierProfile{
		"routine":   tiers.Routine,
		"strategic": tiers.Strategic,
		"sensitive": tiers.Sensitive,
	} {
		v.SetDefault("routing.tiers."+name+".model", p.Model)
		v.SetDefault("routing.tiers."+name+".cost", p.Cost)
		v.SetDefault("routing.tiers."+name+".review_minutes", p.ReviewMinutes)
		v.SetDefault("routing.tiers."+name+".timeout", p.Timeout)
	}

	// Business impact defaults
	impact := recommendation.DefaultImpactConfig()
	v.SetDefault("impact.churn_multipliers.high", impact.ChurnMultipliers.High)
	v.SetDefault("impact.churn_multipliers.medium", impact.ChurnMultipliers.Medium)
	v.SetDefault("impact.churn_multipliers.low", impact.ChurnMultipliers.Low)
	v.SetDefault("impact.base_churn.high", impact.BaseChurn.High)
	v.SetDefault("impact.base_churn.medium", impact.BaseChurn.Medium)
	v.SetDefault("impact.base_churn.low", impact.BaseChurn.Low)
	v.SetDefault("impact.max_churn", impact.MaxChurn)
	v.SetDefault("impact.max_time_multiplier", impact.MaxTimeMultiplier)
	v.SetDefault("impact.time_horizon_days", impact.TimeHorizonDays)
	v.SetDefault("impact.relationship_risk.low", impact.RelationshipRisk.Low)
	v.SetDefault("impact.relationship_risk.medium", impact.RelationshipRisk.Medium)
	v.SetDefault("impact.escalation_account_value", impact.EscalationAccountValue)

	// Activity and execution defaults
	v.SetDefault("activity.timeout", 5*time.Second)
	v.SetDefault("execution.poll_interval", time.Minute)
	v.SetDefault("execution.batch_size", 20)

	// Integration defaults
	v.SetDefault("ses.region", "us-east-1")
	v.SetDefault("redis.lock_ttl", 2*time.Minute)
	v.SetDefault("crm.base_url", "https://www.zohoapis.com/crm/v2")
	v.SetDefault("crm.timeout", 10*time.Second)
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("lark.app_id", "LARK_APP_ID")
	v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	v.BindEnv("lark.chat_id", "LARK_CHAT_ID")
	v.BindEnv("crm.access_token", "CRM_ACCESS_TOKEN")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("ses.sender", "SES_SENDER")
	v.BindEnv("ses.region", "AWS_REGION")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}

	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("scoring.weights: %w", err)
	}
	if err := c.Scoring.RiskThresholds.Validate(); err != nil {
		return fmt.Errorf("scoring.risk_thresholds: %w", err)
	}
	if err := c.Impact.RelationshipRisk.Validate(); err != nil {
		return fmt.Errorf("impact.relationship_risk: %w", err)
	}
	if err := c.Routing.Thresholds.Validate(); err != nil {
		return fmt.Errorf("routing.thresholds: %w", err)
	}
	if err := c.Routing.Tiers.Validate(); err != nil {
		return fmt.Errorf("routing.tiers: %w", err)
	}

	if c.Activity.Timeout <= 0 {
		return fmt.Errorf("activity.timeout must be positive")
	}
	if c.Execution.BatchSize <= 0 {
		return fmt.Errorf("execution.batch_size must be positive")
	}

	if c.SES.Enabled && c.SES.Sender == "" {
		return fmt.Errorf("ses.sender is required when ses is enabled")
	}
	if c.CRM.Enabled && c.CRM.AccessToken == "" {
		return fmt.Errorf("crm.access_token is required when crm is enabled")
	}
	if c.Lark.Enabled {
		if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_id and lark.app_secret are required when lark is enabled")
		}
		if c.Lark.ChatID == "" {
			return fmt.Errorf("lark.chat_id is required when lark is enabled")
		}
	}

	return nil
}
