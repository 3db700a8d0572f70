package routing

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// SystemPrompt is sent as the system message with every drafting request
const SystemPrompt = "You are an accounts-receivable collections specialist. You recommend how to collect an overdue invoice while protecting the customer relationship. Always respond with a single valid JSON object."

const defaultContextTemplate = `CUSTOMER
- Name: {{.CustomerName}}
- Industry: {{.Industry}}
- Annual account value: {{.AccountValue}}
- Relationship score: {{.RelationshipScore}}/100 (risk: {{.RiskLevel}}, confidence: {{.Confidence}}%)

INVOICE
- Number: {{.InvoiceNumber}}
- Amount: {{.Amount}} {{.Currency}}
- Issued: {{.IssueDate}}
- Due: {{.DueDate}} ({{.DaysPastDue}} days past due)

PAYMENT TERMS
- {{.PaymentTerms}}
`

const responseInstructions = `
Respond with JSON using exactly these fields:
{"recommendedAction": string, "confidence": number 0-100, "tone": "gentle"|"standard"|"firm"|"urgent",
 "timing": "immediate"|"tomorrow"|"next-week"|"escalate", "draftEmail": {"subject": string, "body": string},
 "reasoning": string, "alternatives": [{"approach": string, "confidence": number 0-100, "description": string, "timeline": string}]}`

const defaultRoutineTemplate = `{{template "context" .}}
TASK
This is a routine reminder for a healthy account. Draft a short, friendly payment reminder.
Prefer a gentle or standard tone and do not threaten consequences.
` + responseInstructions

const defaultStrategicTemplate = `{{template "context" .}}
TASK
This account needs a considered approach. Weigh the relationship value against the amount outstanding,
recommend a tone and timing, draft the email, and offer at least two alternative approaches
(for example a payment plan or a call from the account manager).
` + responseInstructions

const defaultSensitiveTemplate = `{{template "context" .}}
TASK
This is a sensitive collection that an executive will review. The account is high value, severely
overdue, or the relationship is fragile. Explain the relationship and revenue trade-offs explicitly,
recommend whether to escalate, draft a carefully worded email, and list alternatives with timelines.
` + responseInstructions

// PromptConfig is the YAML-overridable prompt text
type PromptConfig struct {
	Context   string `yaml:"context"`
	Routine   string `yaml:"routine"`
	Strategic string `yaml:"strategic"`
	Sensitive string `yaml:"sensitive"`
}

// DefaultPromptConfig returns the built-in prompt text
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		Context:   defaultContextTemplate,
		Routine:   defaultRoutineTemplate,
		Strategic: defaultStrategicTemplate,
		Sensitive: defaultSensitiveTemplate,
	}
}

// LoadPromptConfig reads prompt overrides from a YAML file. Sections left empty keep the defaults.
func LoadPromptConfig(path string) (PromptConfig, error) {
	cfg := DefaultPromptConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var overrides PromptConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}

	if overrides.Context != "" {
		cfg.Context = overrides.Context
	}
	if overrides.Routine != "" {
		cfg.Routine = overrides.Routine
	}
	if overrides.Strategic != "" {
		cfg.Strategic = overrides.Strategic
	}
	if overrides.Sensitive != "" {
		cfg.Sensitive = overrides.Sensitive
	}
	return cfg, nil
}

// PromptBuilder renders one of three prompt bodies on top of a shared context block
type PromptBuilder struct {
	templates map[entity.PromptTemplate]*template.Template
}

// NewPromptBuilder parses the prompt templates once
func NewPromptBuilder(cfg PromptConfig) (*PromptBuilder, error) {
	bodies := map[entity.PromptTemplate]string{
		entity.PromptRoutine:   cfg.Routine,
		entity.PromptStrategic: cfg.Strategic,
		entity.PromptSensitive: cfg.Sensitive,
	}

	b := &PromptBuilder{templates: make(map[entity.PromptTemplate]*template.Template, len(bodies))}
	for name, body := range bodies {
		tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		if _, err := tmpl.New("context").Parse(cfg.Context); err != nil {
			return nil, fmt.Errorf("failed to parse context template: %w", err)
		}
		b.templates[name] = tmpl
	}
	return b, nil
}

var defaultBuilder = mustDefaultBuilder()

func mustDefaultBuilder() *PromptBuilder {
	b, err := NewPromptBuilder(DefaultPromptConfig())
	if err != nil {
		panic(err)
	}
	return b
}

// BuildPrompt renders a prompt with the built-in templates
func BuildPrompt(name entity.PromptTemplate, rc entity.RoutingContext) (string, error) {
	return defaultBuilder.Build(name, rc)
}

// Build renders the named prompt for a routing context
func (b *PromptBuilder) Build(name entity.PromptTemplate, rc entity.RoutingContext) (string, error) {
	tmpl, ok := b.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newPromptData(rc)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// promptData is the flat view the templates render; every field is always set
type promptData struct {
	CustomerName      string
	Industry          string
	AccountValue      string
	RelationshipScore int
	RiskLevel         string
	Confidence        int
	InvoiceNumber     string
	Amount            string
	Currency          string
	IssueDate         string
	DueDate           string
	DaysPastDue       int
	PaymentTerms      string
}

func newPromptData(rc entity.RoutingContext) promptData {
	customer := rc.Customer()
	invoice := rc.Invoice()

	return promptData{
		CustomerName:      orDefault(customer.Name, "Unknown customer"),
		Industry:          orDefault(customer.Industry, "not specified"),
		AccountValue:      money(customer.AccountValue),
		RelationshipScore: rc.RelationshipScore(),
		RiskLevel:         rc.RiskLevel().String(),
		Confidence:        rc.Confidence(),
		InvoiceNumber:     orDefault(invoice.Number, invoice.ID),
		Amount:            money(invoice.Amount),
		Currency:          orDefault(invoice.Currency, "USD"),
		IssueDate:         formatDate(invoice.IssueDate.Format("2006-01-02"), invoice.IssueDate.IsZero()),
		DueDate:           invoice.DueDate.Format("2006-01-02"),
		DaysPastDue:       rc.DaysPastDue(),
		PaymentTerms:      orDefault(invoice.PaymentTerms, "Standard terms"),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatDate(formatted string, zero bool) string {
	if zero {
		return "unknown"
	}
	return formatted
}
