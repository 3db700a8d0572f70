package port

import (
	"context"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// DraftRequest is one call to a drafting capability
type DraftRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
}

// DraftResponse is the raw capability output; Content is expected to hold a JSON object
type DraftResponse struct {
	// Model is the provider-reported model version, which may be more specific than the requested model
	Model   string
	Content string
}

// DraftingCapability drafts a collection recommendation from an assembled prompt
type DraftingCapability interface {
	Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error)
}

// CapabilitySet binds one drafting capability to each model tier
type CapabilitySet map[entity.ModelTier]DraftingCapability

// Activity is a best-effort note written to an external CRM/ERP after execution
type Activity struct {
	CustomerExternalID string
	InvoiceNumber      string
	Strategy           string
	Description        string
}

// ActivityLogger records collection activity in an external system
type ActivityLogger interface {
	Name() string
	LogActivity(ctx context.Context, activity Activity) error
}

// ExecutionRequest carries the approved content to the collection channel
type ExecutionRequest struct {
	RecommendationID string
	ApprovalID       string
	CustomerEmail    string
	InvoiceNumber    string
	Email            entity.DraftEmail
}

// ExecutionResult identifies what the channel sent
type ExecutionResult struct {
	MessageID string
}

// CollectionExecutor performs the approved collection action, e.g. sending the email
type CollectionExecutor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

// InvoiceLocker serializes recommendation generation per invoice
type InvoiceLocker interface {
	// Acquire returns ErrLockHeld when another generation holds the invoice
	Acquire(ctx context.Context, invoiceID string) (release func(), err error)
}

// RecommendationMetrics observes pipeline outcomes
type RecommendationMetrics interface {
	ObserveRecommendation(tier entity.ModelTier, fallback bool, seconds float64)
	ObserveGenerationFailure(tier entity.ModelTier)
	ObserveDecision(action entity.ApprovalAction)
	ObserveExecution(outcome entity.Outcome)
	ObserveActivityLog(system string, ok bool)
}
