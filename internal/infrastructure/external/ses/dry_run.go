package ses

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/ai-collections/internal/application/port"
)

// DryRunExecutor logs approved emails instead of sending them. It is used when SES is disabled.
type DryRunExecutor struct {
	logger *zap.Logger
}

// NewDryRunExecutor creates a new DryRunExecutor
func NewDryRunExecutor(logger *zap.Logger) *DryRunExecutor {
	return &DryRunExecutor{logger: logger}
}

// Execute records the email and returns a synthetic message id
func (e *DryRunExecutor) Execute(ctx context.Context, req port.ExecutionRequest) (*port.ExecutionResult, error) {
	if req.CustomerEmail == "" {
		return nil, ErrMissingRecipient
	}

	messageID := "dry-run-" + uuid.NewString()
	e.logger.Info("Collection email not sent (dry run)",
		zap.String("approval_id", req.ApprovalID),
		zap.String("to", req.CustomerEmail),
		zap.String("subject", req.Email.Subject),
		zap.String("message_id", messageID))

	return &port.ExecutionResult{MessageID: messageID}, nil
}

var _ port.CollectionExecutor = (*DryRunExecutor)(nil)
