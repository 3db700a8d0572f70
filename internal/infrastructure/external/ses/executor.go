package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/garyjia/ai-collections/internal/application/port"
	"go.uber.org/zap"
)

// ErrMissingRecipient is returned when the customer has no email address
var ErrMissingRecipient = errors.New("customer email is required")

// Config holds SES settings
type Config struct {
	Region           string
	Sender           string
	ConfigurationSet string
}

// SESAPI is the subset of the SES client the executor uses
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailExecutor sends approved collection emails through SES. It implements port.CollectionExecutor.
type EmailExecutor struct {
	client SESAPI
	cfg    Config
	logger *zap.Logger
}

// NewEmailExecutor loads the default AWS credential chain for the configured region
func NewEmailExecutor(ctx context.Context, cfg Config, logger *zap.Logger) (*EmailExecutor, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewEmailExecutorWithClient(ses.NewFromConfig(awsCfg), cfg, logger), nil
}

// NewEmailExecutorWithClient creates an executor around an existing SES client
func NewEmailExecutorWithClient(client SESAPI, cfg Config, logger *zap.Logger) *EmailExecutor {
	return &EmailExecutor{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Execute sends the approved email to the customer
func (e *EmailExecutor) Execute(ctx context.Context, req port.ExecutionRequest) (*port.ExecutionResult, error) {
	if req.CustomerEmail == "" {
		return nil, ErrMissingRecipient
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{req.CustomerEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(req.Email.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(req.Email.Body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(e.cfg.Sender),
		Tags: []types.MessageTag{
			{Name: aws.String("recommendation_id"), Value: aws.String(req.RecommendationID)},
		},
	}
	if e.cfg.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(e.cfg.ConfigurationSet)
	}

	out, err := e.client.SendEmail(ctx, input)
	if err != nil {
		e.logger.Error("SES send failed",
			zap.String("approval_id", req.ApprovalID),
			zap.String("invoice_number", req.InvoiceNumber),
			zap.Error(err))
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	e.logger.Info("Collection email sent",
		zap.String("approval_id", req.ApprovalID),
		zap.String("message_id", messageID))

	return &port.ExecutionResult{MessageID: messageID}, nil
}

var _ port.CollectionExecutor = (*EmailExecutor)(nil)
