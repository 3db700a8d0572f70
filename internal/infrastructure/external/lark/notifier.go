package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/ai-collections/internal/application/port"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// ErrEmptyChatID is returned when no chat is configured
var ErrEmptyChatID = errors.New("lark chat_id cannot be empty")

// ActivityNotifier posts executed collection activity to a Lark group chat.
// It implements port.ActivityLogger.
type ActivityNotifier struct {
	messages messageCreator
	chatID   string
	logger   *zap.Logger
}

// NewActivityNotifier creates a notifier backed by the Lark SDK
func NewActivityNotifier(cfg Config, logger *zap.Logger) (*ActivityNotifier, error) {
	if cfg.ChatID == "" {
		return nil, ErrEmptyChatID
	}
	return &ActivityNotifier{
		messages: newMessageCreator(cfg),
		chatID:   cfg.ChatID,
		logger:   logger,
	}, nil
}

// Name identifies the system in logs and metrics
func (n *ActivityNotifier) Name() string {
	return "lark"
}

// LogActivity sends a text message describing the activity
func (n *ActivityNotifier) LogActivity(ctx context.Context, activity port.Activity) error {
	content, err := json.Marshal(map[string]string{"text": formatActivity(activity)})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.messages.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("API returned failure",
			zap.String("chat_id", n.chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	n.logger.Info("Activity posted to Lark",
		zap.String("message_id", messageID),
		zap.String("invoice_number", activity.InvoiceNumber))

	return nil
}

func formatActivity(a port.Activity) string {
	var b strings.Builder
	b.WriteString("Collection activity")
	if a.InvoiceNumber != "" {
		fmt.Fprintf(&b, " for invoice %s", a.InvoiceNumber)
	}
	if a.CustomerExternalID != "" {
		fmt.Fprintf(&b, " (customer %s)", a.CustomerExternalID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Strategy: %s\n", a.Strategy)
	b.WriteString(a.Description)
	return b.String()
}

var _ port.ActivityLogger = (*ActivityNotifier)(nil)
