package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"go.uber.org/zap"
)

// ErrMissingExternalID is returned when the customer has no CRM identifier
var ErrMissingExternalID = errors.New("customer has no CRM external id")

// Config holds CRM REST client settings
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client writes collection activity as notes on CRM accounts. It implements port.ActivityLogger.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

type note struct {
	Title   string `json:"Note_Title"`
	Content string `json:"Note_Content"`
}

type createNoteResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

// NewClient creates a new CRM client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Name identifies the system in logs and metrics
func (c *Client) Name() string {
	return "crm"
}

// LogActivity attaches a note to the customer's account
func (c *Client) LogActivity(ctx context.Context, activity port.Activity) error {
	if activity.CustomerExternalID == "" {
		return ErrMissingExternalID
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Notes", c.baseURL, url.PathEscape(activity.CustomerExternalID))

	payload := map[string]interface{}{
		"data": []note{{
			Title:   fmt.Sprintf("Collections: %s", activity.InvoiceNumber),
			Content: fmt.Sprintf("%s\n\n%s", activity.Strategy, activity.Description),
		}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to create note (status %d): %s", resp.StatusCode, string(body))
	}

	var createResp createNoteResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(createResp.Data) == 0 {
		return fmt.Errorf("no data in response")
	}

	if createResp.Data[0].Status != "success" {
		return fmt.Errorf("note creation failed: %s", createResp.Data[0].Message)
	}

	c.logger.Debug("CRM note created",
		zap.String("account_id", activity.CustomerExternalID),
		zap.String("note_id", createResp.Data[0].Details.ID))

	return nil
}

var _ port.ActivityLogger = (*Client)(nil)
