package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testActivity() port.Activity {
	return port.Activity{
		CustomerExternalID: "4150868000000224001",
		InvoiceNumber:      "INV-1001",
		Strategy:           "Send a firm reminder",
		Description:        "Email sent to ap@acme.test",
	}
}

func TestClient_LogActivity(t *testing.T) {
	var payload struct {
		Data []note `json:"data"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v2/Accounts/4150868000000224001/Notes", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken token-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","details":{"id":"note-9"},"message":"record added","status":"success"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/crm/v2/", AccessToken: "token-1"}, zap.NewNop())

	require.NoError(t, client.LogActivity(context.Background(), testActivity()))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "Collections: INV-1001", payload.Data[0].Title)
	assert.Contains(t, payload.Data[0].Content, "Send a firm reminder")
	assert.Equal(t, "crm", client.Name())
}

func TestClient_LogActivity_MissingExternalID(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"}, zap.NewNop())

	activity := testActivity()
	activity.CustomerExternalID = ""

	assert.ErrorIs(t, client.LogActivity(context.Background(), activity), ErrMissingExternalID)
}

func TestClient_LogActivity_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"code":"INVALID_TOKEN"}`, "status 401"},
		{"record error", http.StatusOK, `{"data":[{"code":"INVALID_DATA","message":"invalid parent id","status":"error"}]}`, "invalid parent id"},
		{"empty data", http.StatusOK, `{"data":[]}`, "no data in response"},
		{"malformed", http.StatusOK, `not json`, "failed to unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL, AccessToken: "t"}, zap.NewNop())
			err := client.LogActivity(context.Background(), testActivity())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClient_LogActivity_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
	err := client.LogActivity(context.Background(), testActivity())
	assert.ErrorContains(t, err, "failed to execute request")
}
