package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
)

// replyFields are searched in order for the engine's reply text; no-code
// workflow nodes are inconsistent about which one they populate.
var replyFields = []string{"reply", "message", "output", "text"}

// ChatClient relays unrecognized chat input to the external workflow
// engine and extracts its reply.
type ChatClient struct {
	httpClient *http.Client
	url        string
	appBaseURL string
}

func NewChatClient(url, appBaseURL string, timeout time.Duration) *ChatClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ChatClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		appBaseURL: appBaseURL,
	}
}

// Configured reports whether a chat webhook URL is set.
func (c *ChatClient) Configured() bool {
	return c.url != ""
}

// Send posts the message to the chat webhook and returns the engine's
// reply. An empty reply with nil error means the engine answered with
// nothing usable; the caller supplies the fallback.
func (c *ChatClient) Send(ctx context.Context, userID uuid.UUID, identifier, message string) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("chat webhook URL not configured")
	}

	body, err := json.Marshal(map[string]interface{}{
		"user_id":      userID.String(),
		"identifier":   identifier,
		"message":      message,
		"app_base_url": c.appBaseURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", nil
	}

	for _, field := range replyFields {
		if reply, ok := data[field].(string); ok && reply != "" {
			return reply, nil
		}
	}
	return "", nil
}
