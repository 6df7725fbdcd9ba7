package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MessagingClient sends plain-text messages to the merchant through the
// messaging provider's REST API. Fire-and-forget from the caller's point of
// view: a failed send is reported back but never retried here.
type MessagingClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewMessagingClient(baseURL, apiKey string, timeout time.Duration) *MessagingClient {
	return &MessagingClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (c *MessagingClient) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(sendRequest{Phone: to, Message: body})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("message send failed: status %d", resp.StatusCode)
	}
	return nil
}
