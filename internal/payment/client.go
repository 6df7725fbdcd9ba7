package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/metrics"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrPreferenceRejected = errors.New("payment provider rejected the preference request")

type PreferenceItem struct {
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type Payer struct {
	Name    string `json:"name"`
	Contact string `json:"email"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             *Payer           `json:"payer,omitempty"`
	ExternalReference string           `json:"external_reference,omitempty"`
}

// Preference is the provider-side record created before redirecting the
// buyer. The core only needs the redirect URL and the identifier; the rest
// of the provider schema is opaque.
type Preference struct {
	ID          string `json:"id"`
	RedirectURL string `json:"init_point"`
}

// Client creates payment preferences against the provider's REST endpoint.
// Calls go through a circuit breaker so a flapping provider fails fast
// instead of tying up checkout requests.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	breaker     *gobreaker.CircuitBreaker[*Preference]
}

func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker[*Preference](gobreaker.Settings{
		Name:    "payment-preference",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:     baseURL,
		accessToken: accessToken,
		breaker:     breaker,
	}
}

func (c *Client) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	pref, err := c.breaker.Execute(func() (*Preference, error) {
		return c.createPreference(ctx, req)
	})
	if err != nil {
		metrics.PreferenceRequests.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.PreferenceRequests.WithLabelValues("success").Inc()
	return pref, nil
}

func (c *Client) createPreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal preference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build preference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("preference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrPreferenceRejected, resp.StatusCode)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}
	if pref.ID == "" || pref.RedirectURL == "" {
		return nil, fmt.Errorf("%w: response missing id or init_point", ErrPreferenceRejected)
	}

	return &pref, nil
}
