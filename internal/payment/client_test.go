package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePreference_Success(t *testing.T) {
	var received PreferenceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "pref-123",
			"init_point": "https://pay.example.com/pref-123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 5*time.Second)
	pref, err := client.CreatePreference(context.Background(), &PreferenceRequest{
		Items: []PreferenceItem{
			{Title: "Sello automático", UnitPrice: 8500, Quantity: 2},
		},
		ExternalReference: "session-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "pref-123", pref.ID)
	assert.Equal(t, "https://pay.example.com/pref-123", pref.RedirectURL)
	require.Len(t, received.Items, 1)
	assert.Equal(t, 2, received.Items[0].Quantity)
	assert.Equal(t, "session-1", received.ExternalReference)
}

func TestCreatePreference_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 5*time.Second)
	_, err := client.CreatePreference(context.Background(), &PreferenceRequest{})

	assert.ErrorIs(t, err, ErrPreferenceRejected)
}

func TestCreatePreference_MissingRedirectURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "pref-123"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 5*time.Second)
	_, err := client.CreatePreference(context.Background(), &PreferenceRequest{})

	assert.ErrorIs(t, err, ErrPreferenceRejected)
}

func TestCreatePreference_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 5*time.Second)
	for i := 0; i < 10; i++ {
		_, err := client.CreatePreference(context.Background(), &PreferenceRequest{})
		assert.Error(t, err)
	}

	// After the trip threshold, calls fail fast without reaching the server.
	assert.Equal(t, 5, hits)
}
