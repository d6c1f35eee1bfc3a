package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swadeshika/storefront/storefront/pkg/response"
)

func TestSettingsClientGet(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/settings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response.StoreSettings{
			FreeShippingThreshold: decimal.NewFromInt(500),
			FlatRate:              decimal.NewFromInt(50),
			GstPercent:            decimal.NewFromInt(18),
		})
	}))
	defer server.Close()

	settingsClient := NewSettingsClient(server.URL)
	settings, err := settingsClient.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(settings.FreeShippingThreshold))

	_, err = settingsClient.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "sequential fetches always hit the service, nothing is cached")
}

func TestSettingsClientGetFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewSettingsClient(server.URL).Get(context.Background())
	require.Error(t, err)
}
