package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

// SettingsClient fetches store-wide configuration. Concurrent fetches are
// collapsed through singleflight, but results are never cached across calls:
// the pricing aggregator must always see the current settings.
type SettingsClient struct {
	baseURL string
	sfg     singleflight.Group
}

func NewSettingsClient(baseURL string) *SettingsClient {
	return &SettingsClient{baseURL: baseURL}
}

func (s *SettingsClient) Get(c context.Context) (response.StoreSettings, error) {
	c, span := otel.Tracer.Start(c, "SettingsClient Get")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SettingsClient Get").
		Logger()

	v, err, _ := s.sfg.Do("settings", func() (interface{}, error) {
		req, err := newJSONRequest(c, http.MethodGet, s.baseURL+"/settings", nil)
		if err != nil {
			return nil, err
		}
		resp, err := do(req)
		if err != nil {
			return nil, fmt.Errorf("failed fetching store settings with error=%w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("settings service returned status code=%d", resp.StatusCode)
		}
		settings := response.StoreSettings{}
		if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
			return nil, fmt.Errorf("failed decoding store settings with error=%w", err)
		}
		return settings, nil
	})
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StoreSettings{}, err
	}
	return v.(response.StoreSettings), nil
}
