package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

type AddressClient struct {
	baseURL string
}

func NewAddressClient(baseURL string) *AddressClient {
	return &AddressClient{baseURL: baseURL}
}

// List returns the caller's saved addresses, used to prefill checkout
// defaults with the default (or first) address.
func (a *AddressClient) List(c context.Context, sessionID string) ([]response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressClient List")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressClient List").
		Str(log.KeySessionID, sessionID).
		Logger()

	req, err := newJSONRequest(c, http.MethodGet, a.baseURL+"/addresses", nil)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	req.Header.Add("X-Session-Id", sessionID)

	resp, err := do(req)
	if err != nil {
		err = fmt.Errorf("failed listing addresses with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("address service returned status code=%d", resp.StatusCode)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	addresses := []response.Address{}
	if err := json.NewDecoder(resp.Body).Decode(&addresses); err != nil {
		err = fmt.Errorf("failed decoding addresses with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return addresses, nil
}
