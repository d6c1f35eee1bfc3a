package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

type ProductClient struct {
	baseURL string
}

func NewProductClient(baseURL string) *ProductClient {
	return &ProductClient{baseURL: baseURL}
}

func (p *ProductClient) FindById(c context.Context, id uuid.UUID) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductClient FindById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductClient FindById").
		Str(log.KeyProductID, id.String()).
		Logger()

	req, err := newJSONRequest(c, http.MethodGet, p.baseURL+"/products/"+id.String(), nil)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	resp, err := do(req)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", id.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("product service returned status code=%d for productId=%s", resp.StatusCode, id.String())
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	product := response.Product{}
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		err = fmt.Errorf("failed decoding product response with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	return product, nil
}
