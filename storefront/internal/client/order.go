package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

// FieldError is one entry of the order service's structured validation
// reply; Field is the backend field path, e.g. "shippingAddress.addressLine1".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OrderError is a rejected order submission. Either Fields carries the
// structured per-field errors or Message carries a bare reason (which may
// embed the stale-item id list).
type OrderError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *OrderError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Sprintf("order rejected (status=%d): %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("order rejected (status=%d): %s", e.StatusCode, e.Message)
}

type OrderClient struct {
	baseURL string
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{baseURL: baseURL}
}

// Create submits the order draft. Non-2xx replies come back as *OrderError;
// transport failures come back as plain errors.
func (oc *OrderClient) Create(
	c context.Context,
	draft request.CreateOrder,
) (response.CreateOrder, error) {
	c, span := otel.Tracer.Start(c, "OrderClient Create")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderClient Create").
		Int(log.KeyCartItems, len(draft.Items)).
		Str(log.KeyTotal, draft.TotalAmount.String()).
		Logger()

	req, err := newJSONRequest(c, http.MethodPost, oc.baseURL+"/orders", draft)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}

	resp, err := do(req)
	if err != nil {
		err = fmt.Errorf("failed submitting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		orderErr := decodeOrderError(resp)
		otel.RecordError(orderErr, span)
		logger.Error().Err(orderErr).Msg(orderErr.Error())
		return response.CreateOrder{}, orderErr
	}

	created := response.CreateOrder{}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		err = fmt.Errorf("failed decoding order response with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CreateOrder{}, err
	}
	logger.Info().Str(log.KeyOrderID, created.OrderId.String()).Msg("order created")
	return created, nil
}

func decodeOrderError(resp *http.Response) *OrderError {
	orderErr := &OrderError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return orderErr
	}

	parsed := struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		orderErr.Message = strings.TrimSpace(string(body))
		return orderErr
	}
	orderErr.Message = parsed.Message
	orderErr.Fields = parsed.Errors
	return orderErr
}
