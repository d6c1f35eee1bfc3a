package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

type CouponClient struct {
	baseURL string
}

func NewCouponClient(baseURL string) *CouponClient {
	return &CouponClient{baseURL: baseURL}
}

// Validate submits the code with the cart snapshot and returns the coupon
// service's authoritative verdict. A non-2xx reply that still carries a
// validation body (is_valid=false plus a reason) is returned as a verdict,
// not an error.
func (cc *CouponClient) Validate(
	c context.Context,
	param request.ValidateCoupon,
) (response.CouponValidation, error) {
	c, span := otel.Tracer.Start(c, "CouponClient Validate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponClient Validate").
		Str(log.KeyCouponCode, param.Code).
		Logger()

	req, err := newJSONRequest(c, http.MethodPost, cc.baseURL+"/coupons/validate", param)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CouponValidation{}, err
	}

	resp, err := do(req)
	if err != nil {
		err = fmt.Errorf("failed validating coupon=%s with error=%w", param.Code, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CouponValidation{}, err
	}
	defer resp.Body.Close()

	validation := response.CouponValidation{}
	if err := json.NewDecoder(resp.Body).Decode(&validation); err != nil {
		err = fmt.Errorf("failed decoding coupon validation with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CouponValidation{}, err
	}
	return validation, nil
}
