// Package coupon translates a user-entered code plus the current cart
// snapshot into an applied discount. Validation itself is performed by the
// coupon service; the engine treats its reply as authoritative and re-derives
// nothing locally.
package coupon

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/internal/store"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

const defaultRejectionMessage = "invalid coupon"

// RejectionError carries the server-provided rejection reason, surfaced to
// the user verbatim.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Message)
}

type Validator interface {
	Validate(c context.Context, param request.ValidateCoupon) (response.CouponValidation, error)
}

type Engine struct {
	validator Validator
}

func NewEngine(validator Validator) Engine {
	return Engine{validator: validator}
}

// Apply canonicalizes the code upper-case, validates it against the current
// cart subtotal and line items, and installs the resolved discount on the
// cart. Any failure clears the applied coupon and leaves cart contents and
// totals untouched. The discount is clamped to [0, subtotal] so a fixed
// discount can never drive the total negative.
func (e Engine) Apply(
	c context.Context,
	cart *store.CartStore,
	code string,
) (store.AppliedCoupon, error) {
	c, span := otel.Tracer.Start(c, "CouponEngine Apply")
	defer span.End()

	code = strings.ToUpper(strings.TrimSpace(code))
	subtotal := cart.TotalPrice()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponEngine Apply").
		Str(log.KeyCouponCode, code).
		Str(log.KeySubtotal, subtotal.String()).
		Logger()

	items := cart.Items()
	lineItems := make([]request.CouponLineItem, len(items))
	for i, item := range items {
		lineItems[i] = request.CouponLineItem{
			ProductId: item.ProductId,
			Category:  item.Category,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	logger.Info().Msg("validating coupon")
	validation, err := e.validator.Validate(c, request.ValidateCoupon{
		Code:     code,
		Subtotal: subtotal,
		Items:    lineItems,
	})
	if err != nil {
		err = fmt.Errorf("failed validating coupon=%s with error=%w", code, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		cart.RemoveCoupon(c)
		return store.AppliedCoupon{}, err
	}

	if !validation.IsValid {
		message := validation.Message
		if message == "" {
			message = defaultRejectionMessage
		}
		rejection := &RejectionError{Code: code, Message: message}
		otel.RecordError(rejection, span)
		logger.Info().Err(rejection).Msg("coupon rejected")
		cart.RemoveCoupon(c)
		return store.AppliedCoupon{}, rejection
	}

	discount := validation.DiscountAmount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	applied := store.AppliedCoupon{Code: code, DiscountAmount: discount}
	cart.SetCoupon(c, applied)
	logger.Info().
		Str(log.KeyDiscountAmount, discount.String()).
		Msg("applied coupon")
	return applied, nil
}

// Remove clears the applied coupon. Removal is always allowed and requires
// no server round trip.
func (e Engine) Remove(c context.Context, cart *store.CartStore) {
	c, span := otel.Tracer.Start(c, "CouponEngine Remove")
	defer span.End()

	cart.RemoveCoupon(c)
	zerolog.Ctx(c).Info().
		Str(log.KeyTag, "CouponEngine Remove").
		Msg("removed coupon")
}
