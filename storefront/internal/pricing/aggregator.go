// Package pricing derives the order summary shown to the customer and
// submitted at checkout. The aggregator is stateless and pure; callers re-run
// it after every cart mutation, coupon change or settings reload so a stale
// total can never be observed.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/swadeshika/storefront/storefront/internal/store"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

var oneHundred = decimal.NewFromInt(100)

// Summarize computes, in fixed order: subtotal, threshold-based shipping,
// GST, coupon discount and the final total.
//
// Shipping is zero for an empty cart regardless of the threshold (there is
// nothing to ship) and zero once the subtotal reaches the free-shipping
// threshold; otherwise the flat rate applies.
//
// Tax is rounded half up to the nearest integer currency unit
// (decimal.Round rounds half away from zero; amounts here are non-negative).
func Summarize(
	subtotal decimal.Decimal,
	settings response.StoreSettings,
	coupon *store.AppliedCoupon,
) response.Summary {
	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(settings.FreeShippingThreshold) {
		shipping = settings.FlatRate
	}

	tax := subtotal.Mul(settings.GstPercent).Div(oneHundred).Round(0)

	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.DiscountAmount
	}

	return response.Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(shipping).Add(tax).Sub(discount),
	}
}
