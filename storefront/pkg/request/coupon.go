package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateCoupon is the payload sent to the coupon service. The code is
// canonicalized upper-case before transmission.
type ValidateCoupon struct {
	Code     string           `json:"code"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Items    []CouponLineItem `json:"items"`
}

type CouponLineItem struct {
	ProductId uuid.UUID       `json:"product_id"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}
