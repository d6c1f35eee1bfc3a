package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	Items    []CartItem      `json:"items"`
	Coupon   *AppliedCoupon  `json:"coupon,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductId   uuid.UUID       `json:"product_id"`
	VariantId   *uuid.UUID      `json:"variant_id,omitempty"`
	Name        string          `json:"name"`
	VariantName string          `json:"variant_name,omitempty"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
}

type AppliedCoupon struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}
