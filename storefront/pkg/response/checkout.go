package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type StoreSettings struct {
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	FlatRate              decimal.Decimal `json:"flat_rate"`
	GstPercent            decimal.Decimal `json:"gst_percent"`
}

type CouponValidation struct {
	IsValid        bool            `json:"is_valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message,omitempty"`
}

type CreateOrder struct {
	OrderId uuid.UUID `json:"order_id"`
}

type Address struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address1  string    `json:"address1"`
	Address2  string    `json:"address2"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	IsDefault bool      `json:"is_default"`
}
