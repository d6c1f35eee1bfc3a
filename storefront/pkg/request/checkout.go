package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCod    = "cod"
	PaymentMethodOnline = "online"
)

type Address struct {
	FullName string `validate:"required" json:"full_name"`
	Phone    string `validate:"required" json:"phone"`
	Address1 string `validate:"required" json:"address1"`
	Address2 string `                    json:"address2"`
	City     string `validate:"required" json:"city"`
	State    string `validate:"required" json:"state"`
	Pincode  string `validate:"required" json:"pincode"`
}

// Checkout is the form the customer submits. Billing defaults to the shipping
// address unless SameAsBilling is unset, in which case a full billing address
// is required.
type Checkout struct {
	ShippingAddress Address  `validate:"required"                           json:"shipping_address"`
	SameAsBilling   bool     `                                              json:"same_as_billing"`
	BillingAddress  *Address `validate:"required_if=SameAsBilling false"    json:"billing_address"`
	PaymentMethod   string   `validate:"required,oneof=cod online"          json:"payment_method"`
}

// CreateOrder is the order draft submitted to the order service. All monetary
// fields are computed server-side of the storefront immediately before
// submission, never taken from user input.
type CreateOrder struct {
	Items           []OrderItem     `validate:"required,gt=0,dive" json:"items"`
	ShippingAddress Address         `validate:"required"           json:"shipping_address"`
	BillingAddress  Address         `validate:"required"           json:"billing_address"`
	PaymentMethod   string          `validate:"required"           json:"payment_method"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CouponCode      string          `json:"coupon_code,omitempty"`
}

type OrderItem struct {
	ProductId uuid.UUID       `validate:"required,uuid"  json:"product_id"`
	VariantId *uuid.UUID      `validate:"omitempty,uuid" json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `validate:"required"       json:"price"`
	Quantity  int32           `validate:"required,gte=1" json:"quantity"`
}
