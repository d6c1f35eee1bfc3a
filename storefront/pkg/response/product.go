package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the product service's view of a purchasable product. A nil
// StockQuantity means stock is not tracked numerically at product level and
// the InStock flag governs purchasability.
type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Image         string           `json:"image"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	StockQuantity *int32           `json:"stock_quantity"`
	InStock       *bool            `json:"in_stock"`
	Variants      []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant always carries an explicit stock count once present; a nil
// StockQuantity on a variant is never treated as unlimited.
type ProductVariant struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity *int32          `json:"stock_quantity"`
}
