// Package stock arbitrates quantity changes against available stock. The
// resolver is pure: given the same product, variant selection and cart
// holdings it always returns the same verdict, and it must be re-run after
// every cart mutation rather than cached.
package stock

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/swadeshika/storefront/storefront/pkg/response"
)

// ErrVariantRequired signals that the product has variants and none was
// selected. It is distinct from a stock rejection: the remedy is selecting a
// variant, not waiting for restock.
var ErrVariantRequired = errors.New("select a variant before adding to cart")

var ErrVariantNotFound = errors.New("variant does not belong to this product")

// Snapshot is the resolver's verdict for one attempted quantity change.
type Snapshot struct {
	Available    int32
	InCart       int32
	Unlimited    bool
	IsOutOfStock bool
	LimitReached bool
}

// ViolationError is returned when the attempted change would exceed stock.
type ViolationError struct {
	Snapshot Snapshot
	Delta    int32
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf(
		"requested quantity exceeds available stock: available=%d inCart=%d delta=%d",
		e.Snapshot.Available, e.Snapshot.InCart, e.Delta,
	)
}

// Resolve answers whether the cart may grow by delta units of the given
// product/variant, taking into account the inCart quantity already held for
// that exact pair.
//
// A product with variants requires a selection. A variant's stock count is
// always authoritative; a variant without a numeric count is treated as out
// of stock, never as unlimited. A product without a numeric count falls back
// to its InStock flag and is otherwise unconstrained.
func Resolve(
	product response.Product,
	variantID *uuid.UUID,
	inCart int32,
	delta int32,
) (Snapshot, error) {
	if len(product.Variants) > 0 && variantID == nil {
		return Snapshot{}, ErrVariantRequired
	}

	snapshot := Snapshot{InCart: inCart}

	if variantID != nil {
		variant, ok := findVariant(product.Variants, *variantID)
		if !ok {
			return Snapshot{}, ErrVariantNotFound
		}
		if variant.StockQuantity != nil {
			snapshot.Available = *variant.StockQuantity
		}
		snapshot.IsOutOfStock = snapshot.Available <= 0
		snapshot.LimitReached = inCart+delta > snapshot.Available
		return snapshot, nil
	}

	if product.StockQuantity == nil {
		snapshot.Unlimited = true
		snapshot.IsOutOfStock = product.InStock != nil && !*product.InStock
		snapshot.LimitReached = snapshot.IsOutOfStock
		return snapshot, nil
	}

	snapshot.Available = *product.StockQuantity
	snapshot.IsOutOfStock = snapshot.Available <= 0
	snapshot.LimitReached = inCart+delta > snapshot.Available
	return snapshot, nil
}

func findVariant(variants []response.ProductVariant, id uuid.UUID) (response.ProductVariant, bool) {
	for _, variant := range variants {
		if variant.ID == id {
			return variant, true
		}
	}
	return response.ProductVariant{}, false
}
