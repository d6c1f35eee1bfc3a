// Package store owns the cart: the single source of truth for line items and
// the applied coupon. Instances are constructed per session and injected into
// their consumers; nothing here is a package-level global.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/storefront/internal/storage"
)

// Item is one cart line. At most one Item exists per distinct
// (ProductId, VariantId) pair; Price is the unit price snapshot taken when
// the item was added.
type Item struct {
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

// AppliedCoupon is the resolved cart-scoped discount currently in effect.
type AppliedCoupon struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type cartBlob struct {
	Items  []Item         `json:"items"`
	Coupon *AppliedCoupon `json:"coupon,omitempty"`
}

// CartStore is the mutable cart ledger. Every mutation runs to completion
// under the mutex and bumps the version counter, then persists the cart as a
// best-effort side effect; persistence failures are logged and swallowed
// because the in-memory state stays authoritative for the session.
type CartStore struct {
	mu      sync.Mutex
	key     string
	items   []Item
	coupon  *AppliedCoupon
	version uint64
	storage storage.Storage
}

// New loads the persisted blob under key; a missing or corrupt blob yields an
// empty cart rather than an error.
func New(c context.Context, key string, st storage.Storage) *CartStore {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore New").
		Str(log.KeyStorageKey, key).
		Logger()

	s := &CartStore{key: key, storage: st}

	blob, err := st.Load(c, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn().Err(err).Msg("failed loading persisted cart, starting empty")
		}
		return s
	}

	persisted := cartBlob{}
	if err := json.Unmarshal(blob, &persisted); err != nil {
		logger.Warn().Err(err).Msg("corrupt persisted cart blob, starting empty")
		return s
	}
	s.items = persisted.Items
	s.coupon = persisted.Coupon
	return s
}

func sameVariant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AddItem inserts item with the given quantity, or increments the existing
// entry for the same (ProductId, VariantId). Stock is not checked here; the
// caller gates quantity changes through the stock resolver first.
func (s *CartStore) AddItem(c context.Context, item Item, quantity int32) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}
	for i := range s.items {
		if s.items[i].ProductId == item.ProductId && sameVariant(s.items[i].VariantId, item.VariantId) {
			s.items[i].Quantity += quantity
			s.afterMutation(c)
			return s.items[i]
		}
	}

	item.Quantity = quantity
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items = append(s.items, item)
	s.afterMutation(c)
	return item
}

// UpdateQuantity sets the quantity of the item directly. Quantities below one
// are a no-op; the decrement control is expected to stop at one and removal
// is an explicit separate operation.
func (s *CartStore) UpdateQuantity(c context.Context, itemID uuid.UUID, newQuantity int32) {
	if newQuantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = newQuantity
			s.afterMutation(c)
			return
		}
	}
}

// RemoveItem deletes the item; removing an absent id is a no-op.
func (s *CartStore) RemoveItem(c context.Context, itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.afterMutation(c)
			return
		}
	}
}

// RemoveByProductIds prunes every item whose ProductId is in ids and returns
// how many items were removed. This is the stale-item recovery path.
func (s *CartStore) RemoveByProductIds(c context.Context, ids []uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		stale[id] = struct{}{}
	}

	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if _, ok := stale[item.ProductId]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0
	}
	s.items = kept
	s.afterMutation(c)
	return removed
}

// Clear empties the cart and drops the applied coupon; coupon validity is
// tied to the cart snapshot that produced the discount.
func (s *CartStore) Clear(c context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.coupon = nil
	s.afterMutation(c)
}

// TotalPrice recomputes Σ price × quantity on every call; it is never cached.
func (s *CartStore) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return total
}

// Items returns a copy of the current line items.
func (s *CartStore) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// QuantityOf reports how much of the (productId, variantId) pair the cart
// already holds.
func (s *CartStore) QuantityOf(productID uuid.UUID, variantID *uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ProductId == productID && sameVariant(item.VariantId, variantID) {
			return item.Quantity
		}
	}
	return 0
}

// ItemByID returns the item and whether it exists.
func (s *CartStore) ItemByID(itemID uuid.UUID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// SetCoupon replaces any previously applied coupon; only one coupon may be in
// effect at a time.
func (s *CartStore) SetCoupon(c context.Context, coupon AppliedCoupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = &coupon
	s.afterMutation(c)
}

func (s *CartStore) RemoveCoupon(c context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return
	}
	s.coupon = nil
	s.afterMutation(c)
}

func (s *CartStore) Coupon() *AppliedCoupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return nil
	}
	coupon := *s.coupon
	return &coupon
}

// Version increments on every mutation. The checkout submitter compares it
// against the submit-time snapshot before applying a response to the cart.
func (s *CartStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// afterMutation must be called with the mutex held.
func (s *CartStore) afterMutation(c context.Context) {
	s.version++
	blob, err := json.Marshal(cartBlob{Items: s.items, Coupon: s.coupon})
	if err != nil {
		zerolog.Ctx(c).Warn().
			Str(log.KeyTag, "CartStore afterMutation").
			Str(log.KeyStorageKey, s.key).
			Err(fmt.Errorf("failed marshaling cart blob with error=%w", err)).
			Msg("skipping cart persistence")
		return
	}
	if err := s.storage.Save(c, s.key, blob); err != nil {
		zerolog.Ctx(c).Warn().
			Str(log.KeyTag, "CartStore afterMutation").
			Str(log.KeyStorageKey, s.key).
			Err(err).
			Msg("failed persisting cart, in-memory state stays authoritative")
	}
}
