package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swadeshika/storefront/storefront/internal/storage"
)

type failingStorage struct{}

func (failingStorage) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("storage unavailable")
}

func (failingStorage) Save(context.Context, string, []byte) error {
	return errors.New("storage unavailable")
}

func (failingStorage) Delete(context.Context, string) error {
	return errors.New("storage unavailable")
}

func newTestCart(t *testing.T) *CartStore {
	t.Helper()
	return New(context.Background(), storage.CartKey("carts", uuid.NewString()), storage.NewMemoryStorage())
}

func TestAddItem(t *testing.T) {
	productId := uuid.New()
	variantId := uuid.New()
	otherVariantId := uuid.New()

	tests := []struct {
		name string
		adds []struct {
			variantId *uuid.UUID
			quantity  int32
		}
		expectedLines      int
		expectedFirstCount int32
	}{
		{
			name: "given same product and variant should merge into one line",
			adds: []struct {
				variantId *uuid.UUID
				quantity  int32
			}{
				{variantId: &variantId, quantity: 2},
				{variantId: &variantId, quantity: 3},
			},
			expectedLines:      1,
			expectedFirstCount: 5,
		},
		{
			name: "given same product and different variant should keep separate lines",
			adds: []struct {
				variantId *uuid.UUID
				quantity  int32
			}{
				{variantId: &variantId, quantity: 2},
				{variantId: &otherVariantId, quantity: 3},
			},
			expectedLines:      2,
			expectedFirstCount: 2,
		},
		{
			name: "given quantity below one should add a single unit",
			adds: []struct {
				variantId *uuid.UUID
				quantity  int32
			}{
				{variantId: nil, quantity: 0},
			},
			expectedLines:      1,
			expectedFirstCount: 1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := context.Background()
			cart := newTestCart(t)
			for _, add := range test.adds {
				cart.AddItem(c, Item{
					ProductId: productId,
					VariantId: add.variantId,
					Price:     decimal.NewFromInt(10),
				}, add.quantity)
			}
			items := cart.Items()
			require.Len(t, items, test.expectedLines)
			assert.Equal(t, test.expectedFirstCount, items[0].Quantity)
			assert.NotEqual(t, uuid.Nil, items[0].ID)
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	item := cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromInt(10)}, 2)

	cart.UpdateQuantity(c, item.ID, 7)
	updated, ok := cart.ItemByID(item.ID)
	require.True(t, ok)
	assert.Equal(t, int32(7), updated.Quantity)

	cart.UpdateQuantity(c, item.ID, 0)
	unchanged, ok := cart.ItemByID(item.ID)
	require.True(t, ok)
	assert.Equal(t, int32(7), unchanged.Quantity, "quantities below one should be a no-op")
}

func TestRemoveItem(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	item := cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromInt(10)}, 2)

	cart.RemoveItem(c, item.ID)
	assert.Empty(t, cart.Items())

	versionBefore := cart.Version()
	cart.RemoveItem(c, item.ID)
	assert.Equal(t, versionBefore, cart.Version(), "removing an absent item should not mutate the cart")
}

func TestRemoveByProductIds(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	staleProductId := uuid.New()
	keptProductId := uuid.New()
	variantId := uuid.New()
	cart.AddItem(c, Item{ProductId: staleProductId, Price: decimal.NewFromInt(10)}, 1)
	cart.AddItem(c, Item{ProductId: staleProductId, VariantId: &variantId, Price: decimal.NewFromInt(12)}, 1)
	cart.AddItem(c, Item{ProductId: keptProductId, Price: decimal.NewFromInt(15)}, 2)

	removed := cart.RemoveByProductIds(c, []uuid.UUID{staleProductId, uuid.New()})

	assert.Equal(t, 2, removed)
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, keptProductId, items[0].ProductId)
}

func TestClearDropsCoupon(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromInt(100)}, 1)
	cart.SetCoupon(c, AppliedCoupon{Code: "SAVE10", DiscountAmount: decimal.NewFromInt(10)})

	cart.Clear(c)

	assert.Empty(t, cart.Items())
	assert.Nil(t, cart.Coupon())
	assert.True(t, cart.TotalPrice().IsZero())
}

func TestSetCouponReplacesPrevious(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	cart.SetCoupon(c, AppliedCoupon{Code: "FIRST", DiscountAmount: decimal.NewFromInt(5)})
	cart.SetCoupon(c, AppliedCoupon{Code: "SECOND", DiscountAmount: decimal.NewFromInt(7)})

	coupon := cart.Coupon()
	require.NotNil(t, coupon)
	assert.Equal(t, "SECOND", coupon.Code)
	assert.True(t, decimal.NewFromInt(7).Equal(coupon.DiscountAmount))
}

func TestTotalPrice(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	assert.True(t, cart.TotalPrice().IsZero())

	item := cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromFloat(19.99)}, 3)
	cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromInt(5)}, 2)
	assert.True(t, decimal.NewFromFloat(69.97).Equal(cart.TotalPrice()))

	cart.UpdateQuantity(c, item.ID, 1)
	assert.True(t, decimal.NewFromFloat(29.99).Equal(cart.TotalPrice()))
}

func TestVersionBumpsOnEveryMutation(t *testing.T) {
	c := context.Background()
	cart := newTestCart(t)
	require.Equal(t, uint64(0), cart.Version())

	item := cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromInt(10)}, 1)
	cart.UpdateQuantity(c, item.ID, 4)
	cart.SetCoupon(c, AppliedCoupon{Code: "SAVE10", DiscountAmount: decimal.NewFromInt(1)})
	cart.RemoveCoupon(c)
	cart.Clear(c)

	assert.Equal(t, uint64(5), cart.Version())
}

func TestPersistenceRoundTrip(t *testing.T) {
	c := context.Background()
	st := storage.NewMemoryStorage()
	key := storage.CartKey("carts", "session-1")

	first := New(c, key, st)
	first.AddItem(c, Item{ProductId: uuid.New(), Name: "Masala Chai", Price: decimal.NewFromInt(120)}, 2)
	first.SetCoupon(c, AppliedCoupon{Code: "CHAI10", DiscountAmount: decimal.NewFromInt(12)})

	second := New(c, key, st)
	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Masala Chai", items[0].Name)
	assert.Equal(t, int32(2), items[0].Quantity)
	coupon := second.Coupon()
	require.NotNil(t, coupon)
	assert.Equal(t, "CHAI10", coupon.Code)
}

func TestCorruptBlobStartsEmpty(t *testing.T) {
	c := context.Background()
	st := storage.NewMemoryStorage()
	key := storage.CartKey("carts", "session-2")
	require.NoError(t, st.Save(c, key, []byte("{not json")))

	cart := New(c, key, st)
	assert.Empty(t, cart.Items())
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	c := context.Background()
	cart := New(c, storage.CartKey("carts", "session-3"), failingStorage{})

	item := cart.AddItem(c, Item{ProductId: uuid.New(), Price: decimal.NewFromInt(10)}, 2)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
	assert.Equal(t, uint64(1), cart.Version())
}
