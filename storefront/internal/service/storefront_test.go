package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swadeshika/storefront/storefront/internal/checkout"
	"github.com/swadeshika/storefront/storefront/internal/coupon"
	"github.com/swadeshika/storefront/storefront/internal/stock"
	"github.com/swadeshika/storefront/storefront/internal/storage"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

type fakeProducts struct {
	products map[uuid.UUID]response.Product
}

func (f *fakeProducts) FindById(_ context.Context, id uuid.UUID) (response.Product, error) {
	return f.products[id], nil
}

type fakeAddresses struct {
	addresses []response.Address
}

func (f *fakeAddresses) List(context.Context, string) ([]response.Address, error) {
	return f.addresses, nil
}

type fakeCouponValidator struct {
	validation response.CouponValidation
}

func (f *fakeCouponValidator) Validate(
	context.Context,
	request.ValidateCoupon,
) (response.CouponValidation, error) {
	return f.validation, nil
}

type fakeOrders struct {
	created response.CreateOrder
	err     error
}

func (f *fakeOrders) Create(context.Context, request.CreateOrder) (response.CreateOrder, error) {
	return f.created, f.err
}

type fakeSettings struct {
	settings response.StoreSettings
	err      error
}

func (f *fakeSettings) Get(context.Context) (response.StoreSettings, error) {
	return f.settings, f.err
}

func int32Ptr(v int32) *int32 { return &v }

func newTestService(products map[uuid.UUID]response.Product) *StorefrontService {
	return NewStorefrontService(
		storage.NewMemoryStorage(),
		"carts",
		&fakeProducts{products: products},
		&fakeAddresses{},
		coupon.NewEngine(&fakeCouponValidator{
			validation: response.CouponValidation{IsValid: true, DiscountAmount: decimal.NewFromInt(10)},
		}),
		&fakeSettings{settings: response.StoreSettings{
			FreeShippingThreshold: decimal.NewFromInt(500),
			FlatRate:              decimal.NewFromInt(50),
			GstPercent:            decimal.NewFromInt(18),
		}},
		&fakeOrders{created: response.CreateOrder{OrderId: uuid.New()}},
	)
}

func TestAddItemGatesOnStock(t *testing.T) {
	c := context.Background()
	productId := uuid.New()
	svc := newTestService(map[uuid.UUID]response.Product{
		productId: {
			ID:            productId,
			Name:          "Filter Coffee",
			Price:         decimal.NewFromInt(150),
			StockQuantity: int32Ptr(3),
		},
	})

	cart, err := svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)

	cart, err = svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product merges into the existing line")
	assert.Equal(t, int32(3), cart.Items[0].Quantity)

	_, err = svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 1})
	violation := &stock.ViolationError{}
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, int32(3), violation.Snapshot.Available)
	assert.Equal(t, int32(3), violation.Snapshot.InCart)
}

func TestAddItemRequiresVariantSelection(t *testing.T) {
	c := context.Background()
	productId := uuid.New()
	variantId := uuid.New()
	svc := newTestService(map[uuid.UUID]response.Product{
		productId: {
			ID:    productId,
			Name:  "Kurta",
			Price: decimal.NewFromInt(800),
			Variants: []response.ProductVariant{
				{ID: variantId, Name: "M", Price: decimal.NewFromInt(850), StockQuantity: int32Ptr(5)},
			},
		},
	})

	_, err := svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 1})
	assert.ErrorIs(t, err, stock.ErrVariantRequired)

	cart, err := svc.AddItem(c, "session-1", request.AddCartItem{
		ProductId: productId,
		VariantId: &variantId,
		Quantity:  1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "M", cart.Items[0].VariantName)
	assert.True(t, decimal.NewFromInt(850).Equal(cart.Items[0].Price), "variant price snapshot wins")
}

func TestUpdateQuantityGatesOnlyIncreases(t *testing.T) {
	c := context.Background()
	productId := uuid.New()
	svc := newTestService(map[uuid.UUID]response.Product{
		productId: {ID: productId, Price: decimal.NewFromInt(100), StockQuantity: int32Ptr(5)},
	})

	cart, err := svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 5})
	require.NoError(t, err)
	itemId := cart.Items[0].ID

	cart, err = svc.UpdateQuantity(c, "session-1", itemId, 2)
	require.NoError(t, err, "decreases never consult stock")
	assert.Equal(t, int32(2), cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(c, "session-1", itemId, 6)
	violation := &stock.ViolationError{}
	require.ErrorAs(t, err, &violation)
}

func TestSessionsAreIsolated(t *testing.T) {
	c := context.Background()
	productId := uuid.New()
	svc := newTestService(map[uuid.UUID]response.Product{
		productId: {ID: productId, Price: decimal.NewFromInt(100), StockQuantity: int32Ptr(10)},
	})

	_, err := svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 2})
	require.NoError(t, err)

	other := svc.Cart(c, "session-2")
	assert.Empty(t, other.Items)
}

func TestSummaryUsesLiveSettings(t *testing.T) {
	c := context.Background()
	productId := uuid.New()
	svc := newTestService(map[uuid.UUID]response.Product{
		productId: {ID: productId, Price: decimal.NewFromInt(100), StockQuantity: int32Ptr(10)},
	})
	_, err := svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 2})
	require.NoError(t, err)

	summary, err := svc.Summary(c, "session-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(summary.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(summary.Shipping))
	assert.True(t, decimal.NewFromInt(36).Equal(summary.Tax))
	assert.True(t, decimal.NewFromInt(286).Equal(summary.Total))
}

func TestCheckoutSuccessEmptiesCart(t *testing.T) {
	c := context.Background()
	productId := uuid.New()
	svc := newTestService(map[uuid.UUID]response.Product{
		productId: {ID: productId, Price: decimal.NewFromInt(100), StockQuantity: int32Ptr(10)},
	})
	_, err := svc.AddItem(c, "session-1", request.AddCartItem{ProductId: productId, Quantity: 2})
	require.NoError(t, err)

	outcome, err := svc.Checkout(c, "session-1", request.Checkout{
		ShippingAddress: request.Address{
			FullName: "Asha Rao",
			Phone:    "9000000000",
			Address1: "12 MG Road",
			City:     "Bengaluru",
			State:    "Karnataka",
			Pincode:  "560001",
		},
		SameAsBilling: true,
		PaymentMethod: request.PaymentMethodCod,
	})

	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeSuccess, outcome.Kind)
	assert.Empty(t, svc.Cart(c, "session-1").Items)
}
