package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/swadeshika/storefront/internal/errors"
	"github.com/swadeshika/storefront/storefront/internal/client"
	"github.com/swadeshika/storefront/storefront/internal/storage"
	"github.com/swadeshika/storefront/storefront/internal/store"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

type fakeOrderCreator struct {
	mu        sync.Mutex
	lastDraft request.CreateOrder
	created   response.CreateOrder
	err       error
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakeOrderCreator) Create(
	_ context.Context,
	draft request.CreateOrder,
) (response.CreateOrder, error) {
	f.mu.Lock()
	f.lastDraft = draft
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	return f.created, f.err
}

func (f *fakeOrderCreator) draft() request.CreateOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastDraft
}

type fakeSettingsFetcher struct {
	settings response.StoreSettings
	err      error
}

func (f *fakeSettingsFetcher) Get(context.Context) (response.StoreSettings, error) {
	return f.settings, f.err
}

var checkoutSettings = response.StoreSettings{
	FreeShippingThreshold: decimal.NewFromInt(500),
	FlatRate:              decimal.NewFromInt(50),
	GstPercent:            decimal.NewFromInt(18),
}

func checkoutForm() request.Checkout {
	return request.Checkout{
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
	}
}

func newCheckoutCart(t *testing.T, productIds ...uuid.UUID) *store.CartStore {
	t.Helper()
	cart := store.New(context.Background(), "carts:checkout-test", storage.NewMemoryStorage())
	for _, productId := range productIds {
		cart.AddItem(context.Background(), store.Item{
			ProductId: productId,
			Price:     decimal.NewFromInt(100),
		}, 2)
	}
	return cart
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orderId := uuid.New()
	orders := &fakeOrderCreator{created: response.CreateOrder{OrderId: orderId}}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	outcome, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, orderId, outcome.OrderId)
	assert.Empty(t, cart.Items())
	assert.Equal(t, StateIdle, submitter.State())
}

func TestSubmitRecomputesDraftTotals(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	cart.SetCoupon(c, store.AppliedCoupon{Code: "SAVE10", DiscountAmount: decimal.NewFromInt(20)})
	orders := &fakeOrderCreator{created: response.CreateOrder{OrderId: uuid.New()}}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	_, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	draft := orders.draft()
	assert.True(t, decimal.NewFromInt(200).Equal(draft.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(draft.ShippingCost))
	assert.True(t, decimal.NewFromInt(36).Equal(draft.Tax))
	assert.True(t, decimal.NewFromInt(20).Equal(draft.Discount))
	assert.True(t, decimal.NewFromInt(266).Equal(draft.TotalAmount))
	assert.Equal(t, "SAVE10", draft.CouponCode)
	assert.Equal(t, draft.ShippingAddress, draft.BillingAddress)
}

func TestSubmitEmptyCart(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t)
	submitter := NewSubmitter(&fakeOrderCreator{}, &fakeSettingsFetcher{settings: checkoutSettings})

	_, err := submitter.Submit(c, cart, checkoutForm())

	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	assert.Equal(t, StateIdle, submitter.State())
}

func TestSubmitSettingsFailure(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	submitter := NewSubmitter(
		&fakeOrderCreator{},
		&fakeSettingsFetcher{err: errors.New("settings service down")},
	)

	outcome, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	assert.Equal(t, OutcomeGenericFailure, outcome.Kind)
	assert.NotEmpty(t, outcome.Message)
	assert.NotEmpty(t, cart.Items(), "a failed submission leaves the cart intact")
}

func TestSubmitFieldValidationFailure(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orders := &fakeOrderCreator{err: &client.OrderError{
		StatusCode: 400,
		Fields: []client.FieldError{
			{Field: "shippingAddress.addressLine1", Message: "address line is required"},
			{Field: "paymentMethod", Message: "unsupported payment method"},
		},
	}}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	outcome, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	assert.Equal(t, OutcomeFieldValidation, outcome.Kind)
	require.Len(t, outcome.FieldErrors, 2)
	assert.Equal(t, "address1", outcome.FieldErrors[0].Field)
	assert.Equal(t, "payment_method", outcome.FieldErrors[1].Field)
	assert.Equal(t, "address1", outcome.FirstInvalidField)
	assert.NotEmpty(t, cart.Items(), "validation failures never touch the cart")
	assert.Equal(t, StateIdle, submitter.State())
}

func TestSubmitStaleItemsPrunesCart(t *testing.T) {
	c := context.Background()
	staleProductId := uuid.New()
	keptProductId := uuid.New()
	cart := newCheckoutCart(t, staleProductId, keptProductId)
	orders := &fakeOrderCreator{err: &client.OrderError{
		StatusCode: 409,
		Message:    fmt.Sprintf("some items are no longer available, IDs: %s", staleProductId),
	}}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	outcome, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	assert.Equal(t, OutcomeStaleItems, outcome.Kind)
	assert.Equal(t, 1, outcome.PrunedCount)
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, keptProductId, items[0].ProductId)
}

func TestSubmitUnparseableRejection(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orders := &fakeOrderCreator{err: &client.OrderError{
		StatusCode: 500,
		Message:    "inventory check failed",
	}}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	outcome, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	assert.Equal(t, OutcomeGenericFailure, outcome.Kind)
	assert.Equal(t, "inventory check failed", outcome.Message)
	assert.NotEmpty(t, cart.Items())
}

func TestSubmitTransportFailure(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orders := &fakeOrderCreator{err: errors.New("connection reset")}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	outcome, err := submitter.Submit(c, cart, checkoutForm())

	require.NoError(t, err)
	assert.Equal(t, OutcomeGenericFailure, outcome.Kind)
	assert.Equal(t, defaultFailureMessage, outcome.Message)
}

func TestSubmitGuardsAgainstConcurrentSubmission(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orders := &fakeOrderCreator{
		created: response.CreateOrder{OrderId: uuid.New()},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	firstDone := make(chan error, 1)
	go func() {
		_, err := submitter.Submit(c, cart, checkoutForm())
		firstDone <- err
	}()

	select {
	case <-orders.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first submission never reached the order client")
	}
	assert.Equal(t, StateSubmitting, submitter.State())

	_, err := submitter.Submit(c, cart, checkoutForm())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(orders.release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, StateIdle, submitter.State())
}

func TestSubmitSkipsCartClearWhenCartChangedMidFlight(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orders := &fakeOrderCreator{
		created: response.CreateOrder{OrderId: uuid.New()},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	done := make(chan Outcome, 1)
	go func() {
		outcome, err := submitter.Submit(c, cart, checkoutForm())
		require.NoError(t, err)
		done <- outcome
	}()

	select {
	case <-orders.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("submission never reached the order client")
	}
	addedMidFlight := cart.AddItem(c, store.Item{
		ProductId: uuid.New(),
		Price:     decimal.NewFromInt(30),
	}, 1)
	close(orders.release)

	outcome := <-done
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	items := cart.Items()
	require.Len(t, items, 2, "a stale success reply must not clear a cart that changed mid-flight")
	_, ok := cart.ItemByID(addedMidFlight.ID)
	assert.True(t, ok)
}

func TestSubmitSkipsPruningWhenCartChangedMidFlight(t *testing.T) {
	c := context.Background()
	staleProductId := uuid.New()
	cart := newCheckoutCart(t, staleProductId)
	orders := &fakeOrderCreator{
		err: &client.OrderError{
			StatusCode: 409,
			Message:    fmt.Sprintf("some items are no longer available, IDs: %s", staleProductId),
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	done := make(chan Outcome, 1)
	go func() {
		outcome, err := submitter.Submit(c, cart, checkoutForm())
		require.NoError(t, err)
		done <- outcome
	}()

	select {
	case <-orders.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("submission never reached the order client")
	}
	cart.AddItem(c, store.Item{ProductId: uuid.New(), Price: decimal.NewFromInt(30)}, 1)
	close(orders.release)

	outcome := <-done
	assert.Equal(t, OutcomeStaleItems, outcome.Kind)
	assert.Equal(t, 0, outcome.PrunedCount)
	assert.Len(t, cart.Items(), 2, "mid-flight changes suppress stale-item pruning")
}

func TestSubmitUsesExplicitBillingAddress(t *testing.T) {
	c := context.Background()
	cart := newCheckoutCart(t, uuid.New())
	orders := &fakeOrderCreator{created: response.CreateOrder{OrderId: uuid.New()}}
	submitter := NewSubmitter(orders, &fakeSettingsFetcher{settings: checkoutSettings})

	form := checkoutForm()
	form.SameAsBilling = false
	form.BillingAddress = &request.Address{
		FullName: "Asha Rao",
		Phone:    "9000000000",
		Address1: "4 Residency Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560025",
	}

	_, err := submitter.Submit(c, cart, form)

	require.NoError(t, err)
	draft := orders.draft()
	assert.Equal(t, "4 Residency Road", draft.BillingAddress.Address1)
	assert.Equal(t, "12 MG Road", draft.ShippingAddress.Address1)
}
