package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/internal/checkout"
	"github.com/swadeshika/storefront/storefront/internal/coupon"
	"github.com/swadeshika/storefront/storefront/internal/pricing"
	"github.com/swadeshika/storefront/storefront/internal/stock"
	"github.com/swadeshika/storefront/storefront/internal/storage"
	"github.com/swadeshika/storefront/storefront/internal/store"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

type ProductFinder interface {
	FindById(c context.Context, id uuid.UUID) (response.Product, error)
}

type AddressLister interface {
	List(c context.Context, sessionID string) ([]response.Address, error)
}

// session is one customer's engine state: their cart and their checkout state
// machine. Sessions are created lazily and keyed by the token subject.
type session struct {
	cart      *store.CartStore
	submitter *checkout.Submitter
}

// StorefrontService wires the cart engine together: the per-session stores,
// the stock resolver gating quantity changes, the coupon engine and the
// checkout submitter.
type StorefrontService struct {
	mu       sync.Mutex
	sessions map[string]*session

	storage       storage.Storage
	cartKeyPrefix string
	products      ProductFinder
	addresses     AddressLister
	coupons       coupon.Engine
	settings      checkout.SettingsFetcher
	orders        checkout.OrderCreator
}

func NewStorefrontService(
	st storage.Storage,
	cartKeyPrefix string,
	products ProductFinder,
	addresses AddressLister,
	coupons coupon.Engine,
	settings checkout.SettingsFetcher,
	orders checkout.OrderCreator,
) *StorefrontService {
	return &StorefrontService{
		sessions:      map[string]*session{},
		storage:       st,
		cartKeyPrefix: cartKeyPrefix,
		products:      products,
		addresses:     addresses,
		coupons:       coupons,
		settings:      settings,
		orders:        orders,
	}
}

func (s *StorefrontService) session(c context.Context, sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sessionID]; ok {
		return existing
	}
	created := &session{
		cart:      store.New(c, storage.CartKey(s.cartKeyPrefix, sessionID), s.storage),
		submitter: checkout.NewSubmitter(s.orders, s.settings),
	}
	s.sessions[sessionID] = created
	return created
}

// Cart returns the current cart view with the subtotal recomputed.
func (s *StorefrontService) Cart(c context.Context, sessionID string) response.Cart {
	cart := s.session(c, sessionID).cart
	return cartResponse(cart)
}

// AddItem gates the add through the stock resolver and then inserts or
// increments the line item with a price snapshot taken from the product (or
// selected variant) at add time.
func (s *StorefrontService) AddItem(
	c context.Context,
	sessionID string,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontService AddItem").
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	cart := s.session(c, sessionID).cart

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.products.FindById(c, param.ProductId)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", param.ProductId.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "resolving stock").Logger()
	logger.Info().Msg("resolving stock")
	inCart := cart.QuantityOf(param.ProductId, param.VariantId)
	snapshot, err := stock.Resolve(product, param.VariantId, inCart, param.Quantity)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if snapshot.LimitReached {
		violation := &stock.ViolationError{Snapshot: snapshot, Delta: param.Quantity}
		otel.RecordError(violation, span)
		logger.Info().Err(violation).Msg("stock limit reached")
		return response.Cart{}, violation
	}
	logger.Info().Msg("resolved stock")

	item := store.Item{
		ProductId: param.ProductId,
		VariantId: param.VariantId,
		Name:      product.Name,
		Image:     product.Image,
		Category:  product.Category,
		Price:     product.Price,
	}
	if param.VariantId != nil {
		for _, variant := range product.Variants {
			if variant.ID == *param.VariantId {
				item.VariantName = variant.Name
				item.Price = variant.Price
				break
			}
		}
	}

	cart.AddItem(c, item, param.Quantity)
	logger.Info().Msg("added item to cart")
	return cartResponse(cart), nil
}

// UpdateQuantity sets an item's quantity directly; increases are gated
// through the stock resolver against the target quantity.
func (s *StorefrontService) UpdateQuantity(
	c context.Context,
	sessionID string,
	itemID uuid.UUID,
	newQuantity int32,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StorefrontService UpdateQuantity").
		Str(log.KeyCartItemID, itemID.String()).
		Int32(log.KeyQuantity, newQuantity).
		Logger()

	cart := s.session(c, sessionID).cart

	item, ok := cart.ItemByID(itemID)
	if !ok {
		err := fmt.Errorf("cartItemId=%s not found", itemID.String())
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	if delta := newQuantity - item.Quantity; delta > 0 {
		logger = logger.With().Str(log.KeyProcess, "resolving stock").Logger()
		logger.Info().Msg("resolving stock")
		product, err := s.products.FindById(c, item.ProductId)
		if err != nil {
			err = fmt.Errorf("failed finding productId=%s with error=%w", item.ProductId.String(), err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		snapshot, err := stock.Resolve(product, item.VariantId, item.Quantity, delta)
		if err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		if snapshot.LimitReached {
			violation := &stock.ViolationError{Snapshot: snapshot, Delta: delta}
			otel.RecordError(violation, span)
			logger.Info().Err(violation).Msg("stock limit reached")
			return response.Cart{}, violation
		}
		logger.Info().Msg("resolved stock")
	}

	cart.UpdateQuantity(c, itemID, newQuantity)
	logger.Info().Msg("updated item quantity")
	return cartResponse(cart), nil
}

func (s *StorefrontService) RemoveItem(
	c context.Context,
	sessionID string,
	itemID uuid.UUID,
) response.Cart {
	cart := s.session(c, sessionID).cart
	cart.RemoveItem(c, itemID)
	return cartResponse(cart)
}

func (s *StorefrontService) ClearCart(c context.Context, sessionID string) {
	s.session(c, sessionID).cart.Clear(c)
}

func (s *StorefrontService) ApplyCoupon(
	c context.Context,
	sessionID string,
	code string,
) (response.Cart, error) {
	cart := s.session(c, sessionID).cart
	if _, err := s.coupons.Apply(c, cart, code); err != nil {
		return response.Cart{}, err
	}
	return cartResponse(cart), nil
}

func (s *StorefrontService) RemoveCoupon(c context.Context, sessionID string) response.Cart {
	cart := s.session(c, sessionID).cart
	s.coupons.Remove(c, cart)
	return cartResponse(cart)
}

// Summary recomputes the order summary from the live cart and freshly
// fetched store settings.
func (s *StorefrontService) Summary(
	c context.Context,
	sessionID string,
) (response.Summary, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService Summary")
	defer span.End()

	cart := s.session(c, sessionID).cart
	settings, err := s.settings.Get(c)
	if err != nil {
		err = fmt.Errorf("failed fetching store settings with error=%w", err)
		otel.RecordError(err, span)
		zerolog.Ctx(c).Error().
			Str(log.KeyTag, "StorefrontService Summary").
			Err(err).
			Msg(err.Error())
		return response.Summary{}, err
	}
	return pricing.Summarize(cart.TotalPrice(), settings, cart.Coupon()), nil
}

// CheckoutDefaults returns the customer's default address, or the first saved
// one, to prefill the checkout form.
func (s *StorefrontService) CheckoutDefaults(
	c context.Context,
	sessionID string,
) (*response.Address, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService CheckoutDefaults")
	defer span.End()

	addresses, err := s.addresses.List(c, sessionID)
	if err != nil {
		otel.RecordError(err, span)
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, nil
	}
	for _, address := range addresses {
		if address.IsDefault {
			return &address, nil
		}
	}
	return &addresses[0], nil
}

// Checkout submits the order for this session's cart.
func (s *StorefrontService) Checkout(
	c context.Context,
	sessionID string,
	form request.Checkout,
) (checkout.Outcome, error) {
	sess := s.session(c, sessionID)
	return sess.submitter.Submit(c, sess.cart, form)
}

func cartResponse(cart *store.CartStore) response.Cart {
	items := cart.Items()
	viewItems := make([]response.CartItem, len(items))
	for i, item := range items {
		viewItems[i] = response.CartItem{
			ID:          item.ID,
			ProductId:   item.ProductId,
			VariantId:   item.VariantId,
			Name:        item.Name,
			VariantName: item.VariantName,
			Image:       item.Image,
			Category:    item.Category,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}

	view := response.Cart{Items: viewItems, Subtotal: cart.TotalPrice()}
	if coupon := cart.Coupon(); coupon != nil {
		view.Coupon = &response.AppliedCoupon{
			Code:           coupon.Code,
			DiscountAmount: coupon.DiscountAmount,
		}
	}
	return view
}
