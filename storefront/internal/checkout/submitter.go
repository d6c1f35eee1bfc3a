// Package checkout assembles the order draft from live cart and pricing
// state, submits it, and classifies the reply. The submitter is the only
// component allowed to mutate the cart in response to a server error, and
// only for the stale-item class.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/swadeshika/storefront/internal/errors"
	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/internal/client"
	"github.com/swadeshika/storefront/storefront/internal/pricing"
	"github.com/swadeshika/storefront/storefront/internal/store"
	"github.com/swadeshika/storefront/storefront/pkg/request"
	"github.com/swadeshika/storefront/storefront/pkg/response"
)

// ErrSubmissionInFlight is returned when a second place-order lands while one
// is still outstanding; the UI disables the button but the guard holds
// regardless.
var ErrSubmissionInFlight = errors.New("an order submission is already in flight")

const defaultFailureMessage = "failed placing order, please try again"

type State int32

const (
	StateIdle State = iota
	StateSubmitting
)

type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeFieldValidation OutcomeKind = "field_validation"
	OutcomeStaleItems      OutcomeKind = "stale_items"
	OutcomeGenericFailure  OutcomeKind = "generic_failure"
)

// FieldError is a per-field validation failure already translated to the
// checkout form's field key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Outcome is the classified result of one submission. After any outcome the
// submitter is back in StateIdle and may be retried immediately.
type Outcome struct {
	Kind              OutcomeKind  `json:"kind"`
	OrderId           uuid.UUID    `json:"order_id,omitempty"`
	FieldErrors       []FieldError `json:"field_errors,omitempty"`
	FirstInvalidField string       `json:"first_invalid_field,omitempty"`
	PrunedCount       int          `json:"pruned_count,omitempty"`
	Message           string       `json:"message,omitempty"`
}

type OrderCreator interface {
	Create(c context.Context, draft request.CreateOrder) (response.CreateOrder, error)
}

type SettingsFetcher interface {
	Get(c context.Context) (response.StoreSettings, error)
}

// Submitter drives Idle → Submitting → outcome → Idle. One instance guards
// one cart; seq is the submission sequence token that keeps a late reply from
// an earlier submission from overriding a newer one.
type Submitter struct {
	orders   OrderCreator
	settings SettingsFetcher
	state    atomic.Int32
	seq      atomic.Uint64
}

func NewSubmitter(orders OrderCreator, settings SettingsFetcher) *Submitter {
	return &Submitter{orders: orders, settings: settings}
}

func (s *Submitter) State() State {
	return State(s.state.Load())
}

// Submit assembles the order draft from the cart's live state, submits it and
// classifies the reply. All monetary fields are recomputed here, immediately
// before submission; nothing is taken from values the user could have edited.
//
// A reply is applied to the cart only when the cart version still matches the
// submit-time snapshot and this submission is still the latest; otherwise the
// reply is logged and the cart left alone.
func (s *Submitter) Submit(
	c context.Context,
	cart *store.CartStore,
	form request.Checkout,
) (Outcome, error) {
	c, span := otel.Tracer.Start(c, "CheckoutSubmitter Submit")
	defer span.End()

	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		otel.RecordError(ErrSubmissionInFlight, span)
		return Outcome{}, ErrSubmissionInFlight
	}
	defer s.state.Store(int32(StateIdle))

	seq := s.seq.Add(1)
	version := cart.Version()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutSubmitter Submit").
		Uint64(log.KeySubmissionSeq, seq).
		Uint64(log.KeyCartVersion, version).
		Logger()

	items := cart.Items()
	if len(items) == 0 {
		otel.RecordError(inErrors.ErrEmptyCart, span)
		logger.Error().Err(inErrors.ErrEmptyCart).Msg(inErrors.ErrEmptyCart.Error())
		return Outcome{}, inErrors.ErrEmptyCart
	}

	logger = logger.With().Str(log.KeyProcess, "fetching store settings").Logger()
	logger.Info().Msg("fetching store settings")
	settings, err := s.settings.Get(c)
	if err != nil {
		err = fmt.Errorf("failed fetching store settings with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Outcome{Kind: OutcomeGenericFailure, Message: defaultFailureMessage}, nil
	}
	logger.Info().Msg("fetched store settings")

	logger = logger.With().Str(log.KeyProcess, "assembling order draft").Logger()
	logger.Info().Msg("assembling order draft")
	draft := assembleDraft(cart, items, settings, form)
	logger = logger.With().Str(log.KeyTotal, draft.TotalAmount.String()).Logger()
	logger.Info().Msg("assembled order draft")

	logger = logger.With().Str(log.KeyProcess, "submitting order").Logger()
	logger.Info().Msg("submitting order")
	created, err := s.orders.Create(c, draft)
	if err != nil {
		return s.classifyFailure(c, logger, cart, seq, version, err), nil
	}
	logger = logger.With().Str(log.KeyOrderID, created.OrderId.String()).Logger()
	logger.Info().Msg("submitted order")

	if s.applies(cart, seq, version) {
		cart.Clear(c)
		logger.Info().Msg("cleared cart after successful order")
	} else {
		logger.Warn().Msg("cart changed since submission, skipping cart clear")
	}
	return Outcome{Kind: OutcomeSuccess, OrderId: created.OrderId}, nil
}

// applies reports whether a reply may still mutate the cart: the cart must be
// unchanged since the submit-time snapshot and no newer submission may exist.
func (s *Submitter) applies(cart *store.CartStore, seq uint64, version uint64) bool {
	return cart.Version() == version && s.seq.Load() == seq
}

func (s *Submitter) classifyFailure(
	c context.Context,
	logger zerolog.Logger,
	cart *store.CartStore,
	seq uint64,
	version uint64,
	err error,
) Outcome {
	orderErr := &client.OrderError{}
	if !errors.As(err, &orderErr) {
		// Transport failure or timeout: nothing to recover, surface the
		// default message and stay retryable.
		logger.Error().Err(err).Msg(err.Error())
		return Outcome{Kind: OutcomeGenericFailure, Message: defaultFailureMessage}
	}

	if len(orderErr.Fields) > 0 {
		fieldErrors := make([]FieldError, len(orderErr.Fields))
		for i, f := range orderErr.Fields {
			fieldErrors[i] = FieldError{Field: FormFieldKey(f.Field), Message: f.Message}
		}
		logger.Info().
			Str(log.KeyOutcome, string(OutcomeFieldValidation)).
			Int("fieldErrorCount", len(fieldErrors)).
			Msg("order rejected with field errors")
		return Outcome{
			Kind:              OutcomeFieldValidation,
			FieldErrors:       fieldErrors,
			FirstInvalidField: fieldErrors[0].Field,
		}
	}

	if ids, ok := ParseStaleItemIDs(orderErr.Message); ok {
		pruned := 0
		if s.applies(cart, seq, version) {
			pruned = cart.RemoveByProductIds(c, ids)
			logger.Info().
				Str(log.KeyOutcome, string(OutcomeStaleItems)).
				Int(log.KeyPrunedCount, pruned).
				Msg("pruned stale items from cart")
		} else {
			logger.Warn().Msg("cart changed since submission, skipping stale-item pruning")
		}
		return Outcome{
			Kind:        OutcomeStaleItems,
			PrunedCount: pruned,
			Message:     orderErr.Message,
		}
	}

	message := orderErr.Message
	if message == "" {
		message = defaultFailureMessage
	}
	logger.Info().
		Str(log.KeyOutcome, string(OutcomeGenericFailure)).
		Msg("order rejected")
	return Outcome{Kind: OutcomeGenericFailure, Message: message}
}

// assembleDraft recomputes every monetary field from the live cart and
// settings. Billing equals shipping under "same as billing".
func assembleDraft(
	cart *store.CartStore,
	items []store.Item,
	settings response.StoreSettings,
	form request.Checkout,
) request.CreateOrder {
	orderItems := make([]request.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = request.OrderItem{
			ProductId: item.ProductId,
			VariantId: item.VariantId,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	billing := form.ShippingAddress
	if !form.SameAsBilling && form.BillingAddress != nil {
		billing = *form.BillingAddress
	}

	coupon := cart.Coupon()
	couponCode := ""
	if coupon != nil {
		couponCode = coupon.Code
	}

	summary := pricing.Summarize(cart.TotalPrice(), settings, coupon)
	return request.CreateOrder{
		Items:           orderItems,
		ShippingAddress: form.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   form.PaymentMethod,
		Subtotal:        summary.Subtotal,
		Tax:             summary.Tax,
		ShippingCost:    summary.Shipping,
		Discount:        summary.Discount,
		TotalAmount:     summary.Total,
		CouponCode:      couponCode,
	}
}
