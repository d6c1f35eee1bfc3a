package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/swadeshika/storefront/internal/common"
	inErrors "github.com/swadeshika/storefront/internal/errors"
	inHttp "github.com/swadeshika/storefront/internal/http"
	"github.com/swadeshika/storefront/internal/log"
	"github.com/swadeshika/storefront/internal/otel"
	"github.com/swadeshika/storefront/storefront/internal/checkout"
	"github.com/swadeshika/storefront/storefront/internal/service"
	"github.com/swadeshika/storefront/storefront/pkg/request"
)

type CheckoutController struct {
	service *service.StorefrontService
}

func AttachCheckoutController(router *mux.Router, service *service.StorefrontService) {
	controller := CheckoutController{service: service}

	sub := router.PathPrefix("/checkout").Subrouter()
	sub.HandleFunc("", controller.FindDefaults).Methods(http.MethodGet)
	sub.HandleFunc("", controller.PlaceOrder).Methods(http.MethodPost)
}

// FindDefaults returns the saved address used to prefill the checkout form,
// or no data when the customer has none.
func (t CheckoutController) FindDefaults(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController FindDefaults")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController FindDefaults").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting sessionId from jwtToken").Logger()
	sessionID, err := common.SessionIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting sessionId from jwtToken with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionID).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding default address").Logger()
	logger.Info().Msg("finding default address")
	c = logger.WithContext(c)
	address, err := t.service.CheckoutDefaults(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed finding default address with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found default address")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found checkout defaults",
		"data": map[string]interface{}{
			"address": address,
		},
	})
}

func (t CheckoutController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController PlaceOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController PlaceOrder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "getting sessionId from jwtToken").Logger()
	sessionID, err := common.SessionIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting sessionId from jwtToken with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionID).Logger()

	logger = logger.With().Str(log.KeyProcess, "placing order").Logger()
	logger.Info().Msg("placing order")
	c = logger.WithContext(c)
	outcome, err := t.service.Checkout(c, sessionID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed placing order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			statusCode = http.StatusConflict
		} else if errors.Is(err, inErrors.ErrEmptyCart) {
			statusCode = http.StatusBadRequest
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOutcome, string(outcome.Kind)).Logger()
	logger.Info().Msg("placed order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     outcomeStatus(outcome.Kind),
		"statusCode": outcomeStatusCode(outcome.Kind),
		"message":    outcomeMessage(outcome),
		"data": map[string]interface{}{
			"outcome": outcome,
		},
	})
}

func outcomeStatus(kind checkout.OutcomeKind) string {
	if kind == checkout.OutcomeSuccess {
		return "success"
	}
	return "failed"
}

func outcomeStatusCode(kind checkout.OutcomeKind) int {
	switch kind {
	case checkout.OutcomeSuccess:
		return http.StatusCreated
	case checkout.OutcomeFieldValidation:
		return http.StatusBadRequest
	case checkout.OutcomeStaleItems:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func outcomeMessage(outcome checkout.Outcome) string {
	switch outcome.Kind {
	case checkout.OutcomeSuccess:
		return fmt.Sprintf("orderId=%s placed", outcome.OrderId.String())
	case checkout.OutcomeFieldValidation:
		return "order rejected with field errors"
	case checkout.OutcomeStaleItems:
		return outcome.Message
	default:
		return outcome.Message
	}
}
