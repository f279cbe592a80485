package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nyota-loans/ms-go-payments/app/entity"
	"github.com/nyota-loans/ms-go-payments/app/factory"
	"github.com/nyota-loans/ms-go-payments/app/mapper"
	"github.com/nyota-loans/ms-go-payments/app/provider"
	"github.com/nyota-loans/ms-go-payments/app/service"
	"github.com/nyota-loans/ms-go-payments/app/stream"
	"github.com/nyota-loans/ms-go-payments/app/types"
)

const maxCallbackBodyBytes = 64 * 1024

type PaymentController struct {
	paymentService *service.PaymentService
	hub            *stream.Hub
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService, hub *stream.Hub) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		hub:            hub,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) InitiateStkPush(ctx echo.Context) error {
	req, err := types.NewInitiateStkPushRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payment, err := c.paymentService.InitiatePayment(ctx.Request().Context(), req)
	if err != nil {
		var gatewayErr *provider.GatewayError
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidPhoneNumber):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.As(err, &gatewayErr):
			return c.writeError(ctx, http.StatusBadRequest, gatewayErr.Message)
		case errors.Is(err, service.ErrNotConfigured):
			factory.LoggerWithContext(c.logger, ctx).Error("Payment gateway credentials missing")
			return c.writeError(ctx, http.StatusInternalServerError, "Payment service not configured")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Initiate STK push failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	resp := &types.StkPushResponse{
		Success:           true,
		Message:           "STK push initiated",
		ExternalReference: payment.ExternalReference,
	}
	if payment.CheckoutRequestID != nil {
		resp.CheckoutRequestId = *payment.CheckoutRequestID
	}

	return ctx.JSON(http.StatusOK, resp)
}

// GatewayCallback accepts the asynchronous webhook from the payment gateway.
// Unmatched callbacks are answered 200 on purpose: a 4xx would make the
// gateway retry a payload it will never send correctly.
func (c *PaymentController) GatewayCallback(ctx echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxCallbackBodyBytes))
	if err != nil {
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	status, err := c.paymentService.HandleGatewayCallback(ctx.Request().Context(), body)
	if err != nil {
		if errors.Is(err, service.ErrCallbackUnmatched) {
			return ctx.JSON(http.StatusOK, &types.CallbackResponse{
				Success: false,
				Message: "no matching payment for callback",
			})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Gateway callback processing failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.CallbackResponse{Success: true, Status: status})
}

func (c *PaymentController) GetPayment(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payment, err := c.paymentService.GetPayment(ctx.Request().Context(), req.ExternalReference)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(payment)})
}

// StreamPaymentEvents serves the subscription variant of the waiter contract:
// an SSE stream that emits the current record immediately, then one event per
// status transition, closing once a terminal status has been delivered.
func (c *PaymentController) StreamPaymentEvents(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	// Subscribe before the snapshot read so a transition landing between the
	// two cannot be missed.
	updates, cancel := c.hub.Subscribe(req.ExternalReference)
	defer cancel()

	payment, err := c.paymentService.GetPayment(ctx.Request().Context(), req.ExternalReference)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Stream payment events failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	snapshot := stream.StatusUpdate{
		ExternalReference: payment.ExternalReference,
		Status:            payment.Status,
	}
	if err := writeSSEEvent(resp, snapshot); err != nil {
		return nil
	}
	if entity.TerminalStatus(snapshot.Status) {
		return nil
	}

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeSSEEvent(resp, update); err != nil {
				return nil
			}
			if entity.TerminalStatus(update.Status) {
				return nil
			}
		}
	}
}

func (c *PaymentController) ListFees(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, mapper.FeeScheduleToResponse(service.FeeSchedule()))
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Success: false, Message: message})
}

func writeSSEEvent(resp *echo.Response, update stream.StatusUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
