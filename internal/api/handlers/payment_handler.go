package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lightmyfireadmin/plombipro-app/internal/api/middleware"
	"github.com/lightmyfireadmin/plombipro-app/internal/services"
)

// PaymentHandler serves the Stripe relays.
type PaymentHandler struct {
	paymentService services.IPaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.IPaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentIntent handles POST /functions/v1/create-payment-intent.
// Requires the auth middleware.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var in services.CreatePaymentIntentInput
	if !bindBody(c, &in) {
		return
	}

	pi, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), &in)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"client_secret": pi.ClientSecret, "payment_intent_id": pi.ID})
}

// CreateConnectAccount handles POST /functions/v1/create-stripe-connect-account.
func (h *PaymentHandler) CreateConnectAccount(c *gin.Context) {
	var in services.ConnectAccountInput
	if !bindBody(c, &in) {
		return
	}

	url, err := h.paymentService.CreateConnectAccount(c.Request.Context(), &in)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"url": url})
}

// RefundPayment handles POST /functions/v1/refund-payment.
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var in struct {
		PaymentID string `json:"payment_id"`
	}
	if !bindBody(c, &in) {
		return
	}

	refundID, err := h.paymentService.Refund(c.Request.Context(), in.PaymentID)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"refund_id": refundID})
}
