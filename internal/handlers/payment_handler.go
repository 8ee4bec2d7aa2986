package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"trolley/internal/services"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Payment-Signature"

type PaymentHandler struct {
	paymentService services.PaymentService
	webhookSecret  string
}

func NewPaymentHandler(paymentService services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, webhookSecret: webhookSecret}
}

type paymentWebhookPayload struct {
	ID     string `json:"id"` // provider transaction id
	Result struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"result"`
	MerchantTransactionID string `json:"merchantTransactionId"` // our order id
}

// POST /api/webhooks/payment
//
// The payment gateway calls this after a transaction completes. Delivery is
// at-least-once, so the confirm path must be a no-op on redelivery. The
// gateway never retries based on our body; it only needs "received".
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if h.webhookSecret != "" && !h.verifySignature(body, c.GetHeader(signatureHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload paymentWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if payload.MerchantTransactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing merchantTransactionId"})
		return
	}

	if services.IsPaymentSuccessCode(payload.Result.Code) {
		order, already, err := h.paymentService.ConfirmPayment(c.Request.Context(), payload.MerchantTransactionID, payload.ID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
			return
		}
		if already {
			c.JSON(http.StatusOK, gin.H{"received": true, "order_id": order.ID, "already_processed": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true, "order_id": order.ID})
		return
	}

	if err := h.paymentService.FailPayment(c.Request.Context(), payload.MerchantTransactionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "status": "payment_failed"})
}

func (h *PaymentHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
