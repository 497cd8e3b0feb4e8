package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/pkg/payments"
	"github.com/easypayhq/easypay/pkg/response"
)

// maxWebhookBody caps the raw payload read for signature verification.
const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	Secret string
	Logger *logrus.Logger
}

func NewWebhookHandler(secret string, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{Secret: secret, Logger: logger}
}

// Receive verifies the provider signature over the raw body and acknowledges
// the event. Completed checkouts are logged; every other event type is
// accepted and ignored so the provider stops retrying.
func (h *WebhookHandler) Receive(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable payload", nil)
		return
	}

	event, err := payments.VerifyEvent(payload, c.GetHeader("Stripe-Signature"), h.Secret)
	if err != nil {
		h.Logger.WithError(err).Warn("webhook signature verification failed")
		response.Error[any](c, http.StatusBadRequest, "invalid signature", nil)
		return
	}

	if string(event.Type) == payments.EventCheckoutCompleted {
		var sess struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sess); err == nil {
			h.Logger.WithFields(logrus.Fields{
				"session_id": sess.ID,
				"username":   sess.Metadata["username"],
				"item":       sess.Metadata["name"],
			}).Info("checkout completed")
		}
	}

	response.Success(c, http.StatusOK, gin.H{"received": true}, "event received")
}
