package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easypayhq/easypay/internal/container"
	handlers "github.com/easypayhq/easypay/internal/interface/http"
	"github.com/easypayhq/easypay/internal/interface/middleware"
)

// CheckoutModule wires the hosted payment session routes. The webhook is
// registered here too; it is signature-verified, not rate-limited, so the
// provider's retries never bounce.
type CheckoutModule struct {
	Checkout *handlers.CheckoutHandler
	Webhook  *handlers.WebhookHandler
}

func NewCheckoutModule(checkout *handlers.CheckoutHandler, webhook *handlers.WebhookHandler) *CheckoutModule {
	return &CheckoutModule{Checkout: checkout, Webhook: webhook}
}

func (m *CheckoutModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/checkout", limiter, m.Checkout.Checkout)
	rg.POST("/checkout/cart", limiter, m.Checkout.CheckoutCart)
	rg.POST("/webhook", m.Webhook.Receive)
}
