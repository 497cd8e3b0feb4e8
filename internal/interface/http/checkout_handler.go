package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/application"
	"github.com/easypayhq/easypay/pkg/payments"
	"github.com/easypayhq/easypay/pkg/response"
	"github.com/easypayhq/easypay/pkg/validation"
)

type CheckoutHandler struct {
	Svc    *application.CheckoutService
	Logger *logrus.Logger
}

func NewCheckoutHandler(svc *application.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{Svc: svc, Logger: logger}
}

type checkoutRequest struct {
	Username  string  `json:"username" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Currency  string  `json:"currency" binding:"required,currency"`
	Image     string  `json:"image" binding:"omitempty,url"`
	ReturnURL string  `json:"return_url" binding:"omitempty,url"`
}

// Checkout starts a single-item hosted payment session.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	url, err := h.Svc.CheckoutItem(c.Request.Context(), req.Username, application.CheckoutItemInput{
		Name:      req.Name,
		Price:     req.Price,
		Currency:  req.Currency,
		ImageURL:  req.Image,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_url": url}, "checkout session created")
}

type cartLineRequest struct {
	ItemID   int64 `json:"item_id" binding:"required"`
	Quantity int64 `json:"quantity" binding:"omitempty,gt=0"`
}

type shippingRequest struct {
	Title    string  `json:"title" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"required,currency"`
	DaysMin  int64   `json:"days_min" binding:"required,gt=0"`
	DaysMax  int64   `json:"days_max" binding:"required,gtefield=DaysMin"`
}

type checkoutCartRequest struct {
	Username string            `json:"username" binding:"required"`
	Items    []cartLineRequest `json:"items" binding:"required,min=1,dive"`
	Shipping *shippingRequest  `json:"shipping" binding:"omitempty"`
}

// CheckoutCart starts a multi-item session with an optional flat-rate
// shipping choice.
func (h *CheckoutHandler) CheckoutCart(c *gin.Context) {
	var req checkoutCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	lines := make([]application.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, application.CartLine{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	var shipping *payments.ShippingOption
	if req.Shipping != nil {
		shipping = &payments.ShippingOption{
			Title:    req.Shipping.Title,
			Price:    req.Shipping.Price,
			Currency: req.Shipping.Currency,
			DaysMin:  req.Shipping.DaysMin,
			DaysMax:  req.Shipping.DaysMax,
		}
	}

	url, err := h.Svc.CheckoutCart(c.Request.Context(), req.Username, lines, shipping)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment_url": url}, "checkout session created")
}

func (h *CheckoutHandler) writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrItemNotFound):
		response.Error[any](c, http.StatusNotFound, "catalog item not found", nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	case errors.Is(err, payments.ErrNoItems):
		response.Error[any](c, http.StatusBadRequest, "cart is empty", nil)
	default:
		h.Logger.WithError(err).Error("checkout failed")
		response.Error[any](c, http.StatusBadGateway, "payment provider error", nil)
	}
}
