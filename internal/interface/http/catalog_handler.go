package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/application"
	"github.com/easypayhq/easypay/internal/domain/entity"
	"github.com/easypayhq/easypay/pkg/response"
	"github.com/easypayhq/easypay/pkg/validation"
)

type CatalogHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

func catalogPayload(items []entity.CatalogItem) gin.H {
	out := make([]gin.H, 0, len(items))
	for _, it := range items {
		out = append(out, gin.H{
			"id":       it.ID,
			"name":     it.Name,
			"price":    it.Price,
			"currency": it.Currency,
			"image":    it.ImageURL,
		})
	}
	return gin.H{"catalog": out}
}

type addItemRequest struct {
	Username string  `json:"username" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"required,currency"`
	Image    string  `json:"image" binding:"omitempty,url"`
}

func (h *CatalogHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	items, err := h.Svc.AddItem(c.Request.Context(), req.Username, application.AddItemInput{
		Name:     req.Name,
		Price:    req.Price,
		Currency: req.Currency,
		ImageURL: req.Image,
	})
	if err != nil {
		h.Logger.WithError(err).Error("catalog insert failed")
		response.Error[any](c, http.StatusInternalServerError, "catalog update failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, catalogPayload(items), "item added")
}

type listCatalogRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *CatalogHandler) List(c *gin.Context) {
	var req listCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	items, err := h.Svc.List(c.Request.Context(), req.Username)
	if err != nil {
		h.Logger.WithError(err).Error("catalog list failed")
		response.Error[any](c, http.StatusInternalServerError, "catalog fetch failed", nil)
		return
	}
	response.Success(c, http.StatusOK, catalogPayload(items), "catalog")
}

type deleteItemRequest struct {
	ID       int64  `json:"id" binding:"required"`
	Username string `json:"username" binding:"required"`
}

func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	var req deleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	items, deleted, err := h.Svc.DeleteItem(c.Request.Context(), req.Username, req.ID)
	if err != nil {
		h.Logger.WithError(err).Error("catalog delete failed")
		response.Error[any](c, http.StatusInternalServerError, "catalog update failed", nil)
		return
	}
	if !deleted {
		// no matching row; the caller still gets the current catalog
		response.Fail(c, http.StatusOK, catalogPayload(items), "catalog item not found")
		return
	}
	response.Success(c, http.StatusOK, catalogPayload(items), "item deleted")
}

func (h *CatalogHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("catalog search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": hits}, "search results")
}
