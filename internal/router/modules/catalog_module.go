package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easypayhq/easypay/internal/container"
	handlers "github.com/easypayhq/easypay/internal/interface/http"
	"github.com/easypayhq/easypay/internal/interface/middleware"
)

// CatalogModule wires listing management and search routes.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
}

func NewCatalogModule(h *handlers.CatalogHandler) *CatalogModule {
	return &CatalogModule{Handler: h}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	catalog := rg.Group("/catalog")
	catalog.Use(limiter)
	{
		catalog.POST("", m.Handler.List)
		catalog.POST("/items", m.Handler.AddItem)
		catalog.DELETE("/items", m.Handler.DeleteItem)
		catalog.GET("/search", m.Handler.Search)
	}
}
