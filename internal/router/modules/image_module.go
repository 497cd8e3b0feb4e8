package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easypayhq/easypay/internal/container"
	handlers "github.com/easypayhq/easypay/internal/interface/http"
	"github.com/easypayhq/easypay/internal/interface/middleware"
)

// ImageModule wires product image storage routes.
type ImageModule struct {
	Handler *handlers.ImageHandler
}

func NewImageModule(h *handlers.ImageHandler) *ImageModule {
	return &ImageModule{Handler: h}
}

func (m *ImageModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	images := rg.Group("/images")
	images.Use(limiter)
	{
		images.POST("", m.Handler.Upload)
		images.GET("", m.Handler.List)
		images.DELETE("", m.Handler.Delete)
	}
}
