package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easypayhq/easypay/internal/container"
	handlers "github.com/easypayhq/easypay/internal/interface/http"
	"github.com/easypayhq/easypay/internal/interface/middleware"
	"github.com/easypayhq/easypay/pkg/helpers"
)

// AccountModule wires registration, login and account mutation routes.
// Mutations authenticate with the current password in the body; only the
// session supplements (logout, profile) sit behind the auth middleware.
type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	mutationLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	account := rg.Group("/account")
	account.Use(mutationLimiter)
	{
		account.PUT("/email", m.Handler.ChangeEmail)
		account.PUT("/password", m.Handler.ChangePassword)
		account.PUT("/username", m.Handler.ChangeUsername)
		account.PUT("/provider-key", m.Handler.ChangeProviderKey)
	}

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUsername(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.Profile)
	}
}
