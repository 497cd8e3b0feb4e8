package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/application"
	"github.com/easypayhq/easypay/internal/domain/entity"
	"github.com/easypayhq/easypay/pkg/helpers"
	"github.com/easypayhq/easypay/pkg/response"
	"github.com/easypayhq/easypay/pkg/validation"
)

type AccountHandler struct {
	Svc     *application.AccountService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// userPayload is the wire shape of an account in responses. Secrets never
// leave the service layer.
func userPayload(a *entity.Account) gin.H {
	return gin.H{"email": a.Email, "username": a.Username}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,alphanum,min=3,max=32"`
	Password    string `json:"password" binding:"required,pwd"`
	ProviderKey string `json:"provider_key" binding:"required"`
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		ProviderKey: req.ProviderKey,
	})
	if err != nil {
		if errors.Is(err, application.ErrDuplicateUsername) {
			response.Error[any](c, http.StatusConflict, "username already taken", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": userPayload(a)}, "account registered")
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	a, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(a)}, "login successful")
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		h.Logger.WithError(err).Error("refresh failed")
		response.Error[any](c, http.StatusInternalServerError, "refresh failed", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed")
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if name := c.GetString("username"); name != "" {
		_ = h.Svc.Logout(c.Request.Context(), name)
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

func (h *AccountHandler) Profile(c *gin.Context) {
	a, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("username"))
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile load failed")
		response.Error[any](c, http.StatusInternalServerError, "profile load failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(a)}, "profile")
}

type changeEmailRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	NewEmail string `json:"new_email" binding:"required,email"`
}

func (h *AccountHandler) ChangeEmail(c *gin.Context) {
	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangeEmail(c.Request.Context(), req.Username, req.Password, req.NewEmail); err != nil {
		h.writeMutationError(c, err)
		return
	}
	a, err := h.Svc.GetProfile(c.Request.Context(), req.Username)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "account reload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(a)}, "email updated")
}

type changePasswordRequest struct {
	Username        string `json:"username" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeMutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true}, "password updated")
}

type changeUsernameRequest struct {
	CurrentUsername string `json:"current_username" binding:"required"`
	NewUsername     string `json:"new_username" binding:"required,alphanum,min=3,max=32"`
	Password        string `json:"password" binding:"required"`
}

func (h *AccountHandler) ChangeUsername(c *gin.Context) {
	var req changeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangeUsername(c.Request.Context(), req.CurrentUsername, req.Password, req.NewUsername); err != nil {
		if errors.Is(err, application.ErrDuplicateUsername) {
			response.Error[any](c, http.StatusConflict, "username already taken", nil)
			return
		}
		h.writeMutationError(c, err)
		return
	}
	// the old session died with the old name
	h.Cookies.Clear(c)
	a, err := h.Svc.GetProfile(c.Request.Context(), req.NewUsername)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "account reload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(a)}, "username updated")
}

type changeProviderKeyRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	ProviderKey string `json:"provider_key" binding:"required"`
}

func (h *AccountHandler) ChangeProviderKey(c *gin.Context) {
	var req changeProviderKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangeProviderKey(c.Request.Context(), req.Username, req.Password, req.ProviderKey); err != nil {
		h.writeMutationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true}, "provider key updated")
}

func (h *AccountHandler) writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	default:
		h.Logger.WithError(err).Error("account mutation failed")
		response.Error[any](c, http.StatusInternalServerError, "account update failed", nil)
	}
}
