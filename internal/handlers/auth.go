package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: services.NewAuthService(db, &cfg.JWT)}
}

// Obtain exchanges credentials for an access/refresh pair
// POST /api/token
func (h *AuthHandler) Obtain(c *gin.Context) {
	var req services.TokenRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	pair, err := h.authService.Obtain(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pair)
}

// Refresh rotates a refresh token
// POST /api/token/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.Refresh, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pair)
}

// Revoke invalidates a refresh token
// POST /api/token/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req services.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), req.Refresh); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
