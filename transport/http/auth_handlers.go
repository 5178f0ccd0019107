package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketsport/rinkside/core"
	"github.com/marketsport/rinkside/metrics"
	"github.com/marketsport/rinkside/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	metrics     *metrics.ServerMetrics
	logger      *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, m *metrics.ServerMetrics, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		metrics:     m,
		logger:      logger,
	}
}

// Nonce issues a fresh sign-in nonce for an address.
func (h *AuthHandlers) Nonce(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "address is required"})
		return
	}

	nonce, err := h.authService.CreateNonce(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid address"})
			return
		}
		h.logger.Error("failed to create nonce", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to create nonce"})
		return
	}

	if h.metrics != nil {
		h.metrics.NoncesIssued.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Authenticate verifies a signed message and issues an access token.
func (h *AuthHandlers) Authenticate(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	accessToken, err := h.authService.Authenticate(c.Request.Context(), req.Address, req.Signature, req.Message)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordAuthExchange("failure")
		}

		statusCode := http.StatusUnauthorized
		detail := "Authentication failed"
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			statusCode = http.StatusBadRequest
			detail = "invalid address"
		case errors.Is(err, core.ErrNonceNotFound):
			detail = "nonce not found or expired"
		case errors.Is(err, core.ErrNonceMismatch):
			detail = "nonce mismatch"
		case errors.Is(err, core.ErrInvalidSignature):
			detail = "invalid signature"
		}

		c.JSON(statusCode, gin.H{"detail": detail})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAuthExchange("success")
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// Logout revokes the bearer token for the remainder of its lifetime.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, core.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid token"})
			return
		}
		h.logger.Error("logout failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to logout"})
		return
	}

	if h.metrics != nil {
		h.metrics.Logouts.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	address, exists := c.Get("userAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}
