package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/swiftcheck/backend/pkg/response"
	"github.com/swiftcheck/backend/pkg/utils"
)

// LoginRequest is the body for POST /admin/login.
type LoginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// Handler handles the admin PIN login. The PIN is compared against a bcrypt
// hash server-side and exchanged for a session token; the PIN itself never
// lives in client storage.
type Handler struct {
	jwt     *JWTService
	pinHash string
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(jwt *JWTService, pinHash string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{jwt: jwt, pinHash: pinHash, logger: logger}
}

// Login handles POST /admin/login. Exchanges the admin PIN for a session JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "pin required")
		return
	}
	if !utils.CheckSecret(req.PIN, h.pinHash) {
		response.Unauthorized(c, "invalid pin")
		return
	}
	token, err := h.jwt.Generate(RoleAdmin)
	if err != nil {
		h.logger.Error("generate session token failed", zap.Error(err))
		response.Internal(c, "failed to create session")
		return
	}
	response.OK(c, gin.H{"token": token, "role": RoleAdmin})
}
