package auth

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/olimp-shop/backend/pkg/response"
)

// TokenRequest is the body for POST /auth/token.
type TokenRequest struct {
	Key string `json:"key" binding:"required"`
}

// Handler exchanges static API keys for role-scoped service tokens.
type Handler struct {
	jwt        *JWTService
	routerKey  string
	managerKey string
	logger     *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(jwt *JWTService, routerKey, managerKey string, logger *zap.Logger) *Handler {
	return &Handler{jwt: jwt, routerKey: routerKey, managerKey: managerKey, logger: logger}
}

// Token handles POST /auth/token.
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := ""
	switch {
	case keyMatches(req.Key, h.routerKey):
		role = RoleRouter
	case keyMatches(req.Key, h.managerKey):
		role = RoleManager
	default:
		response.Unauthorized(c, "unknown api key")
		return
	}

	token, err := h.jwt.Generate(role)
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}
	response.OK(c, gin.H{"token": token, "role": role})
}

func keyMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
