// Package referrals exposes the read-only referral queries: a user's
// discount standing and the inviter leaderboard.
package referrals

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/olimp-shop/backend/internal/discount"
	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/pkg/response"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Handler handles referral query endpoints.
type Handler struct {
	store store.Store
}

// NewHandler creates a referrals handler.
func NewHandler(st store.Store) *Handler {
	return &Handler{store: st}
}

// GetDiscount handles GET /users/:id/discount: the user's activated count
// as inviter and the matching tier.
func (h *Handler) GetDiscount(c *gin.Context) {
	userID := c.Param("id")
	activated, err := h.store.Referrals().CountActivated(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to count referrals")
		return
	}
	response.OK(c, gin.H{
		"user_id":          userID,
		"activated":        activated,
		"discount_percent": discount.Percent(activated),
	})
}

// TopInviters handles GET /referrals/top?limit=N.
func (h *Handler) TopInviters(c *gin.Context) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	list, err := h.store.Referrals().TopInviters(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "failed to load leaderboard")
		return
	}
	response.OK(c, gin.H{"inviters": list})
}
