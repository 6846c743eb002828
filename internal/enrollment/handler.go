package enrollment

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/pkg/response"
)

// EnrollRequest is the body for POST /events/enroll.
type EnrollRequest struct {
	UserID      string  `json:"user_id" binding:"required"`
	DisplayName string  `json:"display_name"`
	InviterID   *string `json:"inviter_id"`
}

// Handler handles enrollment and identity HTTP events.
type Handler struct {
	service *Service
	store   store.Store
}

// NewHandler creates an enrollment handler.
func NewHandler(service *Service, st store.Store) *Handler {
	return &Handler{service: service, store: st}
}

// Enroll handles POST /events/enroll.
func (h *Handler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.service.Enroll(c.Request.Context(), req.UserID, req.DisplayName, req.InviterID)
	if err != nil {
		response.Internal(c, "failed to enroll user")
		return
	}
	response.OK(c, res)
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.store.Identities().Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, u)
}
