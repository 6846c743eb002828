package orders

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/pkg/response"
)

// SubmitRequest is the body for POST /events/orders.
type SubmitRequest struct {
	UserID  string              `json:"user_id" binding:"required"`
	Payload models.OrderPayload `json:"payload" binding:"required"`
}

// ActionRequest is the body for POST /orders/:id/action.
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Handler handles order HTTP events.
type Handler struct {
	service *Service
	store   store.Store
}

// NewHandler creates an orders handler.
func NewHandler(service *Service, st store.Store) *Handler {
	return &Handler{service: service, store: st}
}

// Submit handles POST /events/orders.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.service.Submit(c.Request.Context(), req.UserID, req.Payload)
	if errors.Is(err, ErrRejected) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.Internal(c, "failed to submit order")
		return
	}
	response.Created(c, res)
}

// Action handles POST /orders/:id/action (manager accept/reject).
func (h *Handler) Action(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.service.Apply(c.Request.Context(), orderID, req.Action)
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(c, "order not found")
		return
	}
	if errors.Is(err, ErrRejected) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.Internal(c, "failed to apply action")
		return
	}
	response.OK(c, res)
}

// Get handles GET /orders/:id.
func (h *Handler) Get(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	o, err := h.store.Orders().Get(c.Request.Context(), orderID)
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(c, "order not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load order")
		return
	}
	response.OK(c, o)
}
