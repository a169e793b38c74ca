package notification

import (
	"fmt"
	"log/slog"
	"net/http"

	"smsnotify/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the notification domain.
type Handler struct {
	dispatcher *Dispatcher
	templates  TemplateCatalog
	logs       DeliveryLogStore
}

// NewHandler creates a new notification handler.
func NewHandler(dispatcher *Dispatcher, templates TemplateCatalog, logs DeliveryLogStore) *Handler {
	return &Handler{dispatcher: dispatcher, templates: templates, logs: logs}
}

// Dispatch handles POST /api/v1/dispatch
// Sends synchronously; a provider failure still returns 200 with success=false.
func (h *Handler) Dispatch(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), &req)
	if err != nil {
		slog.Error("dispatch failed",
			"error", err,
			"template", req.TemplateID,
			"channel", req.Channel,
			"to", req.To,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListChannels handles GET /api/v1/channels
// With ?enabled=true only channels available for dispatch are returned.
func (h *Handler) ListChannels(c *gin.Context) {
	if c.Query("enabled") == "true" {
		common.Success(c, http.StatusOK, h.dispatcher.EnabledChannels())
		return
	}
	common.Success(c, http.StatusOK, h.dispatcher.Channels())
}

// ListTemplates handles GET /api/v1/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	common.Success(c, http.StatusOK, h.templates.Templates())
}

// GetDelivery handles GET /api/v1/deliveries/:id
func (h *Handler) GetDelivery(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.logs.GetByID(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, fmt.Errorf("fetching delivery: %w", err))
		return
	}
	if entry == nil {
		common.HandleError(c, common.NewNotFoundError("delivery", id))
		return
	}

	common.Success(c, http.StatusOK, entry)
}

// ListDeliveries handles GET /api/v1/deliveries
func (h *Handler) ListDeliveries(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}
	filter.Normalize()

	entries, total, err := h.logs.List(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, fmt.Errorf("listing deliveries: %w", err))
		return
	}

	common.Success(c, http.StatusOK, &ListResponse{
		Deliveries: entries,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
}

// RegisterRoutes registers notification routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/dispatch", h.Dispatch)
	rg.GET("/channels", h.ListChannels)
	rg.GET("/templates", h.ListTemplates)
	if h.logs != nil {
		rg.GET("/deliveries", h.ListDeliveries)
		rg.GET("/deliveries/:id", h.GetDelivery)
	}
}
