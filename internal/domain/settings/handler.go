package settings

import (
	"log/slog"
	"net/http"

	"smsnotify/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for channel settings.
type Handler struct {
	binder   *Binder
	notifier Notifier
}

// NewHandler creates a new settings handler. notifier may be nil.
func NewHandler(binder *Binder, notifier Notifier) *Handler {
	return &Handler{binder: binder, notifier: notifier}
}

// Get handles GET /api/v1/settings
// Credential values are masked.
func (h *Handler) Get(c *gin.Context) {
	snapshot, err := h.binder.Current(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.Success(c, http.StatusOK, snapshot.Masked())
}

// Update handles PUT /api/v1/settings
func (h *Handler) Update(c *gin.Context) {
	var changes Snapshot
	if err := c.ShouldBindJSON(&changes); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(changes) == 0 {
		common.Error(c, http.StatusBadRequest, "no settings supplied")
		return
	}

	merged, err := h.binder.Update(c.Request.Context(), changes)
	if err != nil {
		slog.Error("settings update failed", "error", err)
		common.HandleError(c, err)
		return
	}

	h.broadcast(c)
	common.Success(c, http.StatusOK, merged.Masked())
}

// Reload handles POST /api/v1/settings/reload
func (h *Handler) Reload(c *gin.Context) {
	if err := h.binder.Reload(c.Request.Context()); err != nil {
		slog.Error("settings reload failed", "error", err)
		common.HandleError(c, err)
		return
	}
	h.broadcast(c)
	common.Success(c, http.StatusOK, gin.H{"reloaded": true})
}

// broadcast tells workers to reload. Failure is logged only; the watcher
// picks the change up on its next poll.
func (h *Handler) broadcast(c *gin.Context) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifySettingsChanged(c.Request.Context()); err != nil {
		slog.Warn("failed to broadcast settings change", "error", err)
	}
}

// RegisterRoutes registers settings routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.Get)
	rg.PUT("/settings", h.Update)
	rg.POST("/settings/reload", h.Reload)
}
