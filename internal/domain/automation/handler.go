package automation

import (
	"context"
	"log/slog"
	"net/http"

	"smsnotify/internal/common"

	"github.com/gin-gonic/gin"
)

// Enqueuer defines the contract for handing automation runs to the worker.
// Implementations live in infra/queue/.
type Enqueuer interface {
	EnqueueAutomationRun(ctx context.Context, p *RunPayload) error
}

// Handler handles HTTP requests for automation runs.
type Handler struct {
	bridge   *Bridge
	enqueuer Enqueuer
}

// NewHandler creates a new automation handler. enqueuer may be nil, in
// which case only synchronous runs are exposed.
func NewHandler(bridge *Bridge, enqueuer Enqueuer) *Handler {
	return &Handler{bridge: bridge, enqueuer: enqueuer}
}

// Run handles POST /api/v1/automation/run
func (h *Handler) Run(c *gin.Context) {
	var p RunPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	action, err := p.ResolveAction()
	if err != nil {
		common.HandleError(c, common.NewValidationError(err.Error()))
		return
	}

	result, err := h.bridge.Run(c.Request.Context(), &p.Event, action)
	if err != nil {
		slog.Error("automation run failed", "event", p.Event.Event, "error", err)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Enqueue handles POST /api/v1/automation/events
// The run happens on the worker; the response only confirms queueing.
func (h *Handler) Enqueue(c *gin.Context) {
	var p RunPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if _, err := p.ResolveAction(); err != nil {
		common.HandleError(c, common.NewValidationError(err.Error()))
		return
	}

	if err := h.enqueuer.EnqueueAutomationRun(c.Request.Context(), &p); err != nil {
		slog.Error("failed to enqueue automation run", "event", p.Event.Event, "error", err)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusAccepted, gin.H{"event": p.Event.Event, "queued": true})
}

// ListPresets handles GET /api/v1/automation/presets
func (h *Handler) ListPresets(c *gin.Context) {
	common.Success(c, http.StatusOK, Presets())
}

// RegisterRoutes registers automation routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/automation")
	g.POST("/run", h.Run)
	g.GET("/presets", h.ListPresets)
	if h.enqueuer != nil {
		g.POST("/events", h.Enqueue)
	}
}
