package otp

import (
	"net/http"

	"smsnotify/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for OTP issue, verify and the sign-in gate.
type Handler struct {
	manager *Manager
	gate    *Gate
}

// NewHandler creates a new OTP handler.
func NewHandler(manager *Manager, gate *Gate) *Handler {
	return &Handler{manager: manager, gate: gate}
}

// Issue handles POST /api/v1/otp/issue
// The code itself is only ever sent by SMS.
func (h *Handler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	challenge, err := h.manager.Issue(c.Request.Context(), req.Subject)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusAccepted, &IssueResponse{
		Subject:     challenge.Subject,
		ExpiresAt:   challenge.ExpiresAt,
		MaxAttempts: challenge.MaxAttempts,
	})
}

// Verify handles POST /api/v1/otp/verify
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.manager.Verify(c.Request.Context(), req.Subject, req.Code); err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, gin.H{"verified": true})
}

// PreAuthenticate handles POST /api/v1/auth/pre-authenticate
// Called by the host sign-in flow before it checks the password.
func (h *Handler) PreAuthenticate(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.gate.Authenticate(c.Request.Context(), creds); err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, gin.H{"allowed": true})
}

// RegisterRoutes registers OTP routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/otp/issue", h.Issue)
	rg.POST("/otp/verify", h.Verify)
	if h.gate != nil {
		rg.POST("/auth/pre-authenticate", h.PreAuthenticate)
	}
}
