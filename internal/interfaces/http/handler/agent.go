package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appagent "github.com/nexusgg/partner-portal/internal/application/agent"
	"github.com/nexusgg/partner-portal/internal/domain/shared"
	"github.com/nexusgg/partner-portal/internal/platform"
)

// AgentHandler exposes the agent dashboard endpoints.
type AgentHandler struct {
	BaseHandler
	portal *appagent.PortalService
	logger *zap.Logger
}

// NewAgentHandler creates the agent handler.
func NewAgentHandler(portal *appagent.PortalService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{portal: portal, logger: logger}
}

// RegisterRoutes mounts the agent endpoints.
func (h *AgentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	agent := rg.Group("/agent")
	{
		agent.GET("/stats", h.Stats)
		agent.GET("/analytics/revenue", h.RevenueAnalytics)
		agent.GET("/wallet", h.Wallet)
		agent.GET("/users", h.Users)
		agent.POST("/users", h.AddUser)
		agent.POST("/users/:id/toggle", h.ToggleUser)
		agent.GET("/commissions", h.Commissions)
		agent.GET("/commissions/export", h.ExportCommissions)
		agent.GET("/payouts", h.Payouts)
		agent.POST("/payouts", h.RequestPayout)
		agent.POST("/payouts/:id/approve", h.ApprovePayout)
		agent.POST("/payouts/:id/reject", h.RejectPayout)
	}
}

// Stats returns the dashboard headline numbers.
func (h *AgentHandler) Stats(c *gin.Context) {
	stats, err := h.portal.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, stats)
}

// RevenueAnalytics returns the revenue chart series.
func (h *AgentHandler) RevenueAnalytics(c *gin.Context) {
	period := c.DefaultQuery("period", "7d")
	points, err := h.portal.RevenueAnalytics(c.Request.Context(), period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, points)
}

// Wallet returns the commission wallet balance.
func (h *AgentHandler) Wallet(c *gin.Context) {
	balance, err := h.portal.Wallet(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, balance)
}

// Users returns one page of referred players.
func (h *AgentHandler) Users(c *gin.Context) {
	page := pageFromQuery(c)
	list, err := h.portal.Users(c.Request.Context(), page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, list.Items, list.Meta.Total, list.Meta.Page, list.Meta.PageSize)
}

// AddUser registers a player under this agent.
func (h *AgentHandler) AddUser(c *gin.Context) {
	var in platform.AddUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid user payload.")
		return
	}

	user, err := h.portal.AddUser(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, user)
}

// ToggleUser flips a player's active flag.
func (h *AgentHandler) ToggleUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user id.")
		return
	}

	user, err := h.portal.ToggleUser(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, user)
}

// Commissions returns one page of the commission ledger.
func (h *AgentHandler) Commissions(c *gin.Context) {
	page := pageFromQuery(c)
	list, err := h.portal.Commissions(c.Request.Context(), page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, list.Items, list.Meta.Total, list.Meta.Page, list.Meta.PageSize)
}

// ExportCommissions streams the CSV export.
func (h *AgentHandler) ExportCommissions(c *gin.Context) {
	data, err := h.portal.ExportCommissionsCSV(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="commissions.csv"`)
	c.Data(200, "text/csv", data)
}

// Payouts returns the payout request history.
func (h *AgentHandler) Payouts(c *gin.Context) {
	payouts, err := h.portal.Payouts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payouts)
}

// RequestPayout submits a withdrawal request.
func (h *AgentHandler) RequestPayout(c *gin.Context) {
	var in platform.PayoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid payout payload.")
		return
	}

	payout, err := h.portal.RequestPayout(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payout)
}

// ApprovePayout approves a pending payout request.
func (h *AgentHandler) ApprovePayout(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payout id.")
		return
	}

	payout, err := h.portal.ApprovePayout(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payout)
}

// RejectPayout rejects a pending payout request.
func (h *AgentHandler) RejectPayout(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payout id.")
		return
	}

	var in platform.RejectPayoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid rejection payload.")
		return
	}

	payout, err := h.portal.RejectPayout(c.Request.Context(), id, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payout)
}

// pageFromQuery reads pagination parameters, clamped to sane bounds.
func pageFromQuery(c *gin.Context) shared.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return shared.Page{Number: page, Size: size}.Normalize()
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
