package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaffiliate "github.com/nexusgg/partner-portal/internal/application/affiliate"
	"github.com/nexusgg/partner-portal/internal/platform"
)

// AffiliateHandler exposes the affiliate dashboard endpoints.
type AffiliateHandler struct {
	BaseHandler
	portal *appaffiliate.PortalService
	logger *zap.Logger
}

// NewAffiliateHandler creates the affiliate handler.
func NewAffiliateHandler(portal *appaffiliate.PortalService, logger *zap.Logger) *AffiliateHandler {
	return &AffiliateHandler{portal: portal, logger: logger}
}

// RegisterRoutes mounts the affiliate endpoints.
func (h *AffiliateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	affiliate := rg.Group("/affiliate")
	{
		affiliate.GET("/stats", h.Stats)
		affiliate.GET("/analytics/performance", h.Performance)
		affiliate.GET("/links", h.Links)
		affiliate.POST("/links", h.CreateLink)
		affiliate.DELETE("/links/:id", h.DeleteLink)
		affiliate.GET("/wallet", h.Wallet)
		affiliate.GET("/payouts", h.Payouts)
		affiliate.POST("/payouts", h.RequestPayout)
		affiliate.POST("/payouts/:id/approve", h.ApprovePayout)
		affiliate.POST("/payouts/:id/reject", h.RejectPayout)
	}
}

// Stats returns the dashboard headline numbers.
func (h *AffiliateHandler) Stats(c *gin.Context) {
	stats, err := h.portal.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, stats)
}

// Performance returns the click and conversion chart series.
func (h *AffiliateHandler) Performance(c *gin.Context) {
	period := c.DefaultQuery("period", "7d")
	points, err := h.portal.Performance(c.Request.Context(), period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, points)
}

// Links returns the affiliate's tracking links.
func (h *AffiliateHandler) Links(c *gin.Context) {
	links, err := h.portal.Links(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, links)
}

// CreateLink mints a tracking link for a campaign.
func (h *AffiliateHandler) CreateLink(c *gin.Context) {
	var in platform.CreateLinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid link payload.")
		return
	}

	link, err := h.portal.CreateLink(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, link)
}

// DeleteLink removes a tracking link.
func (h *AffiliateHandler) DeleteLink(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.BadRequest(c, "Invalid link id.")
		return
	}

	if err := h.portal.DeleteLink(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": true})
}

// Wallet returns the affiliate wallet balance.
func (h *AffiliateHandler) Wallet(c *gin.Context) {
	balance, err := h.portal.Wallet(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, balance)
}

// Payouts returns the payout request history.
func (h *AffiliateHandler) Payouts(c *gin.Context) {
	payouts, err := h.portal.Payouts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payouts)
}

// RequestPayout submits a withdrawal request.
func (h *AffiliateHandler) RequestPayout(c *gin.Context) {
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
func (h *AffiliateHandler) ApprovePayout(c *gin.Context) {
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
func (h *AffiliateHandler) RejectPayout(c *gin.Context) {
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
