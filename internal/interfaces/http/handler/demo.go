package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaffiliate "github.com/nexusgg/partner-portal/internal/application/affiliate"
	appagent "github.com/nexusgg/partner-portal/internal/application/agent"
	"github.com/nexusgg/partner-portal/internal/demo"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
)

// DemoHandler exposes the live activity feed and the data-seeding endpoints.
// The router mounts it only when demo mode is enabled.
type DemoHandler struct {
	BaseHandler
	feed       *demo.Feed
	agents     *appagent.PortalService
	affiliates *appaffiliate.PortalService
	sessions   session.Store
	logger     *zap.Logger
}

// NewDemoHandler creates the demo handler.
func NewDemoHandler(
	feed *demo.Feed,
	agents *appagent.PortalService,
	affiliates *appaffiliate.PortalService,
	sessions session.Store,
	logger *zap.Logger,
) *DemoHandler {
	return &DemoHandler{
		feed:       feed,
		agents:     agents,
		affiliates: affiliates,
		sessions:   sessions,
		logger:     logger,
	}
}

// RegisterRoutes mounts the demo endpoints. The activity feed is public; the
// seed endpoints require an authenticated session.
func (h *DemoHandler) RegisterRoutes(rg *gin.RouterGroup, authenticated gin.HandlerFunc) {
	d := rg.Group("/demo")
	{
		d.GET("/activity", h.Activity)
		d.POST("/seed/wallet", authenticated, h.SeedWallet)
		d.POST("/seed/campaign", authenticated, h.SeedCampaign)
	}
}

// Activity returns the recent feed entries, newest first.
func (h *DemoHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	h.Success(c, h.feed.Recent(limit))
}

// SeedWallet credits demo funds to the agent wallet. The seed identifier is
// remembered so repeat calls top up the same demo balance.
func (h *DemoHandler) SeedWallet(c *gin.Context) {
	seed := h.sessions.Read().TestWalletSeed
	if seed == "" {
		seed = uuid.NewString()
		if err := h.sessions.SetWalletSeed(seed); err != nil {
			h.logger.Warn("Failed to persist wallet seed", zap.Error(err))
		}
	}

	balance, err := h.agents.SeedWallet(c.Request.Context(), seed)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, balance)
}

// SeedCampaign generates demo clicks and conversions for the affiliate.
func (h *DemoHandler) SeedCampaign(c *gin.Context) {
	if err := h.affiliates.SeedCampaignData(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"seeded": true})
}
