package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/nexusgg/partner-portal/internal/application/identity"
	"github.com/nexusgg/partner-portal/internal/platform"
)

// AuthHandler exposes login, registration and the profile endpoints.
type AuthHandler struct {
	BaseHandler
	sessions *appidentity.SessionService
	logger   *zap.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(sessions *appidentity.SessionService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes mounts the auth endpoints. The limited middleware throttles
// the credential endpoints only; profile reads are never rate limited.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authenticated gin.HandlerFunc, limited ...gin.HandlerFunc) {
	credentials := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), fn)
	}
	auth := rg.Group("/auth")
	{
		auth.POST("/login", credentials(h.Login)...)
		auth.POST("/register", credentials(h.Register)...)
		auth.POST("/logout", h.Logout)
		auth.GET("/profile", authenticated, h.Profile)
		auth.PUT("/profile", authenticated, h.UpdateProfile)
	}
}

type loginResponse struct {
	User         any    `json:"user"`
	RedirectPath string `json:"redirect_path"`
}

// Login authenticates against the platform and persists the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var in platform.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid login payload.")
		return
	}

	res, err := h.sessions.Login(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, loginResponse{User: res.User, RedirectPath: res.RedirectPath})
}

// Register creates a partner account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var in platform.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid registration payload.")
		return
	}

	res, err := h.sessions.Register(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, loginResponse{User: res.User, RedirectPath: res.RedirectPath})
}

// Logout clears the session. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	h.Success(c, gin.H{"logged_out": true})
}

// Profile returns the cached profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.sessions.Profile(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile applies a profile edit.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in platform.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, "Invalid profile payload.")
		return
	}

	user, err := h.sessions.UpdateProfile(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, user)
}
