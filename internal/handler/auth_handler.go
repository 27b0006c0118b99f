package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/console"
	"github.com/noah-isme/campus-admin-console/internal/middleware"
	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

// SessionView describes the session state without the token.
type SessionView struct {
	Authenticated bool             `json:"authenticated"`
	User          *models.UserInfo `json:"user,omitempty"`
}

// AuthHandler wires HTTP endpoints to the session gate.
type AuthHandler struct {
	gate   *console.SessionGate
	tokens middleware.TokenParser
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(gate *console.SessionGate, tokens middleware.TokenParser) *AuthHandler {
	return &AuthHandler{gate: gate, tokens: tokens}
}

// Login godoc
// @Summary Authenticate the administrator
// @Description Only the configured admin email is admitted.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid login payload"))
		return
	}

	session, err := h.gate.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Logout godoc
// @Summary End the admin session
// @Tags Authentication
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.gate.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Session godoc
// @Summary Report whether the caller holds the admin session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	view := SessionView{}
	header := c.GetHeader("Authorization")
	if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" && token != header {
		if claims, err := h.tokens.ParseToken(token); err == nil && h.gate.Authorize(claims.ID) {
			view.Authenticated = true
			view.User = h.gate.User()
		}
	}
	response.OK(c, view)
}

// UpdateProfile godoc
// @Summary Update the admin profile
// @Description Name may be changed once; email and password changes need the current password.
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ProfileUpdate true "Profile changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid profile payload"))
		return
	}
	info, err := h.gate.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, info)
}
