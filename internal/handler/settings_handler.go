package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/console"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

type securityToggleRequest struct {
	Setting string `json:"setting" binding:"required"`
	Value   *bool  `json:"value" binding:"required"`
}

// SecurityHandler serves the security toggles of the signed-in user.
type SecurityHandler struct {
	panel *console.SecurityPanel
}

// NewSecurityHandler builds the handler.
func NewSecurityHandler(panel *console.SecurityPanel) *SecurityHandler {
	return &SecurityHandler{panel: panel}
}

// Register mounts /settings/security.
func (h *SecurityHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/settings/security", h.Get)
	rg.PUT("/settings/security", h.Toggle)
}

// Get godoc
// @Summary Security settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/settings/security [get]
func (h *SecurityHandler) Get(c *gin.Context) {
	userID, err := adminUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.panel.Load(c.Request.Context(), userID))
}

// Toggle godoc
// @Summary Change one security setting
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body securityToggleRequest true "Setting name and value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/settings/security [put]
func (h *SecurityHandler) Toggle(c *gin.Context) {
	userID, err := adminUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req securityToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid security payload"))
		return
	}
	settings, err := h.panel.Toggle(c.Request.Context(), userID, req.Setting, *req.Value)
	if err != nil {
		response.ErrorWithData(c, err, settings)
		return
	}
	response.OK(c, settings)
}
