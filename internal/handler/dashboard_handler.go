package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/console"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

// AdminResources lists the management views offered under /admin.
var AdminResources = []string{
	console.ResourceStudents, console.ResourceInstructors, console.ResourceStaff,
	console.ResourceCourses, console.ResourceClasses, console.ResourceGallery,
	console.ResourceAnnouncements, console.ResourceKidsCamp, console.ResourceSettings,
	console.ResourceFunctions, console.ResourceSocialService,
}

// DashboardHandler serves the landing page and the database self-test.
type DashboardHandler struct {
	console *console.Console
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(c *console.Console) *DashboardHandler {
	return &DashboardHandler{console: c}
}

// Overview godoc
// @Summary Console overview
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	response.OK(c, gin.H{
		"user":      h.console.Gate.User(),
		"resources": AdminResources,
	})
}

// Stats godoc
// @Summary Dashboard counts
// @Description Cached stats; refresh=true re-reads them.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	d := h.console.Dashboard
	var err error
	if c.Query("refresh") == "true" {
		err = d.Refresh(c.Request.Context())
	} else {
		_, err = d.Load(c.Request.Context())
	}
	stats, loaded := d.Stats()
	if err != nil && !loaded {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{}
	if msg := d.LastError(); msg != "" {
		meta["error"] = msg
	}
	response.OK(c, stats, meta)
}

// TestTables godoc
// @Summary Database connectivity self-test
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/test-tables [get]
func (h *DashboardHandler) TestTables(c *gin.Context) {
	response.OK(c, h.console.SelfTest(c.Request.Context()))
}
