package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/console"
	internalmiddleware "github.com/noah-isme/campus-admin-console/internal/middleware"
	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/export"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

// ServiceView is a social service record with its media.
type ServiceView struct {
	models.SocialService
	Media []models.ServiceMedia `json:"media"`
}

// SocialServiceHandler serves the social service register.
type SocialServiceHandler struct {
	board  *console.SocialServiceBoard
	events ChangeListener
}

// NewSocialServiceHandler builds the handler.
func NewSocialServiceHandler(board *console.SocialServiceBoard, events ChangeListener) *SocialServiceHandler {
	return &SocialServiceHandler{board: board, events: events}
}

// Register mounts /social-service.
func (h *SocialServiceHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + console.ResourceSocialService)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
	g.GET("/:id/media", h.Media)
	g.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List social service records
// @Tags SocialService
// @Produce json
// @Param search query string false "Search by name"
// @Success 200 {object} response.Envelope
// @Router /admin/social-service [get]
func (h *SocialServiceHandler) List(c *gin.Context) {
	var filter console.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid filter"))
		return
	}
	cached := c.Query("cached") == "true"
	internalmiddleware.SetCacheHit(c, cached)
	if !cached {
		internalmiddleware.SetListError(c, h.board.Refresh(c.Request.Context()))
	}
	services := h.board.Services.Filter(filter)
	out := make([]ServiceView, 0, len(services))
	for _, s := range services {
		out = append(out, ServiceView{SocialService: s, Media: h.board.MediaFor(s.ID)})
	}
	response.OK(c, out, internalmiddleware.ResponseMeta(c))
}

// Create godoc
// @Summary Create social service record
// @Description Multipart form with name, date and any number of files.
// @Tags SocialService
// @Accept mpfd
// @Produce json
// @Param name formData string true "Name"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Param files formData file false "Media files"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/social-service [post]
func (h *SocialServiceHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid multipart payload"))
		return
	}

	draft := models.SocialServiceDraft{Name: c.PostForm("name")}
	if raw := c.PostForm("date"); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "date must be YYYY-MM-DD"))
			return
		}
		draft.Date = date
	}

	var uploads []*console.Upload
	for _, header := range form.File["files"] {
		upload, f, err := openUpload(header)
		if err != nil {
			response.Error(c, err)
			return
		}
		defer f.Close()
		uploads = append(uploads, upload)
	}

	result, err := h.board.Submit(c.Request.Context(), draft, uploads)
	if err != nil {
		if result != nil {
			response.ErrorWithData(c, err, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get returns one record with its media.
func (h *SocialServiceHandler) Get(c *gin.Context) {
	service, err := h.board.Services.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ServiceView{SocialService: service, Media: h.board.MediaFor(service.ID)})
}

// Media lists the held media of a record.
func (h *SocialServiceHandler) Media(c *gin.Context) {
	response.OK(c, h.board.MediaFor(c.Param("id")))
}

// Delete removes the media rows and then the record.
func (h *SocialServiceHandler) Delete(c *gin.Context) {
	if err := h.board.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export downloads the held records.
func (h *SocialServiceHandler) Export(c *gin.Context) {
	data := export.Build(SocialServiceExport.Headers, h.board.Services.Records(), SocialServiceExport.Row)
	file, err := export.Render(c.Query("format"), data, SocialServiceExport.Title)
	if err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, err.Error()))
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Body)
}
