package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/console"
	internalmiddleware "github.com/noah-isme/campus-admin-console/internal/middleware"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/export"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

const maxUploadBytes = 32 << 20

// ChangeListener streams table names as they change.
type ChangeListener interface {
	Listen(fn func(table string)) (stop func())
}

// ExportSpec flattens records for CSV and PDF downloads.
type ExportSpec[T any] struct {
	Title   string
	Headers []string
	Row     func(T) map[string]string
}

// ModalView is the form state returned by modal endpoints.
type ModalView[D any] struct {
	Modal      console.Modal `json:"modal"`
	Draft      D             `json:"draft"`
	FormError  string        `json:"form_error,omitempty"`
	Submitting bool          `json:"submitting"`
}

type openModalRequest struct {
	ID string `json:"id"`
}

// ResourceHandler exposes one console controller over HTTP.
type ResourceHandler[T console.Record, D any] struct {
	ctrl      *console.Controller[T, D]
	export    ExportSpec[T]
	events    ChangeListener
	deleteFn  func(ctx context.Context, id string) error
	heartbeat time.Duration
}

// NewResourceHandler builds a handler. events may be nil when no change feed runs.
func NewResourceHandler[T console.Record, D any](ctrl *console.Controller[T, D], spec ExportSpec[T], events ChangeListener) *ResourceHandler[T, D] {
	return &ResourceHandler[T, D]{
		ctrl:      ctrl,
		export:    spec,
		events:    events,
		deleteFn:  ctrl.Delete,
		heartbeat: 25 * time.Second,
	}
}

// WithDelete replaces the delete operation, used for cascading deletes.
func (h *ResourceHandler[T, D]) WithDelete(fn func(ctx context.Context, id string) error) *ResourceHandler[T, D] {
	h.deleteFn = fn
	return h
}

// Register mounts the resource routes under /<name>.
func (h *ResourceHandler[T, D]) Register(rg *gin.RouterGroup) *gin.RouterGroup {
	g := rg.Group("/" + h.ctrl.Name())
	g.GET("", h.List)
	g.GET("/modal", h.Modal)
	g.POST("/modal", h.OpenModal)
	g.DELETE("/modal", h.CloseModal)
	g.POST("/submit", h.Submit)
	g.GET("/export", h.Export)
	g.GET("/events", h.Events)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	return g
}

// List godoc
// @Summary List records
// @Description Re-read the table and filter it. cached=true filters the held list without reading.
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param search query string false "Case-insensitive search"
// @Param status query string false "Status filter, all for every record"
// @Param cached query bool false "Filter without re-reading"
// @Success 200 {object} response.Envelope
// @Router /admin/{resource} [get]
func (h *ResourceHandler[T, D]) List(c *gin.Context) {
	var filter console.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid filter"))
		return
	}
	cached := c.Query("cached") == "true"
	internalmiddleware.SetCacheHit(c, cached)
	if !cached {
		internalmiddleware.SetListError(c, h.ctrl.Refresh(c.Request.Context()))
	}
	response.OK(c, h.ctrl.Filter(filter), internalmiddleware.ResponseMeta(c))
}

// Get godoc
// @Summary Get record
// @Tags Resources
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/{resource}/{id} [get]
func (h *ResourceHandler[T, D]) Get(c *gin.Context) {
	record, err := h.ctrl.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Modal returns the current form state.
func (h *ResourceHandler[T, D]) Modal(c *gin.Context) {
	response.OK(c, h.modalView())
}

// OpenModal godoc
// @Summary Open form
// @Description Opens the edit form for id, or a blank create form when id is empty.
// @Tags Resources
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param payload body openModalRequest false "Record to edit"
// @Success 200 {object} response.Envelope
// @Router /admin/{resource}/modal [post]
func (h *ResourceHandler[T, D]) OpenModal(c *gin.Context) {
	var req openModalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid modal payload"))
			return
		}
	}
	if id := strings.TrimSpace(req.ID); id != "" {
		if _, err := h.ctrl.Edit(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
	} else {
		h.ctrl.OpenCreate()
	}
	response.OK(c, h.modalView())
}

// CloseModal cancels the open form.
func (h *ResourceHandler[T, D]) CloseModal(c *gin.Context) {
	h.ctrl.Cancel()
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit form
// @Description JSON draft, or multipart with a JSON "draft" field and an optional "file".
// @Tags Resources
// @Accept json
// @Accept mpfd
// @Produce json
// @Param resource path string true "Resource name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/{resource}/submit [post]
func (h *ResourceHandler[T, D]) Submit(c *gin.Context) {
	base, _ := h.ctrl.Draft()
	draft, upload, closeFile, err := bindSubmission(c, base)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	record, err := h.ctrl.Submit(c.Request.Context(), draft, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Delete godoc
// @Summary Delete record
// @Tags Resources
// @Param resource path string true "Resource name"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 502 {object} response.Envelope
// @Router /admin/{resource}/{id} [delete]
func (h *ResourceHandler[T, D]) Delete(c *gin.Context) {
	if err := h.deleteFn(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export records
// @Tags Resources
// @Produce text/csv
// @Produce application/pdf
// @Param resource path string true "Resource name"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /admin/{resource}/export [get]
func (h *ResourceHandler[T, D]) Export(c *gin.Context) {
	data := export.Build(h.export.Headers, h.ctrl.Records(), h.export.Row)
	file, err := export.Render(c.Query("format"), data, h.export.Title)
	if err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, err.Error()))
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Body)
}

// Events streams change notifications of the resource table as server-sent events.
func (h *ResourceHandler[T, D]) Events(c *gin.Context) {
	if h.events == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "change feed is disabled"))
		return
	}
	streamChanges(c, h.events, h.heartbeat, h.ctrl.Table())
}

func (h *ResourceHandler[T, D]) modalView() ModalView[D] {
	snap := h.ctrl.Snapshot()
	return ModalView[D]{Modal: snap.Modal, Draft: snap.Draft, FormError: snap.FormError, Submitting: snap.Submitting}
}

// streamChanges writes one "change" event per notification of the given tables
// until the client goes away.
func streamChanges(c *gin.Context, events ChangeListener, heartbeat time.Duration, tables ...string) {
	watched := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		watched[t] = struct{}{}
	}
	changes := make(chan string, 16)
	stop := events.Listen(func(table string) {
		if _, ok := watched[table]; !ok {
			return
		}
		select {
		case changes <- table:
		default:
		}
	})
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case table := <-changes:
			c.SSEvent("change", gin.H{"table": table})
		case <-ticker.C:
			c.SSEvent("ping", "")
		}
		c.Writer.Flush()
	}
}

// bindSubmission overlays the JSON or multipart payload on draft. The returned
// close func releases the uploaded file.
func bindSubmission[D any](c *gin.Context, draft D) (D, *console.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&draft); err != nil {
			return draft, nil, noop, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid draft payload")
		}
		return draft, nil, noop, nil
	}

	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		return draft, nil, noop, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid multipart payload")
	}
	if raw := c.PostForm("draft"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &draft); err != nil {
			return draft, nil, noop, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid draft payload")
		}
	}
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, nil, noop, nil
	}
	if err != nil {
		return draft, nil, noop, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid file")
	}
	upload, f, err := openUpload(header)
	if err != nil {
		return draft, nil, noop, err
	}
	return draft, upload, func() { _ = f.Close() }, nil
}

func openUpload(header *multipart.FileHeader) (*console.Upload, multipart.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid file")
	}
	return &console.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, f, nil
}
