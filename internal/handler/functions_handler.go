package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/console"
	internalmiddleware "github.com/noah-isme/campus-admin-console/internal/middleware"
	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

type openParticipantRequest struct {
	ID         string `json:"id"`
	FunctionID string `json:"function_id"`
}

// FunctionsHandler serves functions and their participants.
type FunctionsHandler struct {
	board        *console.FunctionBoard
	functions    *ResourceHandler[models.Function, models.FunctionDraft]
	participants *ResourceHandler[models.Participant, models.ParticipantDraft]
}

// NewFunctionsHandler builds the functions handler.
func NewFunctionsHandler(board *console.FunctionBoard, events ChangeListener) *FunctionsHandler {
	return &FunctionsHandler{
		board:        board,
		functions:    NewResourceHandler(board.Functions, FunctionExport, events).WithDelete(board.DeleteFunction),
		participants: NewResourceHandler(board.Participants, ParticipantExport, events),
	}
}

// Register mounts /functions and /participants.
func (h *FunctionsHandler) Register(rg *gin.RouterGroup) {
	fn := h.functions.Register(rg)
	fn.GET("/summaries", h.Summaries)
	fn.GET("/:id/participants", h.ListParticipants)
	fn.POST("/:id/participants", h.AddParticipant)

	p := rg.Group("/participants")
	p.GET("", h.participants.List)
	p.GET("/modal", h.participants.Modal)
	p.POST("/modal", h.OpenParticipantModal)
	p.DELETE("/modal", h.participants.CloseModal)
	p.POST("/submit", h.SubmitParticipant)
	p.GET("/export", h.participants.Export)
	p.GET("/events", h.participants.Events)
	p.PATCH("/:id/attended", h.ToggleAttended)
	p.PATCH("/:id/paid", h.TogglePaid)
	p.DELETE("/:id", h.participants.Delete)
}

// Summaries returns attendance counts per function.
func (h *FunctionsHandler) Summaries(c *gin.Context) {
	response.OK(c, h.board.Summaries())
}

// ListParticipants godoc
// @Summary List participants of a function
// @Tags Functions
// @Produce json
// @Param id path string true "Function ID"
// @Param cached query bool false "Use the held list"
// @Success 200 {object} response.Envelope
// @Router /admin/functions/{id}/participants [get]
func (h *FunctionsHandler) ListParticipants(c *gin.Context) {
	cached := c.Query("cached") == "true"
	internalmiddleware.SetCacheHit(c, cached)
	if !cached {
		internalmiddleware.SetListError(c, h.board.Participants.Refresh(c.Request.Context()))
	}
	response.OK(c, h.board.ParticipantsOf(c.Param("id")), internalmiddleware.ResponseMeta(c))
}

// AddParticipant godoc
// @Summary Add participant
// @Description Opens a participant form for the function and submits the payload.
// @Tags Functions
// @Accept json
// @Produce json
// @Param id path string true "Function ID"
// @Param payload body models.ParticipantDraft true "Participant"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/functions/{id}/participants [post]
func (h *FunctionsHandler) AddParticipant(c *gin.Context) {
	functionID := c.Param("id")
	draft := h.board.OpenParticipant(functionID)
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid participant payload"))
		return
	}
	draft.FunctionID = functionID
	participant, err := h.board.SubmitParticipant(c.Request.Context(), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, participant)
}

// OpenParticipantModal opens the participant form, for editing when id is set.
func (h *FunctionsHandler) OpenParticipantModal(c *gin.Context) {
	var req openParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid modal payload"))
		return
	}
	switch {
	case req.ID != "":
		if _, err := h.board.Participants.Edit(c.Request.Context(), req.ID); err != nil {
			response.Error(c, err)
			return
		}
	case req.FunctionID != "":
		h.board.OpenParticipant(req.FunctionID)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "function_id is required"))
		return
	}
	h.participants.Modal(c)
}

// SubmitParticipant submits the open participant form. The payload is laid over
// the held draft, so fields the client omits keep their seeded values.
func (h *FunctionsHandler) SubmitParticipant(c *gin.Context) {
	draft, _ := h.board.Participants.Draft()
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid participant payload"))
		return
	}
	participant, err := h.board.SubmitParticipant(c.Request.Context(), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, participant)
}

// ToggleAttended flips the attended flag.
func (h *FunctionsHandler) ToggleAttended(c *gin.Context) {
	participant, err := h.board.ToggleAttended(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, participant)
}

// TogglePaid flips the paid-for-post flag.
func (h *FunctionsHandler) TogglePaid(c *gin.Context) {
	participant, err := h.board.TogglePaidForPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, participant)
}
