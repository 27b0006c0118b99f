package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// ParticipantStore is the participants table with delete-by-function support.
type ParticipantStore interface {
	Store[models.Participant, models.ParticipantDraft]
	ForeignKeyDeleter
}

// FunctionBoard manages functions together with their participants.
type FunctionBoard struct {
	Functions    *Controller[models.Function, models.FunctionDraft]
	Participants *Controller[models.Participant, models.ParticipantDraft]

	participants ParticipantStore
	logger       *zap.Logger
}

// NewFunctionBoard builds the board over both tables.
func NewFunctionBoard(functions Store[models.Function, models.FunctionDraft], participants ParticipantStore, uploader *Uploader, opts Shared) *FunctionBoard {
	return &FunctionBoard{
		Functions:    NewController(FunctionDefinition(), functions, uploader, opts.Validate, opts.Logger),
		Participants: NewController(ParticipantDefinition(), participants, uploader, opts.Validate, opts.Logger),
		participants: participants,
		logger:       opts.logger(),
	}
}

// OpenParticipant shows a blank participant form for functionID.
func (b *FunctionBoard) OpenParticipant(functionID string) models.ParticipantDraft {
	return b.Participants.OpenCreate(func(d *models.ParticipantDraft) {
		d.FunctionID = functionID
	})
}

// SubmitParticipant inserts a participant. New participants start neither attended
// nor paid for post.
func (b *FunctionBoard) SubmitParticipant(ctx context.Context, draft models.ParticipantDraft) (models.Participant, error) {
	if _, modal := b.Participants.Draft(); modal.Kind == ModalCreating {
		draft.Attended = false
		draft.PaidForPost = false
	}
	return b.Participants.Submit(ctx, draft, nil)
}

// ParticipantsOf filters the held participants by function.
func (b *FunctionBoard) ParticipantsOf(functionID string) []models.Participant {
	all := b.Participants.Records()
	out := make([]models.Participant, 0, len(all))
	for _, p := range all {
		if p.FunctionID == functionID {
			out = append(out, p)
		}
	}
	return out
}

// Summaries counts attendance per held function.
func (b *FunctionBoard) Summaries() []models.FunctionSummary {
	functions := b.Functions.Records()
	index := make(map[string]int, len(functions))
	out := make([]models.FunctionSummary, len(functions))
	for i, fn := range functions {
		index[fn.ID] = i
		out[i].FunctionID = fn.ID
	}
	for _, p := range b.Participants.Records() {
		i, ok := index[p.FunctionID]
		if !ok {
			continue
		}
		out[i].Total++
		if p.Attended {
			out[i].Attended++
		}
		if p.CertificatePending() {
			out[i].CertificatesToPost++
		}
	}
	return out
}

// ToggleAttended flips the attended flag of a participant.
func (b *FunctionBoard) ToggleAttended(ctx context.Context, participantID string) (models.Participant, error) {
	return b.Participants.Apply(ctx, participantID, func(d *models.ParticipantDraft) {
		d.Attended = !d.Attended
	})
}

// TogglePaidForPost flips the paid-for-post flag of a participant.
func (b *FunctionBoard) TogglePaidForPost(ctx context.Context, participantID string) (models.Participant, error) {
	return b.Participants.Apply(ctx, participantID, func(d *models.ParticipantDraft) {
		d.PaidForPost = !d.PaidForPost
	})
}

// DeleteFunction removes the participants of the function and then the function.
// The two deletes are not atomic; the function is kept if the first one fails.
func (b *FunctionBoard) DeleteFunction(ctx context.Context, functionID string) error {
	if err := b.participants.DeleteWhere(ctx, "function_id", functionID); err != nil {
		b.logger.Warn("delete participants failed", zap.String("function_id", functionID), zap.Error(err))
		return appErrors.WrapAs(appErrors.ErrWrite, err, "Failed to delete item: "+err.Error())
	}
	if err := b.Functions.Delete(ctx, functionID); err != nil {
		_ = b.Participants.Refresh(ctx)
		return err
	}
	_ = b.Participants.Refresh(ctx)
	return nil
}

// Refresh re-reads both lists.
func (b *FunctionBoard) Refresh(ctx context.Context) error {
	errFn := b.Functions.Refresh(ctx)
	errP := b.Participants.Refresh(ctx)
	if errFn != nil {
		return errFn
	}
	return errP
}
