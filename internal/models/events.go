package models

// Function is an event whose attendees are tracked as participants.
type Function struct {
	Base
	Name string `db:"name" json:"name"`
	Date Date   `db:"date" json:"date"`
}

// FunctionDraft backs the function form.
type FunctionDraft struct {
	Name string `db:"name" json:"name" validate:"notblank"`
	Date Date   `db:"date" json:"date" validate:"required"`
}

// Participant attends a function. Certificates are posted to participants who paid
// for postage but did not attend.
type Participant struct {
	Base
	FunctionID  string `db:"function_id" json:"function_id"`
	Name        string `db:"name" json:"name"`
	Phone       string `db:"phone" json:"phone"`
	Attended    bool   `db:"attended" json:"attended"`
	PaidForPost bool   `db:"paid_for_post" json:"paid_for_post"`
}

// CertificatePending reports whether the award must be posted.
func (p Participant) CertificatePending() bool {
	return !p.Attended && p.PaidForPost
}

// ParticipantDraft backs the participant form.
type ParticipantDraft struct {
	FunctionID  string `db:"function_id" json:"function_id" validate:"notblank"`
	Name        string `db:"name" json:"name" validate:"notblank"`
	Phone       string `db:"phone" json:"phone" validate:"notblank"`
	Attended    bool   `db:"attended" json:"attended"`
	PaidForPost bool   `db:"paid_for_post" json:"paid_for_post"`
}

// FunctionSummary aggregates attendance for one function.
type FunctionSummary struct {
	FunctionID         string `json:"function_id"`
	Total              int    `json:"total"`
	Attended           int    `json:"attended"`
	CertificatesToPost int    `json:"certificates_to_post"`
}

// SocialService is a community service activity with attached media.
type SocialService struct {
	Base
	Name string `db:"name" json:"name"`
	Date Date   `db:"date" json:"date"`
}

// SocialServiceDraft backs the social service form.
type SocialServiceDraft struct {
	Name string `db:"name" json:"name" validate:"notblank"`
	Date Date   `db:"date" json:"date" validate:"required"`
}

// ServiceMedia is one uploaded file belonging to a social service record.
type ServiceMedia struct {
	Base
	ServiceID string `db:"service_id" json:"service_id"`
	URL       string `db:"url" json:"url"`
	Type      string `db:"type" json:"type"`
}

// ServiceMediaDraft is the insert payload of a media row.
type ServiceMediaDraft struct {
	ServiceID string `db:"service_id" json:"service_id" validate:"notblank"`
	URL       string `db:"url" json:"url" validate:"notblank"`
	Type      string `db:"type" json:"type" validate:"oneof=image video"`
}

// KidsCamp is an entry in the kids camp register.
type KidsCamp struct {
	Base
	Name         string `db:"name" json:"name"`
	Date         Date   `db:"date" json:"date"`
	Participants int    `db:"participants" json:"participants"`
}

// KidsCampDraft backs the kids camp form.
type KidsCampDraft struct {
	Name         string `db:"name" json:"name" validate:"notblank"`
	Date         Date   `db:"date" json:"date" validate:"required"`
	Participants int    `db:"participants" json:"participants" validate:"gte=0"`
}
