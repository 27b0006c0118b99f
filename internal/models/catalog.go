package models

// Media types.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// MediaReference is the public location of an uploaded file.
type MediaReference struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Course is an offered course with an optional cover image.
type Course struct {
	Base
	Title            string `db:"title" json:"title"`
	Code             string `db:"code" json:"code"`
	Description      string `db:"description" json:"description"`
	Status           string `db:"status" json:"status"`
	EnrolledStudents int    `db:"enrolled_students" json:"enrolled_students"`
	ImageURL         string `db:"image_url" json:"image_url"`
}

// CourseDraft backs the course form.
type CourseDraft struct {
	Title            string `db:"title" json:"title" validate:"notblank"`
	Code             string `db:"code" json:"code"`
	Description      string `db:"description" json:"description"`
	Status           string `db:"status" json:"status" validate:"oneof=active inactive draft"`
	EnrolledStudents int    `db:"enrolled_students" json:"enrolled_students" validate:"gte=0"`
	ImageURL         string `db:"image_url" json:"image_url"`
}

// Class is a teaching group with an optional image.
type Class struct {
	Base
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	ImageURL    string `db:"image_url" json:"image_url"`
}

// ClassDraft backs the class form.
type ClassDraft struct {
	Name        string `db:"name" json:"name" validate:"notblank"`
	Description string `db:"description" json:"description"`
	ImageURL    string `db:"image_url" json:"image_url"`
}

// GalleryItem is an image or video shown in the public gallery.
type GalleryItem struct {
	Base
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Type        string `db:"type" json:"type"`
	URL         string `db:"url" json:"url"`
	ImageURL    string `db:"image_url" json:"image_url"`
}

// GalleryDraft backs the gallery form.
type GalleryDraft struct {
	Title       string `db:"title" json:"title" validate:"notblank"`
	Description string `db:"description" json:"description"`
	Type        string `db:"type" json:"type" validate:"oneof=image video"`
	URL         string `db:"url" json:"url"`
	ImageURL    string `db:"image_url" json:"image_url"`
}

// Announcement is a notice shown to the institution.
type Announcement struct {
	Base
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
}

// AnnouncementDraft backs the announcement form.
type AnnouncementDraft struct {
	Title   string `db:"title" json:"title" validate:"notblank"`
	Content string `db:"content" json:"content" validate:"notblank"`
}
