package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// Table specs of the managed resources.
var (
	StudentsSpec = TableSpec{
		Name:    "students",
		Columns: []string{"name", "email", "student_code", "course", "class_code", "status", "enrolled_date", "phone", "avatar_url"},
	}
	InstructorsSpec = TableSpec{
		Name:    "instructors",
		Columns: []string{"name", "email", "phone", "department", "status", "assigned_classes"},
	}
	StaffSpec = TableSpec{
		Name:    "staff",
		Columns: []string{"name", "email", "phone", "role", "status"},
	}
	CoursesSpec = TableSpec{
		Name:    "courses",
		Columns: []string{"title", "code", "description", "status", "enrolled_students", "image_url"},
	}
	ClassesSpec = TableSpec{
		Name:    "classes",
		Columns: []string{"name", "description", "image_url"},
	}
	GallerySpec = TableSpec{
		Name:    "gallery",
		Columns: []string{"title", "description", "type", "url", "image_url"},
	}
	AnnouncementsSpec = TableSpec{
		Name:    "announcements",
		Columns: []string{"title", "content"},
	}
	KidsCampSpec = TableSpec{
		Name:     "kidscamp",
		Columns:  []string{"name", "date", "participants"},
		Sortable: []string{"date"},
	}
	SettingsSpec = TableSpec{
		Name:     "settings",
		Columns:  []string{"key", "value"},
		Sortable: []string{"key"},
	}
	FunctionsSpec = TableSpec{
		Name:     "functions",
		Columns:  []string{"name", "date"},
		Sortable: []string{"date"},
	}
	ParticipantsSpec = TableSpec{
		Name:        "participants",
		Columns:     []string{"function_id", "name", "phone", "attended", "paid_for_post"},
		ForeignKeys: []string{"function_id"},
	}
	SocialServiceSpec = TableSpec{
		Name:     "socialservice",
		Columns:  []string{"name", "date"},
		Sortable: []string{"date"},
	}
	ServiceMediaSpec = TableSpec{
		Name:        "socialservice_media",
		Columns:     []string{"service_id", "url", "type"},
		ForeignKeys: []string{"service_id"},
	}
)

// Tables holds a row store per managed table.
type Tables struct {
	Students      *Table[models.Student, models.StudentDraft]
	Instructors   *Table[models.Instructor, models.InstructorDraft]
	Staff         *Table[models.Staff, models.StaffDraft]
	Courses       *Table[models.Course, models.CourseDraft]
	Classes       *Table[models.Class, models.ClassDraft]
	Gallery       *Table[models.GalleryItem, models.GalleryDraft]
	Announcements *Table[models.Announcement, models.AnnouncementDraft]
	KidsCamp      *Table[models.KidsCamp, models.KidsCampDraft]
	Settings      *Table[models.Setting, models.SettingDraft]
	Functions     *Table[models.Function, models.FunctionDraft]
	Participants  *Table[models.Participant, models.ParticipantDraft]
	SocialService *Table[models.SocialService, models.SocialServiceDraft]
	ServiceMedia  *Table[models.ServiceMedia, models.ServiceMediaDraft]
}

// NewTables builds every row store over db. notifier may be nil.
func NewTables(db *sqlx.DB, notifier Notifier) *Tables {
	return &Tables{
		Students:      NewTable[models.Student, models.StudentDraft](db, StudentsSpec, notifier),
		Instructors:   NewTable[models.Instructor, models.InstructorDraft](db, InstructorsSpec, notifier),
		Staff:         NewTable[models.Staff, models.StaffDraft](db, StaffSpec, notifier),
		Courses:       NewTable[models.Course, models.CourseDraft](db, CoursesSpec, notifier),
		Classes:       NewTable[models.Class, models.ClassDraft](db, ClassesSpec, notifier),
		Gallery:       NewTable[models.GalleryItem, models.GalleryDraft](db, GallerySpec, notifier),
		Announcements: NewTable[models.Announcement, models.AnnouncementDraft](db, AnnouncementsSpec, notifier),
		KidsCamp:      NewTable[models.KidsCamp, models.KidsCampDraft](db, KidsCampSpec, notifier),
		Settings:      NewTable[models.Setting, models.SettingDraft](db, SettingsSpec, notifier),
		Functions:     NewTable[models.Function, models.FunctionDraft](db, FunctionsSpec, notifier),
		Participants:  NewTable[models.Participant, models.ParticipantDraft](db, ParticipantsSpec, notifier),
		SocialService: NewTable[models.SocialService, models.SocialServiceDraft](db, SocialServiceSpec, notifier),
		ServiceMedia:  NewTable[models.ServiceMedia, models.ServiceMediaDraft](db, ServiceMediaSpec, notifier),
	}
}
