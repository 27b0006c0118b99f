package console

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// Resource names double as route segments.
const (
	ResourceStudents      = "students"
	ResourceInstructors   = "instructors"
	ResourceStaff         = "staffs"
	ResourceCourses       = "courses"
	ResourceClasses       = "classes"
	ResourceGallery       = "gallery"
	ResourceAnnouncements = "announcements"
	ResourceKidsCamp      = "kids-camp"
	ResourceSettings      = "settings"
	ResourceFunctions     = "functions"
	ResourceParticipants  = "participants"
	ResourceSocialService = "social-service"
	ResourceServiceMedia  = "service-media"
)

// SecurityTable holds the per-user security toggles.
const SecurityTable = "user_security_settings"

var (
	byDateDesc = models.Order{Column: "date"}
	byKeyAsc   = models.Order{Column: "key", Ascending: true}
)

// GenerateStudentCode returns "INS" followed by four digits.
func GenerateStudentCode() string {
	return fmt.Sprintf("INS%d", rand.Intn(9000)+1000)
}

func today() models.Date { return models.NewDate(time.Now()) }

// StudentDefinition describes the students table. New drafts get a generated code
// and today as the enrolment date.
func StudentDefinition() Definition[models.Student, models.StudentDraft] {
	return Definition[models.Student, models.StudentDraft]{
		Name:  ResourceStudents,
		Table: "students",
		Order: models.ByCreatedDesc,
		Defaults: func() models.StudentDraft {
			return models.StudentDraft{
				StudentCode:  GenerateStudentCode(),
				Status:       models.StudentActive,
				EnrolledDate: today(),
			}
		},
		Seed: func(s models.Student) models.StudentDraft {
			return models.StudentDraft{
				Name: s.Name, Email: s.Email, StudentCode: s.StudentCode, Course: s.Course,
				ClassCode: s.ClassCode, Status: s.Status, EnrolledDate: s.EnrolledDate,
				Phone: s.Phone, AvatarURL: s.AvatarURL,
			}
		},
		Match: func(s models.Student, f Filter) bool {
			return f.MatchStatus(s.Status) && f.MatchSearch(s.Name, s.Email, s.StudentCode, s.Course)
		},
	}
}

// InstructorDefinition describes the instructors table.
func InstructorDefinition() Definition[models.Instructor, models.InstructorDraft] {
	return Definition[models.Instructor, models.InstructorDraft]{
		Name:  ResourceInstructors,
		Table: "instructors",
		Order: models.ByCreatedDesc,
		Defaults: func() models.InstructorDraft {
			return models.InstructorDraft{Status: "active", AssignedClasses: pq.StringArray{}}
		},
		Seed: func(i models.Instructor) models.InstructorDraft {
			classes := append(pq.StringArray{}, i.AssignedClasses...)
			return models.InstructorDraft{
				Name: i.Name, Email: i.Email, Phone: i.Phone, Department: i.Department,
				Status: i.Status, AssignedClasses: classes,
			}
		},
		Match: func(i models.Instructor, f Filter) bool {
			return f.MatchStatus(i.Status) && f.MatchSearch(i.Name, i.Email, i.Department)
		},
		Realtime: true,
	}
}

// StaffDefinition describes the staff table.
func StaffDefinition() Definition[models.Staff, models.StaffDraft] {
	return Definition[models.Staff, models.StaffDraft]{
		Name:     ResourceStaff,
		Table:    "staff",
		Order:    models.ByCreatedDesc,
		Defaults: func() models.StaffDraft { return models.StaffDraft{Status: "active"} },
		Seed: func(s models.Staff) models.StaffDraft {
			return models.StaffDraft{Name: s.Name, Email: s.Email, Phone: s.Phone, Role: s.Role, Status: s.Status}
		},
		Match: func(s models.Staff, f Filter) bool {
			return f.MatchStatus(s.Status) && f.MatchSearch(s.Name, s.Email, s.Role)
		},
		Realtime: true,
	}
}

// CourseDefinition describes the courses table with its cover image.
func CourseDefinition() Definition[models.Course, models.CourseDraft] {
	return Definition[models.Course, models.CourseDraft]{
		Name:     ResourceCourses,
		Table:    "courses",
		Order:    models.ByCreatedDesc,
		Defaults: func() models.CourseDraft { return models.CourseDraft{Status: "active"} },
		Seed: func(c models.Course) models.CourseDraft {
			return models.CourseDraft{
				Title: c.Title, Code: c.Code, Description: c.Description, Status: c.Status,
				EnrolledStudents: c.EnrolledStudents, ImageURL: c.ImageURL,
			}
		},
		Media:       &MediaTarget{Bucket: "course-image", Prefix: "course/", Naming: NameTimestamp, Overwrite: true},
		AttachMedia: func(d *models.CourseDraft, ref models.MediaReference) { d.ImageURL = ref.URL },
		Match: func(c models.Course, f Filter) bool {
			return f.MatchStatus(c.Status) && f.MatchSearch(c.Title, c.Code, c.Description)
		},
	}
}

// ClassDefinition describes the classes table with its cover image.
func ClassDefinition() Definition[models.Class, models.ClassDraft] {
	return Definition[models.Class, models.ClassDraft]{
		Name:  ResourceClasses,
		Table: "classes",
		Order: models.ByCreatedDesc,
		Seed: func(c models.Class) models.ClassDraft {
			return models.ClassDraft{Name: c.Name, Description: c.Description, ImageURL: c.ImageURL}
		},
		Media:       &MediaTarget{Bucket: "class-image", Prefix: "class/", Naming: NameTimestamp, Overwrite: true},
		AttachMedia: func(d *models.ClassDraft, ref models.MediaReference) { d.ImageURL = ref.URL },
		Match: func(c models.Class, f Filter) bool {
			return f.MatchSearch(c.Name, c.Description)
		},
		Realtime: true,
	}
}

// GalleryDefinition describes the gallery. Creating an item requires a file.
func GalleryDefinition() Definition[models.GalleryItem, models.GalleryDraft] {
	return Definition[models.GalleryItem, models.GalleryDraft]{
		Name:     ResourceGallery,
		Table:    "gallery",
		Order:    models.ByCreatedDesc,
		Defaults: func() models.GalleryDraft { return models.GalleryDraft{Type: models.MediaImage} },
		Seed: func(g models.GalleryItem) models.GalleryDraft {
			return models.GalleryDraft{Title: g.Title, Description: g.Description, Type: g.Type, URL: g.URL, ImageURL: g.ImageURL}
		},
		Media: &MediaTarget{Bucket: "gallery", Naming: NameRandom},
		AttachMedia: func(d *models.GalleryDraft, ref models.MediaReference) {
			d.URL = ref.URL
			d.Type = ref.Type
			if ref.Type == models.MediaImage {
				d.ImageURL = ref.URL
			}
		},
		RequireMediaOnCreate: true,
		// Status filters by media type.
		Match: func(g models.GalleryItem, f Filter) bool {
			return f.MatchStatus(g.Type) && f.MatchSearch(g.Title, g.Description)
		},
		Realtime: true,
	}
}

// AnnouncementDefinition describes the announcements table.
func AnnouncementDefinition() Definition[models.Announcement, models.AnnouncementDraft] {
	return Definition[models.Announcement, models.AnnouncementDraft]{
		Name:  ResourceAnnouncements,
		Table: "announcements",
		Order: models.ByCreatedDesc,
		Seed: func(a models.Announcement) models.AnnouncementDraft {
			return models.AnnouncementDraft{Title: a.Title, Content: a.Content}
		},
		Match: func(a models.Announcement, f Filter) bool {
			return f.MatchSearch(a.Title, a.Content)
		},
		Realtime: true,
	}
}

// KidsCampDefinition lists kids camp entries newest date first and splices new
// rows into the held list.
func KidsCampDefinition() Definition[models.KidsCamp, models.KidsCampDraft] {
	return Definition[models.KidsCamp, models.KidsCampDraft]{
		Name:  ResourceKidsCamp,
		Table: "kidscamp",
		Order: byDateDesc,
		Seed: func(k models.KidsCamp) models.KidsCampDraft {
			return models.KidsCampDraft{Name: k.Name, Date: k.Date, Participants: k.Participants}
		},
		Match: func(k models.KidsCamp, f Filter) bool {
			return f.MatchSearch(k.Name)
		},
		SpliceOnInsert: true,
	}
}

// SettingDefinition describes the key/value settings table ordered by key.
func SettingDefinition() Definition[models.Setting, models.SettingDraft] {
	return Definition[models.Setting, models.SettingDraft]{
		Name:  ResourceSettings,
		Table: "settings",
		Order: byKeyAsc,
		Seed: func(s models.Setting) models.SettingDraft {
			return models.SettingDraft{Key: s.Key, Value: s.Value}
		},
		Match: func(s models.Setting, f Filter) bool {
			return f.MatchSearch(s.Key, s.Value)
		},
		Realtime: true,
	}
}

// FunctionDefinition describes the functions table.
func FunctionDefinition() Definition[models.Function, models.FunctionDraft] {
	return Definition[models.Function, models.FunctionDraft]{
		Name:  ResourceFunctions,
		Table: "functions",
		Order: models.ByCreatedDesc,
		Seed: func(fn models.Function) models.FunctionDraft {
			return models.FunctionDraft{Name: fn.Name, Date: fn.Date}
		},
		Match: func(fn models.Function, f Filter) bool {
			return f.MatchSearch(fn.Name)
		},
		Realtime: true,
	}
}

// ParticipantDefinition filters by status "attended" or "absent".
func ParticipantDefinition() Definition[models.Participant, models.ParticipantDraft] {
	return Definition[models.Participant, models.ParticipantDraft]{
		Name:  ResourceParticipants,
		Table: "participants",
		Order: models.ByCreatedDesc,
		Seed: func(p models.Participant) models.ParticipantDraft {
			return models.ParticipantDraft{
				FunctionID: p.FunctionID, Name: p.Name, Phone: p.Phone,
				Attended: p.Attended, PaidForPost: p.PaidForPost,
			}
		},
		Match: func(p models.Participant, f Filter) bool {
			status := "absent"
			if p.Attended {
				status = "attended"
			}
			return f.MatchStatus(status) && f.MatchSearch(p.Name, p.Phone)
		},
		Realtime: true,
	}
}

// SocialServiceDefinition describes the socialservice table.
func SocialServiceDefinition() Definition[models.SocialService, models.SocialServiceDraft] {
	return Definition[models.SocialService, models.SocialServiceDraft]{
		Name:  ResourceSocialService,
		Table: "socialservice",
		Order: byDateDesc,
		Seed: func(s models.SocialService) models.SocialServiceDraft {
			return models.SocialServiceDraft{Name: s.Name, Date: s.Date}
		},
		Match: func(s models.SocialService, f Filter) bool {
			return f.MatchSearch(s.Name)
		},
	}
}

// ServiceMediaDefinition describes the media rows attached to social service records.
func ServiceMediaDefinition() Definition[models.ServiceMedia, models.ServiceMediaDraft] {
	return Definition[models.ServiceMedia, models.ServiceMediaDraft]{
		Name:  ResourceServiceMedia,
		Table: "socialservice_media",
		Order: models.ByCreatedDesc,
		Seed: func(m models.ServiceMedia) models.ServiceMediaDraft {
			return models.ServiceMediaDraft{ServiceID: m.ServiceID, URL: m.URL, Type: m.Type}
		},
	}
}
