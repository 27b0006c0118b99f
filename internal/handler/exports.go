package handler

import (
	"strconv"
	"strings"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

func created(b models.Base) string {
	if b.CreatedAt.IsZero() {
		return ""
	}
	return b.CreatedAt.Format("2006-01-02 15:04")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Export layouts of every resource.
var (
	StudentExport = ExportSpec[models.Student]{
		Title:   "Students",
		Headers: []string{"Code", "Name", "Email", "Course", "Class", "Status", "Enrolled", "Phone"},
		Row: func(s models.Student) map[string]string {
			return map[string]string{
				"Code": s.StudentCode, "Name": s.Name, "Email": s.Email, "Course": s.Course,
				"Class": s.ClassCode, "Status": s.Status, "Enrolled": s.EnrolledDate.String(), "Phone": s.Phone,
			}
		},
	}

	InstructorExport = ExportSpec[models.Instructor]{
		Title:   "Instructors",
		Headers: []string{"Name", "Email", "Phone", "Department", "Status", "Classes"},
		Row: func(i models.Instructor) map[string]string {
			return map[string]string{
				"Name": i.Name, "Email": i.Email, "Phone": i.Phone, "Department": i.Department,
				"Status": i.Status, "Classes": strings.Join(i.AssignedClasses, ", "),
			}
		},
	}

	StaffExport = ExportSpec[models.Staff]{
		Title:   "Staff",
		Headers: []string{"Name", "Email", "Phone", "Role", "Status"},
		Row: func(s models.Staff) map[string]string {
			return map[string]string{"Name": s.Name, "Email": s.Email, "Phone": s.Phone, "Role": s.Role, "Status": s.Status}
		},
	}

	CourseExport = ExportSpec[models.Course]{
		Title:   "Courses",
		Headers: []string{"Title", "Code", "Status", "Enrolled", "Description"},
		Row: func(c models.Course) map[string]string {
			return map[string]string{
				"Title": c.Title, "Code": c.Code, "Status": c.Status,
				"Enrolled": strconv.Itoa(c.EnrolledStudents), "Description": c.Description,
			}
		},
	}

	ClassExport = ExportSpec[models.Class]{
		Title:   "Classes",
		Headers: []string{"Name", "Description", "Created"},
		Row: func(c models.Class) map[string]string {
			return map[string]string{"Name": c.Name, "Description": c.Description, "Created": created(c.Base)}
		},
	}

	GalleryExport = ExportSpec[models.GalleryItem]{
		Title:   "Gallery",
		Headers: []string{"Title", "Type", "URL", "Description"},
		Row: func(g models.GalleryItem) map[string]string {
			return map[string]string{"Title": g.Title, "Type": g.Type, "URL": g.URL, "Description": g.Description}
		},
	}

	AnnouncementExport = ExportSpec[models.Announcement]{
		Title:   "Announcements",
		Headers: []string{"Title", "Content", "Created"},
		Row: func(a models.Announcement) map[string]string {
			return map[string]string{"Title": a.Title, "Content": a.Content, "Created": created(a.Base)}
		},
	}

	KidsCampExport = ExportSpec[models.KidsCamp]{
		Title:   "Kids Camp",
		Headers: []string{"Name", "Date", "Participants"},
		Row: func(k models.KidsCamp) map[string]string {
			return map[string]string{"Name": k.Name, "Date": k.Date.String(), "Participants": strconv.Itoa(k.Participants)}
		},
	}

	SettingExport = ExportSpec[models.Setting]{
		Title:   "Settings",
		Headers: []string{"Key", "Value"},
		Row: func(s models.Setting) map[string]string {
			return map[string]string{"Key": s.Key, "Value": s.Value}
		},
	}

	FunctionExport = ExportSpec[models.Function]{
		Title:   "Functions",
		Headers: []string{"Name", "Date"},
		Row: func(f models.Function) map[string]string {
			return map[string]string{"Name": f.Name, "Date": f.Date.String()}
		},
	}

	ParticipantExport = ExportSpec[models.Participant]{
		Title:   "Participants",
		Headers: []string{"Name", "Phone", "Attended", "Paid for post", "Certificate to post"},
		Row: func(p models.Participant) map[string]string {
			return map[string]string{
				"Name": p.Name, "Phone": p.Phone, "Attended": yesNo(p.Attended),
				"Paid for post": yesNo(p.PaidForPost), "Certificate to post": yesNo(p.CertificatePending()),
			}
		},
	}

	SocialServiceExport = ExportSpec[models.SocialService]{
		Title:   "Social Service",
		Headers: []string{"Name", "Date"},
		Row: func(s models.SocialService) map[string]string {
			return map[string]string{"Name": s.Name, "Date": s.Date.String()}
		},
	}
)
