package models

import "time"

// Setting is a key/value pair edited from the settings page.
type Setting struct {
	Base
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// SettingDraft backs the setting form.
type SettingDraft struct {
	Key   string `db:"key" json:"key" validate:"notblank"`
	Value string `db:"value" json:"value"`
}

// Security toggle names.
const (
	SecurityTwoFactorAuth      = "two_factor_auth"
	SecurityEmailNotifications = "email_notifications"
	SecuritySessionManagement  = "session_management"
	SecurityLoginNotifications = "login_notifications"
	SecurityDeviceTracking     = "device_tracking"
)

// SecuritySettings holds the per-user security toggles.
type SecuritySettings struct {
	UserID             string    `db:"user_id" json:"user_id"`
	TwoFactorAuth      bool      `db:"two_factor_auth" json:"two_factor_auth"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	SessionManagement  bool      `db:"session_management" json:"session_management"`
	LoginNotifications bool      `db:"login_notifications" json:"login_notifications"`
	DeviceTracking     bool      `db:"device_tracking" json:"device_tracking"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultSecuritySettings returns the toggles a user starts with.
func DefaultSecuritySettings(userID string) SecuritySettings {
	return SecuritySettings{
		UserID:             userID,
		EmailNotifications: true,
		SessionManagement:  true,
		LoginNotifications: true,
	}
}

// Toggle returns a pointer to the named flag, or nil for an unknown name.
func (s *SecuritySettings) Toggle(name string) *bool {
	switch name {
	case SecurityTwoFactorAuth:
		return &s.TwoFactorAuth
	case SecurityEmailNotifications:
		return &s.EmailNotifications
	case SecuritySessionManagement:
		return &s.SessionManagement
	case SecurityLoginNotifications:
		return &s.LoginNotifications
	case SecurityDeviceTracking:
		return &s.DeviceTracking
	default:
		return nil
	}
}

// DashboardStats are the counts shown on the console landing page.
type DashboardStats struct {
	TotalStudents     int       `db:"total_students" json:"total_students"`
	ActiveStudents    int       `db:"active_students" json:"active_students"`
	TotalInstructors  int       `db:"total_instructors" json:"total_instructors"`
	TotalCourses      int       `db:"total_courses" json:"total_courses"`
	ActiveCourses     int       `db:"active_courses" json:"active_courses"`
	TotalClasses      int       `db:"total_classes" json:"total_classes"`
	GalleryItems      int       `db:"gallery_items" json:"gallery_items"`
	TotalEnrollments  int       `db:"total_enrollments" json:"total_enrollments"`
	TotalFunctions    int       `db:"total_functions" json:"total_functions"`
	TotalParticipants int       `db:"total_participants" json:"total_participants"`
	GeneratedAt       time.Time `db:"-" json:"generated_at"`
}

// TableProbe is the outcome of a connectivity check against one table.
type TableProbe struct {
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
	Count  int    `json:"count"`
}
