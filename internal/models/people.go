package models

import "github.com/lib/pq"

// Student statuses.
const (
	StudentActive    = "active"
	StudentInactive  = "inactive"
	StudentGraduated = "graduated"
)

// Student is an enrolled learner.
type Student struct {
	Base
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	StudentCode  string `db:"student_code" json:"student_code"`
	Course       string `db:"course" json:"course"`
	ClassCode    string `db:"class_code" json:"class_code"`
	Status       string `db:"status" json:"status"`
	EnrolledDate Date   `db:"enrolled_date" json:"enrolled_date"`
	Phone        string `db:"phone" json:"phone"`
	AvatarURL    string `db:"avatar_url" json:"avatar_url"`
}

// StudentDraft backs the student form.
type StudentDraft struct {
	Name         string `db:"name" json:"name" validate:"notblank"`
	Email        string `db:"email" json:"email" validate:"notblank,email"`
	StudentCode  string `db:"student_code" json:"student_code"`
	Course       string `db:"course" json:"course"`
	ClassCode    string `db:"class_code" json:"class_code"`
	Status       string `db:"status" json:"status" validate:"oneof=active inactive graduated"`
	EnrolledDate Date   `db:"enrolled_date" json:"enrolled_date"`
	Phone        string `db:"phone" json:"phone"`
	AvatarURL    string `db:"avatar_url" json:"avatar_url"`
}

// Instructor is a teaching staff member with assigned class codes.
type Instructor struct {
	Base
	Name            string         `db:"name" json:"name"`
	Email           string         `db:"email" json:"email"`
	Phone           string         `db:"phone" json:"phone"`
	Department      string         `db:"department" json:"department"`
	Status          string         `db:"status" json:"status"`
	AssignedClasses pq.StringArray `db:"assigned_classes" json:"assigned_classes"`
}

// InstructorDraft backs the instructor form.
type InstructorDraft struct {
	Name            string         `db:"name" json:"name" validate:"notblank"`
	Email           string         `db:"email" json:"email" validate:"notblank,email"`
	Phone           string         `db:"phone" json:"phone"`
	Department      string         `db:"department" json:"department"`
	Status          string         `db:"status" json:"status" validate:"oneof=active inactive"`
	AssignedClasses pq.StringArray `db:"assigned_classes" json:"assigned_classes"`
}

// Staff is a non-teaching employee.
type Staff struct {
	Base
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Phone  string `db:"phone" json:"phone"`
	Role   string `db:"role" json:"role"`
	Status string `db:"status" json:"status"`
}

// StaffDraft backs the staff form.
type StaffDraft struct {
	Name   string `db:"name" json:"name" validate:"notblank"`
	Email  string `db:"email" json:"email" validate:"notblank,email"`
	Phone  string `db:"phone" json:"phone"`
	Role   string `db:"role" json:"role"`
	Status string `db:"status" json:"status" validate:"oneof=active inactive"`
}
