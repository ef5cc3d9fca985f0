package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationStatus represents the lifecycle of a course registration.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusRegistered RegistrationStatus = "Registered"
	RegistrationStatusConfirmed  RegistrationStatus = "Confirmed"
	RegistrationStatusCancelled  RegistrationStatus = "Cancelled"
	RegistrationStatusFinalized  RegistrationStatus = "Finalized"
)

// Registration captures a student's registration for a course in a semester.
type Registration struct {
	ID               string             `db:"registration_id" json:"registration_id"`
	StudentID        string             `db:"student_id" json:"student_id"`
	CourseID         string             `db:"course_id" json:"course_id"`
	SemesterID       int                `db:"semester_id" json:"semester_id"`
	RegistrationDate time.Time          `db:"registration_date" json:"registration_date"`
	Status           RegistrationStatus `db:"registration_status" json:"registration_status"`
}

// RegistrationDetail enriches Registration with course and student info.
type RegistrationDetail struct {
	Registration
	CourseName   string `db:"course_name" json:"course_name"`
	CreditsNum   int    `db:"credits_num" json:"credits_num"`
	CourseType   string `db:"course_type" json:"course_type"`
	StudentName  string `db:"student_name" json:"student_name"`
	SemesterName string `db:"semester_name" json:"semester_name"`
}

// RegistrationFilter provides filters for listing registrations.
type RegistrationFilter struct {
	StudentID  string
	CourseID   string
	SemesterID int
	Status     RegistrationStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// RegisteredCourse is the billing view of one registration: the course
// credits and type the fee engine aggregates over.
type RegisteredCourse struct {
	CourseID   string `db:"course_id" json:"course_id"`
	CreditsNum int    `db:"credits_num" json:"credits_num"`
	CourseType string `db:"course_type" json:"course_type"`
}

// ConfirmationCount pairs total registrations with the confirmed subset.
type ConfirmationCount struct {
	Total     int `db:"total"`
	Confirmed int `db:"confirmed"`
}

// RegistrationSummary aggregates a student's semester registrations.
type RegistrationSummary struct {
	StudentName       string          `db:"student_name" json:"student_name"`
	SemesterName      string          `db:"semester_name" json:"semester_name"`
	TotalCourses      int             `db:"total_courses" json:"total_courses"`
	TotalCredits      int             `db:"total_credits" json:"total_credits"`
	EstimatedGrossFee decimal.Decimal `db:"estimated_fee" json:"estimated_gross_fee"`
}
