package models

import "time"

// Student represents a university student row.
type Student struct {
	ID             string     `db:"student_id" json:"student_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender         string     `db:"gender" json:"gender"`
	Hometown       string     `db:"hometown" json:"hometown"`
	DiscountID     *int       `db:"discount_id" json:"discount_id,omitempty"`
	ContactAddress string     `db:"contact_address" json:"contact_address"`
	ClassID        string     `db:"class_id" json:"class_id"`
}

// StudentDetail enriches Student with the resolved discount category.
type StudentDetail struct {
	Student
	DiscountType    *string `db:"discount_type" json:"discount_type,omitempty"`
	DiscountPercent *int    `db:"discount_percent" json:"discount_percent,omitempty"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	ClassID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
