package models

import "time"

// Semester models an academic semester and its billing deadlines.
type Semester struct {
	ID                   int        `db:"semester_id" json:"semester_id"`
	Name                 string     `db:"semester_name" json:"semester_name"`
	StartDate            time.Time  `db:"start_date" json:"start_date"`
	EndDate              time.Time  `db:"end_date" json:"end_date"`
	RegistrationDeadline *time.Time `db:"registration_deadline" json:"registration_deadline,omitempty"`
	EarlyPaymentDeadline *time.Time `db:"early_payment_deadline" json:"early_payment_deadline,omitempty"`
	PaymentDeadline      *time.Time `db:"payment_deadline" json:"payment_deadline,omitempty"`
}
