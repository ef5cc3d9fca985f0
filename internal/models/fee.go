package models

import "github.com/shopspring/decimal"

// PaymentStatus represents the settlement state of a tuition fee.
type PaymentStatus string

// Possible payment statuses.
const (
	PaymentStatusUnpaid        PaymentStatus = "Unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
)

// TuitionFee is the billed/paid aggregate for one student and semester.
// TuitionFee holds the gross amount; Discount accumulates the category and
// early-payment reductions as monetary amounts.
type TuitionFee struct {
	FeeID         string          `db:"fee_id" json:"fee_id"`
	StudentID     string          `db:"student_id" json:"student_id"`
	SemesterID    int             `db:"semester_id" json:"semester_id"`
	TotalCredits  int             `db:"total_credits" json:"total_credits"`
	TuitionFee    decimal.Decimal `db:"tuition_fee" json:"tuition_fee"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	AmountPaid    decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
}

// RemainingBalance returns tuition_fee - discount - amount_paid.
func (f *TuitionFee) RemainingBalance() decimal.Decimal {
	return f.TuitionFee.Sub(f.Discount).Sub(f.AmountPaid)
}

// TuitionFeeDetail enriches TuitionFee with student and semester info.
type TuitionFeeDetail struct {
	TuitionFee
	StudentName  string `db:"student_name" json:"student_name"`
	SemesterName string `db:"semester_name" json:"semester_name"`
}

// FeeResult is the outcome of a tuition computation. TuitionFee carries the
// net amount after the category discount.
type FeeResult struct {
	FeeID         string          `json:"fee_id"`
	TotalCredits  int             `json:"total_credits"`
	TuitionFee    decimal.Decimal `json:"tuition_fee"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// CreditLimitResult reports a credit-range check without raising an error,
// leaving the caller to decide whether to block.
type CreditLimitResult struct {
	OK           bool `json:"ok"`
	MinCredits   int  `json:"min_credits"`
	MaxCredits   int  `json:"max_credits"`
	TotalCredits int  `json:"total_credits"`
}

// FeeFilter provides filters for listing tuition fees.
type FeeFilter struct {
	StudentID  string
	SemesterID int
	Status     PaymentStatus
	Page       int
	PageSize   int
}
