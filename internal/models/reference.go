package models

import "github.com/shopspring/decimal"

// DiscountTypeEarlyPayment names the one-time early settlement discount in
// the Fee_Discounts reference table.
const DiscountTypeEarlyPayment = "Early Payment"

// FeeRate maps a course type to its per-credit fee.
type FeeRate struct {
	CourseType   string          `db:"course_type" json:"course_type"`
	FeePerCredit decimal.Decimal `db:"fee_per_credit" json:"fee_per_credit"`
}

// Discount is a percentage reduction resolved by category.
type Discount struct {
	ID              int    `db:"discount_id" json:"discount_id"`
	DiscountType    string `db:"discount_type" json:"discount_type"`
	DiscountPercent int    `db:"discount_percent" json:"discount_percent"`
}

// CreditRule bounds total credits for a class within a semester.
type CreditRule struct {
	ClassID    string `db:"class_id" json:"class_id"`
	SemesterID int    `db:"semester_id" json:"semester_id"`
	MinCredits int    `db:"min_credits" json:"min_credits"`
	MaxCredits int    `db:"max_credits" json:"max_credits"`
}
