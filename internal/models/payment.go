package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one accepted payment against a fee. Rows are append-only.
type PaymentRecord struct {
	ID          int             `db:"payments_id" json:"payments_id"`
	FeeID       string          `db:"fee_id" json:"fee_id"`
	PaymentDate time.Time       `db:"payment_date" json:"payment_date"`
	AmountPaid  decimal.Decimal `db:"amount_paid" json:"amount_paid"`
}

// PaymentDetail enriches a ledger row with student and semester info.
type PaymentDetail struct {
	PaymentRecord
	StudentID    string `db:"student_id" json:"student_id"`
	StudentName  string `db:"student_name" json:"student_name"`
	SemesterName string `db:"semester_name" json:"semester_name"`
}

// PaymentResult is the outcome of reconciling one submitted payment.
type PaymentResult struct {
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	NewTotalPaid         decimal.Decimal `json:"new_total_paid"`
	EarlyPaymentDiscount decimal.Decimal `json:"early_payment_discount"`
	NewPaymentStatus     PaymentStatus   `json:"new_payment_status"`
	IsEarlyPayment       bool            `json:"is_early_payment"`
	RemainingBalance     decimal.Decimal `json:"remaining_balance"`
}
