package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

func newFeeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func feeColumns() []string {
	return []string{"fee_id", "student_id", "semester_id", "total_credits", "tuition_fee", "discount", "amount_paid", "payment_status"}
}

func TestFeeRepositoryUpsertInsertsAndReloads(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO tuition_fees").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT fee_id, student_id, semester_id, total_credits, tuition_fee, discount, amount_paid, payment_status FROM tuition_fees WHERE student_id = $1 AND semester_id = $2")).
		WithArgs("SV001", 1).
		WillReturnRows(sqlmock.NewRows(feeColumns()).
			AddRow("fee-1", "SV001", 1, 5, "2100000", "0", "0", "Unpaid"))

	fee := &models.TuitionFee{
		StudentID:    "SV001",
		SemesterID:   1,
		TotalCredits: 5,
		TuitionFee:   decimal.NewFromInt(2_100_000),
		Discount:     decimal.Zero,
		AmountPaid:   decimal.Zero,
	}
	err := repo.Upsert(context.Background(), fee)
	require.NoError(t, err)
	assert.Equal(t, "fee-1", fee.FeeID)
	assert.Equal(t, models.PaymentStatusUnpaid, fee.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryUpsertConflictKeepsPaidState(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO tuition_fees").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The reload surfaces amount_paid and payment_status of the existing row.
	mock.ExpectQuery("SELECT .+ FROM tuition_fees WHERE student_id").
		WithArgs("SV001", 1).
		WillReturnRows(sqlmock.NewRows(feeColumns()).
			AddRow("fee-existing", "SV001", 1, 6, "2400000", "0", "800000", "Partially Paid"))

	fee := &models.TuitionFee{
		StudentID:    "SV001",
		SemesterID:   1,
		TotalCredits: 6,
		TuitionFee:   decimal.NewFromInt(2_400_000),
	}
	err := repo.Upsert(context.Background(), fee)
	require.NoError(t, err)
	assert.Equal(t, "fee-existing", fee.FeeID)
	assert.True(t, fee.AmountPaid.Equal(decimal.NewFromInt(800_000)))
	assert.Equal(t, models.PaymentStatusPartiallyPaid, fee.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryReconcilePaymentCommitsAsUnit(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	paymentDate := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM tuition_fees WHERE fee_id = .+ FOR UPDATE").
		WithArgs("fee-1").
		WillReturnRows(sqlmock.NewRows(feeColumns()).
			AddRow("fee-1", "SV001", 1, 5, "1000000", "0", "0", "Unpaid"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM fee_payments WHERE fee_id = $1")).
		WithArgs("fee-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE tuition_fees SET amount_paid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO fee_payments").
		WithArgs("fee-1", paymentDate, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	updated, err := repo.ReconcilePayment(context.Background(), "fee-1", func(fee *models.TuitionFee, priorPayments int) (*models.PaymentRecord, error) {
		assert.Zero(t, priorPayments)
		fee.AmountPaid = fee.AmountPaid.Add(decimal.NewFromInt(400_000))
		fee.PaymentStatus = models.PaymentStatusPartiallyPaid
		return &models.PaymentRecord{FeeID: fee.FeeID, PaymentDate: paymentDate, AmountPaid: decimal.NewFromInt(400_000)}, nil
	})
	require.NoError(t, err)
	assert.True(t, updated.AmountPaid.Equal(decimal.NewFromInt(400_000)))
	assert.Equal(t, models.PaymentStatusPartiallyPaid, updated.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryReconcilePaymentRollsBackOnApplyError(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM tuition_fees WHERE fee_id = .+ FOR UPDATE").
		WithArgs("fee-1").
		WillReturnRows(sqlmock.NewRows(feeColumns()).
			AddRow("fee-1", "SV001", 1, 5, "1000000", "0", "1000000", "Paid"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM fee_payments WHERE fee_id = $1")).
		WithArgs("fee-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.ReconcilePayment(context.Background(), "fee-1", func(fee *models.TuitionFee, priorPayments int) (*models.PaymentRecord, error) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "fee already settled")
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryList(t *testing.T) {
	db, mock, cleanup := newFeeMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	columns := append(feeColumns(), "student_name", "semester_name")
	mock.ExpectQuery("SELECT tf.fee_id, .+ FROM tuition_fees tf").
		WithArgs("SV001").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("fee-1", "SV001", 1, 5, "2100000", "0", "0", "Unpaid", "Alice Nguyen", "2025-1"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tuition_fees tf").
		WithArgs("SV001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	fees, total, err := repo.List(context.Background(), models.FeeFilter{StudentID: "SV001"})
	require.NoError(t, err)
	assert.Len(t, fees, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Alice Nguyen", fees[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
