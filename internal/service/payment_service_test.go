package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type payFeeStore struct {
	fees    map[string]*models.TuitionFee
	ledger  map[string][]models.PaymentRecord
	applied int
}

func (m *payFeeStore) FindByID(ctx context.Context, feeID string) (*models.TuitionFee, error) {
	if f, ok := m.fees[feeID]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *payFeeStore) ReconcilePayment(ctx context.Context, feeID string, apply func(fee *models.TuitionFee, priorPayments int) (*models.PaymentRecord, error)) (*models.TuitionFee, error) {
	stored, ok := m.fees[feeID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	fee := *stored
	record, err := apply(&fee, len(m.ledger[feeID]))
	if err != nil {
		return nil, err
	}
	*stored = fee
	if m.ledger == nil {
		m.ledger = make(map[string][]models.PaymentRecord)
	}
	m.ledger[feeID] = append(m.ledger[feeID], *record)
	m.applied++
	return &fee, nil
}

func (m *payFeeStore) List(ctx context.Context, filter models.FeeFilter) ([]models.TuitionFeeDetail, int, error) {
	return nil, 0, nil
}

type payLedgerStub struct {
	payments map[int]*models.PaymentDetail
}

func (m *payLedgerStub) List(ctx context.Context, feeID string, page, pageSize int) ([]models.PaymentDetail, int, error) {
	return nil, 0, nil
}

func (m *payLedgerStub) FindByID(ctx context.Context, paymentID int) (*models.PaymentDetail, error) {
	if p, ok := m.payments[paymentID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type payDiscountStub struct {
	percent *int
}

func (m *payDiscountStub) GetDiscountPercent(ctx context.Context, discountType string) (*int, error) {
	return m.percent, nil
}

func feeDeadline(t time.Time) *time.Time { return &t }

func newPaymentFixture(fee *models.TuitionFee, earlyPercent *int, deadline *time.Time) (*PaymentService, *payFeeStore) {
	store := &payFeeStore{fees: map[string]*models.TuitionFee{fee.FeeID: fee}}
	semesters := &calcSemesterSource{semesters: map[int]*models.Semester{
		fee.SemesterID: {ID: fee.SemesterID, Name: "2025-1", EarlyPaymentDeadline: deadline},
	}}
	svc := NewPaymentService(store, &payLedgerStub{}, &payDiscountStub{percent: earlyPercent}, semesters, 5, zap.NewNop())
	return svc, store
}

func unpaidFee(amount int64) *models.TuitionFee {
	return &models.TuitionFee{
		FeeID:         "fee-1",
		StudentID:     "SV001",
		SemesterID:    1,
		TotalCredits:  10,
		TuitionFee:    money(amount),
		Discount:      decimal.Zero,
		AmountPaid:    decimal.Zero,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
}

func TestProcessPaymentEarlySettlement(t *testing.T) {
	deadline := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	five := 5
	svc, store := newPaymentFixture(unpaidFee(1_000_000), &five, feeDeadline(deadline))

	result, err := svc.ProcessPayment(context.Background(), "fee-1", money(1_000_000), deadline.AddDate(0, 0, -1))
	require.NoError(t, err)

	assert.True(t, result.IsEarlyPayment)
	assert.True(t, result.EarlyPaymentDiscount.Equal(money(50_000)), "got %s", result.EarlyPaymentDiscount)
	assert.True(t, result.AmountPaid.Equal(money(1_000_000)))
	assert.Equal(t, models.PaymentStatusPaid, result.NewPaymentStatus)
	assert.True(t, result.RemainingBalance.IsZero())

	stored := store.fees["fee-1"]
	assert.True(t, stored.Discount.Equal(money(50_000)))
	assert.True(t, stored.AmountPaid.Equal(money(1_000_000)))
	assert.Len(t, store.ledger["fee-1"], 1)
}

func TestProcessPaymentPartialEarnsNoDiscount(t *testing.T) {
	deadline := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	svc, store := newPaymentFixture(unpaidFee(1_000_000), nil, feeDeadline(deadline))

	result, err := svc.ProcessPayment(context.Background(), "fee-1", money(400_000), deadline.AddDate(0, 0, -1))
	require.NoError(t, err)

	assert.False(t, result.IsEarlyPayment)
	assert.True(t, result.EarlyPaymentDiscount.IsZero())
	assert.Equal(t, models.PaymentStatusPartiallyPaid, result.NewPaymentStatus)
	assert.True(t, result.RemainingBalance.Equal(money(600_000)), "got %s", result.RemainingBalance)
	assert.True(t, store.fees["fee-1"].Discount.IsZero())
}

func TestProcessPaymentAfterDeadlineEarnsNoDiscount(t *testing.T) {
	deadline := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	svc, _ := newPaymentFixture(unpaidFee(1_000_000), nil, feeDeadline(deadline))

	result, err := svc.ProcessPayment(context.Background(), "fee-1", money(1_000_000), deadline.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.False(t, result.IsEarlyPayment)
	assert.Equal(t, models.PaymentStatusPaid, result.NewPaymentStatus)
}

func TestProcessPaymentSecondPaymentNeverEarly(t *testing.T) {
	deadline := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	fee := unpaidFee(1_000_000)
	fee.AmountPaid = money(800_000)
	fee.PaymentStatus = models.PaymentStatusPartiallyPaid
	svc, store := newPaymentFixture(fee, nil, feeDeadline(deadline))
	store.ledger = map[string][]models.PaymentRecord{"fee-1": {{ID: 1, FeeID: "fee-1", AmountPaid: money(800_000)}}}

	result, err := svc.ProcessPayment(context.Background(), "fee-1", money(500_000), deadline.AddDate(0, 0, -1))
	require.NoError(t, err)

	assert.False(t, result.IsEarlyPayment)
	// Acceptance is capped to the 200k remaining balance.
	assert.True(t, result.AmountPaid.Equal(money(200_000)), "got %s", result.AmountPaid)
	assert.True(t, result.NewTotalPaid.Equal(money(1_000_000)))
	assert.Equal(t, models.PaymentStatusPaid, result.NewPaymentStatus)
	assert.True(t, result.RemainingBalance.IsZero())
}

func TestProcessPaymentSettledFeeRejected(t *testing.T) {
	fee := unpaidFee(1_000_000)
	fee.AmountPaid = money(1_000_000)
	fee.PaymentStatus = models.PaymentStatusPaid
	svc, store := newPaymentFixture(fee, nil, nil)

	_, err := svc.ProcessPayment(context.Background(), "fee-1", money(100_000), time.Now())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Empty(t, store.ledger["fee-1"], "no ledger entry on rejected payment")
}

func TestProcessPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, store := newPaymentFixture(unpaidFee(1_000_000), nil, nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, money(-500)} {
		_, err := svc.ProcessPayment(context.Background(), "fee-1", amount, time.Now())
		require.Error(t, err)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidAmount.Code, appErr.Code)
	}
	assert.Zero(t, store.applied)
}

func TestProcessPaymentEarlyDiscountFallbackPercent(t *testing.T) {
	deadline := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	// No "Early Payment" row in reference data: the configured 5% applies.
	svc, _ := newPaymentFixture(unpaidFee(2_000_000), nil, feeDeadline(deadline))

	result, err := svc.ProcessPayment(context.Background(), "fee-1", money(2_000_000), deadline)
	require.NoError(t, err)
	assert.True(t, result.IsEarlyPayment)
	assert.True(t, result.EarlyPaymentDiscount.Equal(money(100_000)), "got %s", result.EarlyPaymentDiscount)
}

func TestProcessPaymentEarlyDiscountFromReference(t *testing.T) {
	deadline := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	ten := 10
	svc, _ := newPaymentFixture(unpaidFee(2_000_000), &ten, feeDeadline(deadline))

	result, err := svc.ProcessPayment(context.Background(), "fee-1", money(2_000_000), deadline)
	require.NoError(t, err)
	assert.True(t, result.EarlyPaymentDiscount.Equal(money(200_000)), "got %s", result.EarlyPaymentDiscount)
}

func TestProcessPaymentUnknownFee(t *testing.T) {
	svc, _ := newPaymentFixture(unpaidFee(1_000_000), nil, nil)

	_, err := svc.ProcessPayment(context.Background(), "missing", money(100_000), time.Now())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetPayment(t *testing.T) {
	ledger := &payLedgerStub{payments: map[int]*models.PaymentDetail{
		7: {PaymentRecord: models.PaymentRecord{ID: 7, FeeID: "fee-1", AmountPaid: money(250_000)}, StudentID: "SV001"},
	}}
	svc := NewPaymentService(&payFeeStore{}, ledger, &payDiscountStub{}, &calcSemesterSource{}, 5, zap.NewNop())

	payment, err := svc.GetPayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "SV001", payment.StudentID)

	_, err = svc.GetPayment(context.Background(), 99)
	require.Error(t, err)
}
