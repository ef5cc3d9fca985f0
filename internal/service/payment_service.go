package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type feeReconciler interface {
	FindByID(ctx context.Context, feeID string) (*models.TuitionFee, error)
	ReconcilePayment(ctx context.Context, feeID string, apply func(fee *models.TuitionFee, priorPayments int) (*models.PaymentRecord, error)) (*models.TuitionFee, error)
	List(ctx context.Context, filter models.FeeFilter) ([]models.TuitionFeeDetail, int, error)
}

type paymentLedger interface {
	List(ctx context.Context, feeID string, page, pageSize int) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, paymentID int) (*models.PaymentDetail, error)
}

type discountPercentSource interface {
	GetDiscountPercent(ctx context.Context, discountType string) (*int, error)
}

// PaymentService reconciles submitted payments against tuition fees and
// serves the fee and ledger read paths.
type PaymentService struct {
	fees            feeReconciler
	payments        paymentLedger
	reference       discountPercentSource
	semesters       semesterSource
	fallbackPercent int
	logger          *zap.Logger
}

// NewPaymentService constructs PaymentService. fallbackPercent applies when
// the "Early Payment" discount row is missing from reference data.
func NewPaymentService(fees feeReconciler, payments paymentLedger, reference discountPercentSource, semesters semesterSource, fallbackPercent int, logger *zap.Logger) *PaymentService {
	if fallbackPercent <= 0 {
		fallbackPercent = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{fees: fees, payments: payments, reference: reference, semesters: semesters, fallbackPercent: fallbackPercent, logger: logger}
}

// ProcessPayment applies one submitted payment to a fee. The accepted amount
// is capped to the remaining balance; a first, full, on-time payment earns
// the one-time early-payment discount. Fee mutation and the ledger append
// run inside one row-locking transaction owned by the fee store.
func (s *PaymentService) ProcessPayment(ctx context.Context, feeID string, amountPaid decimal.Decimal, paymentDate time.Time) (*models.PaymentResult, error) {
	if amountPaid.LessThanOrEqual(decimal.Zero) {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "")
	}

	fee, err := s.fees.FindByID(ctx, feeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}

	semester, err := s.semesters.FindByID(ctx, fee.SemesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	earlyPercent, err := s.earlyPaymentPercent(ctx)
	if err != nil {
		return nil, err
	}

	var result models.PaymentResult
	updated, err := s.fees.ReconcilePayment(ctx, feeID, func(fee *models.TuitionFee, priorPayments int) (*models.PaymentRecord, error) {
		remaining := fee.RemainingBalance()
		if remaining.LessThanOrEqual(decimal.Zero) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "fee already settled")
		}

		isEarly := priorPayments == 0 &&
			amountPaid.GreaterThanOrEqual(remaining) &&
			semester.EarlyPaymentDeadline != nil &&
			!paymentDate.After(*semester.EarlyPaymentDeadline)

		earlyDiscount := decimal.Zero
		if isEarly {
			earlyDiscount = fee.TuitionFee.Mul(decimal.NewFromInt(int64(earlyPercent))).Div(decimal.NewFromInt(100))
		}

		// The cap uses the pre-transaction balance; the early discount
		// only affects the settled threshold, not the accepted amount.
		actual := amountPaid
		if actual.GreaterThan(remaining) {
			actual = remaining
		}

		fee.Discount = fee.Discount.Add(earlyDiscount)
		fee.AmountPaid = fee.AmountPaid.Add(actual)
		if fee.AmountPaid.GreaterThanOrEqual(fee.TuitionFee.Sub(fee.Discount)) {
			fee.PaymentStatus = models.PaymentStatusPaid
		} else {
			fee.PaymentStatus = models.PaymentStatusPartiallyPaid
		}

		newRemaining := fee.RemainingBalance()
		if newRemaining.LessThan(decimal.Zero) {
			newRemaining = decimal.Zero
		}
		result = models.PaymentResult{
			AmountPaid:           actual,
			NewTotalPaid:         fee.AmountPaid,
			EarlyPaymentDiscount: earlyDiscount,
			NewPaymentStatus:     fee.PaymentStatus,
			IsEarlyPayment:       isEarly,
			RemainingBalance:     newRemaining,
		}

		return &models.PaymentRecord{FeeID: fee.FeeID, PaymentDate: paymentDate, AmountPaid: actual}, nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reconcile payment")
	}

	s.logger.Info("payment reconciled",
		zap.String("fee_id", feeID),
		zap.String("accepted_amount", result.AmountPaid.String()),
		zap.String("new_total_paid", updated.AmountPaid.String()),
		zap.Bool("early_payment", result.IsEarlyPayment),
		zap.String("payment_status", string(updated.PaymentStatus)))

	return &result, nil
}

// GetFee returns a fee record by its ID.
func (s *PaymentService) GetFee(ctx context.Context, feeID string) (*models.TuitionFee, error) {
	fee, err := s.fees.FindByID(ctx, feeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}
	return fee, nil
}

// ListFees returns tuition fees with pagination metadata.
func (s *PaymentService) ListFees(ctx context.Context, filter models.FeeFilter) ([]models.TuitionFeeDetail, *models.Pagination, error) {
	fees, total, err := s.fees.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return fees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListPayments returns ledger entries with pagination metadata.
func (s *PaymentService) ListPayments(ctx context.Context, feeID string, page, pageSize int) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, feeID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// GetPayment returns a ledger entry by its ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID int) (*models.PaymentDetail, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

func (s *PaymentService) earlyPaymentPercent(ctx context.Context) (int, error) {
	percent, err := s.reference.GetDiscountPercent(ctx, models.DiscountTypeEarlyPayment)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load early payment discount")
	}
	if percent == nil {
		return s.fallbackPercent, nil
	}
	return *percent, nil
}
