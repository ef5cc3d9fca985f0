package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type registrationCourseSource interface {
	ListCourses(ctx context.Context, studentID string, semesterID int) ([]models.RegisteredCourse, error)
}

type referenceSource interface {
	ListFeeRates(ctx context.Context) ([]models.FeeRate, error)
	GetCreditRule(ctx context.Context, classID string, semesterID int) (*models.CreditRule, error)
}

type studentSource interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type semesterSource interface {
	FindByID(ctx context.Context, id int) (*models.Semester, error)
}

type feeStore interface {
	Upsert(ctx context.Context, fee *models.TuitionFee) error
	FindByStudentSemester(ctx context.Context, studentID string, semesterID int) (*models.TuitionFee, error)
}

// TuitionService computes tuition fees and validates credit limits.
type TuitionService struct {
	registrations registrationCourseSource
	reference     referenceSource
	students      studentSource
	semesters     semesterSource
	fees          feeStore
	logger        *zap.Logger
}

// NewTuitionService constructs TuitionService.
func NewTuitionService(registrations registrationCourseSource, reference referenceSource, students studentSource, semesters semesterSource, fees feeStore, logger *zap.Logger) *TuitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TuitionService{registrations: registrations, reference: reference, students: students, semesters: semesters, fees: fees, logger: logger}
}

// CalculateTuitionFee aggregates a student's registered courses for a
// semester into a billed amount, applies the student's category discount and
// upserts the fee record keyed by (student, semester). A recompute never
// touches amount_paid or payment_status. Credit totals outside the class
// credit rule abort before anything is persisted.
func (s *TuitionService) CalculateTuitionFee(ctx context.Context, studentID string, semesterID int) (*models.FeeResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.semesters.FindByID(ctx, semesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	courses, err := s.registrations.ListCourses(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}

	rates, err := s.feeRatesByType(ctx)
	if err != nil {
		return nil, err
	}

	totalCredits := 0
	grossFee := decimal.Zero
	for _, course := range courses {
		totalCredits += course.CreditsNum
		// An unmapped course type contributes a zero rate. The silent
		// zero matches the billing rules this engine replaces.
		rate := rates[course.CourseType]
		grossFee = grossFee.Add(rate.Mul(decimal.NewFromInt(int64(course.CreditsNum))))
	}

	rule, err := s.reference.GetCreditRule(ctx, student.ClassID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credit rule")
	}
	if rule != nil && (totalCredits < rule.MinCredits || totalCredits > rule.MaxCredits) {
		return nil, &appErrors.CreditLimitError{MinCredits: rule.MinCredits, MaxCredits: rule.MaxCredits, TotalCredits: totalCredits}
	}

	discountPercent := 0
	if student.DiscountPercent != nil {
		discountPercent = *student.DiscountPercent
	}
	discountAmount := grossFee.Mul(decimal.NewFromInt(int64(discountPercent))).Div(decimal.NewFromInt(100))
	finalFee := grossFee.Sub(discountAmount)

	fee := &models.TuitionFee{
		StudentID:    studentID,
		SemesterID:   semesterID,
		TotalCredits: totalCredits,
		TuitionFee:   grossFee,
		Discount:     discountAmount,
		AmountPaid:   decimal.Zero,
	}
	if err := s.fees.Upsert(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist tuition fee")
	}

	s.logger.Info("tuition fee calculated",
		zap.String("student_id", studentID),
		zap.Int("semester_id", semesterID),
		zap.Int("total_credits", totalCredits),
		zap.String("gross_fee", grossFee.String()),
		zap.String("discount", discountAmount.String()))

	return &models.FeeResult{
		FeeID:         fee.FeeID,
		TotalCredits:  totalCredits,
		TuitionFee:    finalFee,
		Discount:      discountAmount,
		PaymentStatus: fee.PaymentStatus,
	}, nil
}

// CheckCreditLimit reports whether the student's current registration total
// for the semester sits inside the configured credit rule. A class/semester
// without a rule passes vacuously.
func (s *TuitionService) CheckCreditLimit(ctx context.Context, studentID string, semesterID int) (*models.CreditLimitResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	courses, err := s.registrations.ListCourses(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	totalCredits := 0
	for _, course := range courses {
		totalCredits += course.CreditsNum
	}

	rule, err := s.reference.GetCreditRule(ctx, student.ClassID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credit rule")
	}
	if rule == nil {
		return &models.CreditLimitResult{OK: true, TotalCredits: totalCredits}, nil
	}

	return &models.CreditLimitResult{
		OK:           totalCredits >= rule.MinCredits && totalCredits <= rule.MaxCredits,
		MinCredits:   rule.MinCredits,
		MaxCredits:   rule.MaxCredits,
		TotalCredits: totalCredits,
	}, nil
}

func (s *TuitionService) feeRatesByType(ctx context.Context) (map[string]decimal.Decimal, error) {
	rates, err := s.reference.ListFeeRates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee rates")
	}
	byType := make(map[string]decimal.Decimal, len(rates))
	for _, rate := range rates {
		byType[rate.CourseType] = rate.FeePerCredit
	}
	return byType, nil
}
