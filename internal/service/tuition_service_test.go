package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

type calcRegistrationSource struct {
	courses map[string][]models.RegisteredCourse
}

func (m *calcRegistrationSource) ListCourses(ctx context.Context, studentID string, semesterID int) ([]models.RegisteredCourse, error) {
	return m.courses[studentID], nil
}

type calcReferenceSource struct {
	rates []models.FeeRate
	rule  *models.CreditRule
}

func (m *calcReferenceSource) ListFeeRates(ctx context.Context) ([]models.FeeRate, error) {
	return m.rates, nil
}

func (m *calcReferenceSource) GetCreditRule(ctx context.Context, classID string, semesterID int) (*models.CreditRule, error) {
	return m.rule, nil
}

type calcStudentSource struct {
	students map[string]*models.StudentDetail
}

func (m *calcStudentSource) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type calcSemesterSource struct {
	semesters map[int]*models.Semester
}

func (m *calcSemesterSource) FindByID(ctx context.Context, id int) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type calcFeeStore struct {
	fees     map[string]*models.TuitionFee
	upserted *models.TuitionFee
}

func (m *calcFeeStore) Upsert(ctx context.Context, fee *models.TuitionFee) error {
	if fee.FeeID == "" {
		fee.FeeID = "fee-1"
	}
	if fee.PaymentStatus == "" {
		fee.PaymentStatus = models.PaymentStatusUnpaid
	}
	key := fee.StudentID
	if existing, ok := m.fees[key]; ok {
		// The conflict path refreshes computed columns only.
		existing.TotalCredits = fee.TotalCredits
		existing.TuitionFee = fee.TuitionFee
		existing.Discount = fee.Discount
		*fee = *existing
	} else {
		if m.fees == nil {
			m.fees = make(map[string]*models.TuitionFee)
		}
		stored := *fee
		m.fees[key] = &stored
	}
	copied := *fee
	m.upserted = &copied
	return nil
}

func (m *calcFeeStore) FindByStudentSemester(ctx context.Context, studentID string, semesterID int) (*models.TuitionFee, error) {
	if f, ok := m.fees[studentID]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newTuitionFixture(rule *models.CreditRule, discountPercent *int) (*TuitionService, *calcFeeStore) {
	registrations := &calcRegistrationSource{courses: map[string][]models.RegisteredCourse{
		"SV001": {
			{CourseID: "C1", CreditsNum: 3, CourseType: "Core"},
			{CourseID: "C2", CreditsNum: 2, CourseType: "Elective"},
		},
	}}
	reference := &calcReferenceSource{
		rates: []models.FeeRate{
			{CourseType: "Core", FeePerCredit: money(500_000)},
			{CourseType: "Elective", FeePerCredit: money(300_000)},
		},
		rule: rule,
	}
	students := &calcStudentSource{students: map[string]*models.StudentDetail{
		"SV001": {Student: models.Student{ID: "SV001", ClassID: "CL01"}, DiscountPercent: discountPercent},
	}}
	semesters := &calcSemesterSource{semesters: map[int]*models.Semester{1: {ID: 1, Name: "2025-1"}}}
	store := &calcFeeStore{}
	return NewTuitionService(registrations, reference, students, semesters, store, zap.NewNop()), store
}

func TestCalculateTuitionFee(t *testing.T) {
	svc, store := newTuitionFixture(nil, nil)

	result, err := svc.CalculateTuitionFee(context.Background(), "SV001", 1)
	require.NoError(t, err)

	// 3*500k + 2*300k
	assert.True(t, result.TuitionFee.Equal(money(2_100_000)), "got %s", result.TuitionFee)
	assert.Equal(t, 5, result.TotalCredits)
	assert.True(t, result.Discount.IsZero())
	assert.Equal(t, models.PaymentStatusUnpaid, result.PaymentStatus)
	require.NotNil(t, store.upserted)
	assert.True(t, store.upserted.TuitionFee.Equal(money(2_100_000)))
}

func TestCalculateTuitionFeeAppliesStudentDiscount(t *testing.T) {
	half := 50
	svc, store := newTuitionFixture(nil, &half)

	result, err := svc.CalculateTuitionFee(context.Background(), "SV001", 1)
	require.NoError(t, err)

	assert.True(t, result.Discount.Equal(money(1_050_000)), "got %s", result.Discount)
	assert.True(t, result.TuitionFee.Equal(money(1_050_000)), "got %s", result.TuitionFee)
	// The stored row keeps the gross amount; the discount lives in its own column.
	assert.True(t, store.upserted.TuitionFee.Equal(money(2_100_000)))
	assert.True(t, store.upserted.Discount.Equal(money(1_050_000)))
}

func TestCalculateTuitionFeeUnmappedCourseTypeBillsZero(t *testing.T) {
	svc, _ := newTuitionFixture(nil, nil)
	svc.registrations = &calcRegistrationSource{courses: map[string][]models.RegisteredCourse{
		"SV001": {
			{CourseID: "C1", CreditsNum: 3, CourseType: "Core"},
			{CourseID: "C9", CreditsNum: 4, CourseType: "Seminar"},
		},
	}}

	result, err := svc.CalculateTuitionFee(context.Background(), "SV001", 1)
	require.NoError(t, err)

	// Seminar has no fee rate: its credits count, its fee does not.
	assert.Equal(t, 7, result.TotalCredits)
	assert.True(t, result.TuitionFee.Equal(money(1_500_000)), "got %s", result.TuitionFee)
}

func TestCalculateTuitionFeeCreditLimitBlocksPersist(t *testing.T) {
	rule := &models.CreditRule{ClassID: "CL01", SemesterID: 1, MinCredits: 12, MaxCredits: 24}
	svc, store := newTuitionFixture(rule, nil)

	_, err := svc.CalculateTuitionFee(context.Background(), "SV001", 1)
	require.Error(t, err)

	var limitErr *appErrors.CreditLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 5, limitErr.TotalCredits)
	assert.Equal(t, 12, limitErr.MinCredits)
	assert.Nil(t, store.upserted, "fee must not be persisted on credit violation")
}

func TestCalculateTuitionFeeRecomputePreservesPayments(t *testing.T) {
	svc, store := newTuitionFixture(nil, nil)
	store.fees = map[string]*models.TuitionFee{
		"SV001": {
			FeeID:         "fee-existing",
			StudentID:     "SV001",
			SemesterID:    1,
			TotalCredits:  5,
			TuitionFee:    money(2_100_000),
			AmountPaid:    money(800_000),
			PaymentStatus: models.PaymentStatusPartiallyPaid,
		},
	}

	result, err := svc.CalculateTuitionFee(context.Background(), "SV001", 1)
	require.NoError(t, err)

	assert.Equal(t, "fee-existing", result.FeeID)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, result.PaymentStatus)
	assert.True(t, store.fees["SV001"].AmountPaid.Equal(money(800_000)))
}

func TestCalculateTuitionFeeUnknownStudent(t *testing.T) {
	svc, _ := newTuitionFixture(nil, nil)

	_, err := svc.CalculateTuitionFee(context.Background(), "missing", 1)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCheckCreditLimitWithoutRulePasses(t *testing.T) {
	svc, _ := newTuitionFixture(nil, nil)

	result, err := svc.CheckCreditLimit(context.Background(), "SV001", 1)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 5, result.TotalCredits)
}

func TestCheckCreditLimitViolation(t *testing.T) {
	rule := &models.CreditRule{ClassID: "CL01", SemesterID: 1, MinCredits: 1, MaxCredits: 4}
	svc, _ := newTuitionFixture(rule, nil)

	result, err := svc.CheckCreditLimit(context.Background(), "SV001", 1)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, 4, result.MaxCredits)
	assert.Equal(t, 5, result.TotalCredits)
}
