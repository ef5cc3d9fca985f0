package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

func newReferenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReferenceRepositoryListFeeRates(t *testing.T) {
	db, mock, cleanup := newReferenceMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_type, fee_per_credit FROM fee_rates")).
		WillReturnRows(sqlmock.NewRows([]string{"course_type", "fee_per_credit"}).
			AddRow("Core", "500000").
			AddRow("Elective", "300000"))

	rates, err := repo.ListFeeRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "Core", rates[0].CourseType)
	assert.Equal(t, "500000", rates[0].FeePerCredit.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryGetDiscountPercentMissingRow(t *testing.T) {
	db, mock, cleanup := newReferenceMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery("SELECT discount_percent FROM fee_discounts").
		WithArgs(models.DiscountTypeEarlyPayment).
		WillReturnRows(sqlmock.NewRows([]string{"discount_percent"}))

	percent, err := repo.GetDiscountPercent(context.Background(), models.DiscountTypeEarlyPayment)
	require.NoError(t, err)
	assert.Nil(t, percent, "a missing discount row is not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryGetDiscountPercent(t *testing.T) {
	db, mock, cleanup := newReferenceMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery("SELECT discount_percent FROM fee_discounts").
		WithArgs(models.DiscountTypeEarlyPayment).
		WillReturnRows(sqlmock.NewRows([]string{"discount_percent"}).AddRow(5))

	percent, err := repo.GetDiscountPercent(context.Background(), models.DiscountTypeEarlyPayment)
	require.NoError(t, err)
	require.NotNil(t, percent)
	assert.Equal(t, 5, *percent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryGetCreditRuleMissing(t *testing.T) {
	db, mock, cleanup := newReferenceMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery("SELECT class_id, semester_id, min_credits, max_credits FROM credit_rules").
		WithArgs("CL01", 1).
		WillReturnRows(sqlmock.NewRows([]string{"class_id", "semester_id", "min_credits", "max_credits"}))

	rule, err := repo.GetCreditRule(context.Background(), "CL01", 1)
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryGetCreditRule(t *testing.T) {
	db, mock, cleanup := newReferenceMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery("SELECT class_id, semester_id, min_credits, max_credits FROM credit_rules").
		WithArgs("CL01", 1).
		WillReturnRows(sqlmock.NewRows([]string{"class_id", "semester_id", "min_credits", "max_credits"}).
			AddRow("CL01", 1, 12, 24))

	rule, err := repo.GetCreditRule(context.Background(), "CL01", 1)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, 12, rule.MinCredits)
	assert.Equal(t, 24, rule.MaxCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}
