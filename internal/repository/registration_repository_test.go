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

func newRegistrationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRegistrationRepositoryListCoursesExcludesCancelled(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT c.course_id, c.credits_num, c.course_type").
		WithArgs("SV001", 1, models.RegistrationStatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "credits_num", "course_type"}).
			AddRow("C1", 3, "Core").
			AddRow("C2", 2, "Elective"))

	courses, err := repo.ListCourses(context.Background(), "SV001", 1)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 3, courses[0].CreditsNum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCountConfirmed(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total").
		WithArgs("SV001", 1, models.RegistrationStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"total", "confirmed"}).AddRow(3, 2))

	count, err := repo.CountConfirmed(context.Background(), "SV001", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count.Total)
	assert.Equal(t, 2, count.Confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM course_registrations WHERE student_id = $1 AND course_id = $2 AND semester_id = $3 LIMIT 1")).
		WithArgs("SV001", "C1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "SV001", "C1", 1)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM course_registrations WHERE student_id = $1 AND course_id = $2 AND semester_id = $3 LIMIT 1")).
		WithArgs("SV001", "C9", 1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.Exists(context.Background(), "SV001", "C9", 1)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("INSERT INTO course_registrations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	registration := &models.Registration{StudentID: "SV001", CourseID: "C1", SemesterID: 1}
	err := repo.Create(context.Background(), registration)
	require.NoError(t, err)
	assert.NotEmpty(t, registration.ID)
	assert.Equal(t, models.RegistrationStatusRegistered, registration.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryFinalizeAll(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("UPDATE course_registrations SET registration_status").
		WithArgs("SV001", 1, models.RegistrationStatusFinalized).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.FinalizeAll(context.Background(), "SV001", 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositorySummary(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT s.first_name .+ AS student_name").
		WithArgs("SV001", 1).
		WillReturnRows(sqlmock.NewRows([]string{"student_name", "semester_name", "total_courses", "total_credits", "estimated_fee"}).
			AddRow("Alice Nguyen", "2025-1", 2, 5, "2100000"))

	summary, err := repo.Summary(context.Background(), "SV001", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCourses)
	assert.Equal(t, 5, summary.TotalCredits)
	assert.Equal(t, "2100000", summary.EstimatedGrossFee.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
