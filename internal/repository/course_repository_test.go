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

func newCourseMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryUnmetPrerequisites(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT pc.prerequisite_course_id`).
		WithArgs("SV001", "C3", models.GradeMinimumPass).
		WillReturnRows(sqlmock.NewRows([]string{"prerequisite_course_id"}).
			AddRow("C1").
			AddRow("C2"))

	missing, err := repo.UnmetPrerequisites(context.Background(), "SV001", "C3")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUnmetPrerequisitesAllPassed(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT pc.prerequisite_course_id`).
		WithArgs("SV001", "C3", models.GradeMinimumPass).
		WillReturnRows(sqlmock.NewRows([]string{"prerequisite_course_id"}))

	missing, err := repo.UnmetPrerequisites(context.Background(), "SV001", "C3")
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, course_name, credits_num, lesson_num, course_type FROM courses WHERE course_id = $1")).
		WithArgs("C1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "course_name", "credits_num", "lesson_num", "course_type"}).
			AddRow("C1", "Algorithms", 3, 45, "Core"))

	course, err := repo.FindByID(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", course.CourseName)
	assert.Equal(t, 3, course.CreditsNum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
