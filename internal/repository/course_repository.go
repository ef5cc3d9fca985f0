package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// CourseRepository handles course persistence.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses filtered by the provided criteria.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := `FROM courses c`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(c.course_name ILIKE $%d OR c.course_id ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CourseType != "" {
		conditions = append(conditions, fmt.Sprintf("c.course_type = $%d", len(args)+1))
		args = append(args, filter.CourseType)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.course_id, c.course_name, c.credits_num, c.lesson_num, c.course_type
        %s ORDER BY c.course_id ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT course_id, course_name, credits_num, lesson_num, course_type FROM courses WHERE course_id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// UnmetPrerequisites returns the prerequisite course IDs the student has
// not passed for the given course. A prerequisite is unmet when the
// student has no recorded result for it or the recorded grade is below
// the minimum passing grade.
func (r *CourseRepository) UnmetPrerequisites(ctx context.Context, studentID, courseID string) ([]string, error) {
	const query = `SELECT pc.prerequisite_course_id
        FROM prerequisite_courses pc
        LEFT JOIN course_results cr
            ON cr.course_id = pc.prerequisite_course_id AND cr.student_id = $1
        WHERE pc.course_id = $2 AND (cr.grade IS NULL OR cr.grade > $3)
        ORDER BY pc.prerequisite_course_id`
	var missing []string
	if err := r.db.SelectContext(ctx, &missing, query, studentID, courseID, models.GradeMinimumPass); err != nil {
		return nil, fmt.Errorf("list unmet prerequisites: %w", err)
	}
	return missing, nil
}

// Create persists a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (course_id, course_name, credits_num, lesson_num, course_type)
        VALUES (:course_id, :course_name, :credits_num, :lesson_num, :course_type)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites a course record.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) (int64, error) {
	const query = `UPDATE courses SET course_name = :course_name, credits_num = :credits_num, lesson_num = :lesson_num, course_type = :course_type
        WHERE course_id = :course_id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return 0, fmt.Errorf("update course: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a course record.
func (r *CourseRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM courses WHERE course_id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete course: %w", err)
	}
	return res.RowsAffected()
}
