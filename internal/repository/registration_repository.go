package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// RegistrationRepository handles persistence of course registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	base := `FROM course_registrations reg
LEFT JOIN students s ON s.student_id = reg.student_id
LEFT JOIN courses c ON c.course_id = reg.course_id
LEFT JOIN semesters sem ON sem.semester_id = reg.semester_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("reg.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("reg.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SemesterID != 0 {
		conditions = append(conditions, fmt.Sprintf("reg.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("reg.registration_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"registration_date": "reg.registration_date",
		"student_name":      "student_name",
		"course_name":       "c.course_name",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "registration_date"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "reg.registration_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT reg.registration_id, reg.student_id, reg.course_id, reg.semester_id, reg.registration_date, reg.registration_status,
        c.course_name, c.credits_num, c.course_type,
        s.first_name || ' ' || s.last_name AS student_name, sem.semester_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	const query = `SELECT registration_id, student_id, course_id, semester_id, registration_date, registration_status FROM course_registrations WHERE registration_id = $1`
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// Exists checks whether the student already registered the course for the semester.
func (r *RegistrationRepository) Exists(ctx context.Context, studentID, courseID string, semesterID int) (bool, error) {
	const query = `SELECT 1 FROM course_registrations WHERE student_id = $1 AND course_id = $2 AND semester_id = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, semesterID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// Create persists a new registration record.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.RegistrationDate.IsZero() {
		registration.RegistrationDate = time.Now().UTC()
	}
	if registration.Status == "" {
		registration.Status = models.RegistrationStatusRegistered
	}
	const query = `INSERT INTO course_registrations (registration_id, student_id, course_id, semester_id, registration_date, registration_status)
        VALUES (:registration_id, :student_id, :course_id, :semester_id, :registration_date, :registration_status)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// UpdateStatus updates the lifecycle status of a registration.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	const query = `UPDATE course_registrations SET registration_status = $2 WHERE registration_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	return nil
}

// ListCourses returns the billing view of a student's non-cancelled
// registrations for a semester.
func (r *RegistrationRepository) ListCourses(ctx context.Context, studentID string, semesterID int) ([]models.RegisteredCourse, error) {
	const query = `SELECT c.course_id, c.credits_num, c.course_type
        FROM course_registrations reg
        JOIN courses c ON c.course_id = reg.course_id
        WHERE reg.student_id = $1 AND reg.semester_id = $2 AND reg.registration_status <> $3`
	var courses []models.RegisteredCourse
	if err := r.db.SelectContext(ctx, &courses, query, studentID, semesterID, models.RegistrationStatusCancelled); err != nil {
		return nil, fmt.Errorf("list registered courses: %w", err)
	}
	return courses, nil
}

// CountConfirmed returns total and confirmed registration counts for the
// student and semester.
func (r *RegistrationRepository) CountConfirmed(ctx context.Context, studentID string, semesterID int) (*models.ConfirmationCount, error) {
	const query = `SELECT COUNT(*) AS total,
        COALESCE(SUM(CASE WHEN registration_status = $3 THEN 1 ELSE 0 END), 0) AS confirmed
        FROM course_registrations
        WHERE student_id = $1 AND semester_id = $2`
	var count models.ConfirmationCount
	if err := r.db.GetContext(ctx, &count, query, studentID, semesterID, models.RegistrationStatusConfirmed); err != nil {
		return nil, fmt.Errorf("count confirmed registrations: %w", err)
	}
	return &count, nil
}

// FinalizeAll marks every registration of the student/semester Finalized.
func (r *RegistrationRepository) FinalizeAll(ctx context.Context, studentID string, semesterID int) error {
	const query = `UPDATE course_registrations SET registration_status = $3 WHERE student_id = $1 AND semester_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, semesterID, models.RegistrationStatusFinalized); err != nil {
		return fmt.Errorf("finalize registrations: %w", err)
	}
	return nil
}

// Summary aggregates course count, credits and the estimated gross fee for a
// student's semester registrations.
func (r *RegistrationRepository) Summary(ctx context.Context, studentID string, semesterID int) (*models.RegistrationSummary, error) {
	const query = `SELECT s.first_name || ' ' || s.last_name AS student_name,
        sem.semester_name,
        COUNT(reg.course_id) AS total_courses,
        COALESCE(SUM(c.credits_num), 0) AS total_credits,
        COALESCE(SUM(c.credits_num * fr.fee_per_credit), 0) AS estimated_fee
        FROM course_registrations reg
        JOIN students s ON s.student_id = reg.student_id
        JOIN courses c ON c.course_id = reg.course_id
        JOIN semesters sem ON sem.semester_id = reg.semester_id
        LEFT JOIN fee_rates fr ON fr.course_type = c.course_type
        WHERE reg.student_id = $1 AND reg.semester_id = $2
        GROUP BY student_name, sem.semester_name`
	var summary models.RegistrationSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID, semesterID); err != nil {
		return nil, err
	}
	return &summary, nil
}
