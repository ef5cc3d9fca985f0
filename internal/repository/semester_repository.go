package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// SemesterRepository handles semester persistence.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns all semesters newest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	const query = `SELECT semester_id, semester_name, start_date, end_date, registration_deadline, early_payment_deadline, payment_deadline
        FROM semesters ORDER BY start_date DESC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// FindByID returns a semester by its ID.
func (r *SemesterRepository) FindByID(ctx context.Context, id int) (*models.Semester, error) {
	const query = `SELECT semester_id, semester_name, start_date, end_date, registration_deadline, early_payment_deadline, payment_deadline
        FROM semesters WHERE semester_id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// Create persists a new semester record.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	const query = `INSERT INTO semesters (semester_name, start_date, end_date, registration_deadline, early_payment_deadline, payment_deadline)
        VALUES (:semester_name, :start_date, :end_date, :registration_deadline, :early_payment_deadline, :payment_deadline)
        RETURNING semester_id`
	rows, err := r.db.NamedQueryContext(ctx, query, semester)
	if err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&semester.ID); err != nil {
			return fmt.Errorf("scan semester id: %w", err)
		}
	}
	return nil
}

// Update rewrites a semester record.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) (int64, error) {
	const query = `UPDATE semesters SET semester_name = :semester_name, start_date = :start_date, end_date = :end_date,
        registration_deadline = :registration_deadline, early_payment_deadline = :early_payment_deadline, payment_deadline = :payment_deadline
        WHERE semester_id = :semester_id`
	res, err := r.db.NamedExecContext(ctx, query, semester)
	if err != nil {
		return 0, fmt.Errorf("update semester: %w", err)
	}
	return res.RowsAffected()
}
