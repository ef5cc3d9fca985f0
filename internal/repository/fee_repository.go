package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// FeeRepository manages tuition fee persistence.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// FindByID returns a tuition fee by its fee ID.
func (r *FeeRepository) FindByID(ctx context.Context, feeID string) (*models.TuitionFee, error) {
	const query = `SELECT fee_id, student_id, semester_id, total_credits, tuition_fee, discount, amount_paid, payment_status FROM tuition_fees WHERE fee_id = $1`
	var fee models.TuitionFee
	if err := r.db.GetContext(ctx, &fee, query, feeID); err != nil {
		return nil, err
	}
	return &fee, nil
}

// FindByStudentSemester returns the fee for the natural key, if any.
func (r *FeeRepository) FindByStudentSemester(ctx context.Context, studentID string, semesterID int) (*models.TuitionFee, error) {
	const query = `SELECT fee_id, student_id, semester_id, total_credits, tuition_fee, discount, amount_paid, payment_status FROM tuition_fees WHERE student_id = $1 AND semester_id = $2`
	var fee models.TuitionFee
	if err := r.db.GetContext(ctx, &fee, query, studentID, semesterID); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Upsert inserts or refreshes the computed columns of a fee in a single
// conflict-handled statement so concurrent finalize calls cannot create a
// duplicate row. amount_paid and payment_status are never touched on update.
func (r *FeeRepository) Upsert(ctx context.Context, fee *models.TuitionFee) error {
	if fee.FeeID == "" {
		fee.FeeID = uuid.NewString()
	}
	if fee.PaymentStatus == "" {
		fee.PaymentStatus = models.PaymentStatusUnpaid
	}
	const query = `INSERT INTO tuition_fees (fee_id, student_id, semester_id, total_credits, tuition_fee, discount, amount_paid, payment_status)
        VALUES (:fee_id, :student_id, :semester_id, :total_credits, :tuition_fee, :discount, :amount_paid, :payment_status)
        ON CONFLICT (student_id, semester_id)
        DO UPDATE SET total_credits = EXCLUDED.total_credits, tuition_fee = EXCLUDED.tuition_fee, discount = EXCLUDED.discount`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("upsert tuition fee: %w", err)
	}

	// The natural key may resolve to a pre-existing row; read back the
	// authoritative state so callers see the stored fee_id and paid totals.
	stored, err := r.FindByStudentSemester(ctx, fee.StudentID, fee.SemesterID)
	if err != nil {
		return fmt.Errorf("reload tuition fee: %w", err)
	}
	*fee = *stored
	return nil
}

// ReconcilePayment executes a read-modify-write cycle on one fee under a row
// lock. The apply callback receives the current fee state and the number of
// prior ledger entries, mutates the fee, and returns the ledger row to
// append. Fee update and ledger insert commit or roll back as a unit.
func (r *FeeRepository) ReconcilePayment(ctx context.Context, feeID string, apply func(fee *models.TuitionFee, priorPayments int) (*models.PaymentRecord, error)) (*models.TuitionFee, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const lockQuery = `SELECT fee_id, student_id, semester_id, total_credits, tuition_fee, discount, amount_paid, payment_status FROM tuition_fees WHERE fee_id = $1 FOR UPDATE`
	var fee models.TuitionFee
	if err := tx.GetContext(ctx, &fee, lockQuery, feeID); err != nil {
		return nil, err
	}

	const countQuery = `SELECT COUNT(*) FROM fee_payments WHERE fee_id = $1`
	var priorPayments int
	if err := tx.GetContext(ctx, &priorPayments, countQuery, feeID); err != nil {
		return nil, fmt.Errorf("count prior payments: %w", err)
	}

	record, err := apply(&fee, priorPayments)
	if err != nil {
		return nil, err
	}

	const updateQuery = `UPDATE tuition_fees SET amount_paid = :amount_paid, discount = :discount, payment_status = :payment_status WHERE fee_id = :fee_id`
	if _, err := tx.NamedExecContext(ctx, updateQuery, fee); err != nil {
		return nil, fmt.Errorf("update tuition fee: %w", err)
	}

	const insertQuery = `INSERT INTO fee_payments (fee_id, payment_date, amount_paid) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertQuery, record.FeeID, record.PaymentDate, record.AmountPaid); err != nil {
		return nil, fmt.Errorf("append payment record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}
	return &fee, nil
}

// List returns tuition fees with student and semester context.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.TuitionFeeDetail, int, error) {
	base := `FROM tuition_fees tf
JOIN students s ON s.student_id = tf.student_id
JOIN semesters sem ON sem.semester_id = tf.semester_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("tf.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SemesterID != 0 {
		conditions = append(conditions, fmt.Sprintf("tf.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("tf.payment_status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf(`SELECT tf.fee_id, tf.student_id, tf.semester_id, tf.total_credits, tf.tuition_fee, tf.discount, tf.amount_paid, tf.payment_status,
        s.first_name || ' ' || s.last_name AS student_name, sem.semester_name
        %s ORDER BY sem.semester_id DESC, student_name ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var fees []models.TuitionFeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tuition fees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tuition fees: %w", err)
	}
	return fees, total, nil
}
