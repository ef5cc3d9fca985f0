package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// PaymentRepository reads the append-only payment ledger. Writes happen only
// through FeeRepository.ReconcilePayment so fee totals and ledger rows stay
// transactionally consistent.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns ledger entries with student and semester context.
func (r *PaymentRepository) List(ctx context.Context, feeID string, page, pageSize int) ([]models.PaymentDetail, int, error) {
	base := `FROM fee_payments fp
JOIN tuition_fees tf ON tf.fee_id = fp.fee_id
JOIN students s ON s.student_id = tf.student_id
JOIN semesters sem ON sem.semester_id = tf.semester_id`
	var conditions []string
	var args []interface{}

	if feeID != "" {
		conditions = append(conditions, fmt.Sprintf("fp.fee_id = $%d", len(args)+1))
		args = append(args, feeID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT fp.payments_id, fp.fee_id, fp.payment_date, fp.amount_paid,
        tf.student_id, s.first_name || ' ' || s.last_name AS student_name, sem.semester_name
        %s ORDER BY fp.payment_date DESC LIMIT %d OFFSET %d`, base+clause, pageSize, offset)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID returns a ledger entry with context by its ID.
func (r *PaymentRepository) FindByID(ctx context.Context, paymentID int) (*models.PaymentDetail, error) {
	const query = `SELECT fp.payments_id, fp.fee_id, fp.payment_date, fp.amount_paid,
        tf.student_id, s.first_name || ' ' || s.last_name AS student_name, sem.semester_name
        FROM fee_payments fp
        JOIN tuition_fees tf ON tf.fee_id = fp.fee_id
        JOIN students s ON s.student_id = tf.student_id
        JOIN semesters sem ON sem.semester_id = tf.semester_id
        WHERE fp.payments_id = $1`
	var payment models.PaymentDetail
	if err := r.db.GetContext(ctx, &payment, query, paymentID); err != nil {
		return nil, err
	}
	return &payment, nil
}
