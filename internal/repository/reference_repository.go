package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adm-api/internal/models"
)

// ReferenceRepository reads billing reference data: fee rates, discounts and
// credit rules. All of it is read-only to the billing core.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListFeeRates returns the per-credit rate for every course type.
func (r *ReferenceRepository) ListFeeRates(ctx context.Context) ([]models.FeeRate, error) {
	const query = `SELECT course_type, fee_per_credit FROM fee_rates`
	var rates []models.FeeRate
	if err := r.db.SelectContext(ctx, &rates, query); err != nil {
		return nil, fmt.Errorf("list fee rates: %w", err)
	}
	return rates, nil
}

// GetDiscountByID resolves a discount by its primary key.
func (r *ReferenceRepository) GetDiscountByID(ctx context.Context, id int) (*models.Discount, error) {
	const query = `SELECT discount_id, discount_type, discount_percent FROM fee_discounts WHERE discount_id = $1`
	var discount models.Discount
	if err := r.db.GetContext(ctx, &discount, query, id); err != nil {
		return nil, err
	}
	return &discount, nil
}

// GetDiscountPercent resolves a discount percent by category name. A missing
// category yields (nil, nil) so callers can fall back.
func (r *ReferenceRepository) GetDiscountPercent(ctx context.Context, discountType string) (*int, error) {
	const query = `SELECT discount_percent FROM fee_discounts WHERE discount_type = $1`
	var percent int
	if err := r.db.GetContext(ctx, &percent, query, discountType); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get discount percent: %w", err)
	}
	return &percent, nil
}

// GetCreditRule returns the credit bounds for a class and semester, or nil
// when no rule is configured.
func (r *ReferenceRepository) GetCreditRule(ctx context.Context, classID string, semesterID int) (*models.CreditRule, error) {
	const query = `SELECT class_id, semester_id, min_credits, max_credits FROM credit_rules WHERE class_id = $1 AND semester_id = $2`
	var rule models.CreditRule
	if err := r.db.GetContext(ctx, &rule, query, classID, semesterID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit rule: %w", err)
	}
	return &rule, nil
}
