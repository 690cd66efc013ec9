package company

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const companyColumns = `company_id, name, legal_name, uen, address, phone, email,
	credit_limit, current_credit, payment_terms, status, version, updated_at,
	require_approval, approval_threshold, auto_approve_below, multi_level_approval`

func (r *PGRepository) GetByID(ctx context.Context, id int) (Company, error) {
	var c Company
	err := r.DB.GetContext(ctx, &c, `SELECT `+companyColumns+` FROM companies WHERE company_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *PGRepository) UpdateCredit(ctx context.Context, id int, available decimal.Decimal, expectedVersion int) (Company, error) {
	var c Company
	err := r.DB.GetContext(ctx, &c, `
		UPDATE companies
		SET current_credit = $2, version = version + 1, updated_at = now()
		WHERE company_id = $1 AND version = $3
		RETURNING `+companyColumns, id, available, expectedVersion)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Company{}, err
	}

	// no row matched: either the company is gone or someone else won
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return Company{}, getErr
	}
	return Company{}, ErrVersionConflict
}
