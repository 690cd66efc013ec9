package address

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository stores addresses in the address table, one row per
// entry, keyed by user_id.
type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `address_id, user_id, address_name, address_desc, postal_code, phone, created_at, updated_at`

	listAddressesQuery = `SELECT ` + addressColumns + ` FROM address WHERE user_id = $1 ORDER BY address_id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM address WHERE user_id = $1 AND address_id = $2`
	insertAddressQuery = `
		INSERT INTO address (user_id, address_name, address_desc, postal_code, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + addressColumns
	updateAddressQuery = `
		UPDATE address
		SET address_name = $3, address_desc = $4, postal_code = $5, phone = $6, updated_at = $7
		WHERE user_id = $1 AND address_id = $2
		RETURNING ` + addressColumns
	deleteAddressQuery = `DELETE FROM address WHERE user_id = $1 AND address_id = $2`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAddress(s rowScanner) (Address, error) {
	var a Address
	err := s.Scan(&a.AddressID, &a.UserID, &a.AddressName, &a.AddressDesc, &a.PostalCode, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) GetAddresses(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetAddress(ctx context.Context, userID, addressID int) (Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, addressID))
}

func (r *PostgresRepository) AddAddress(ctx context.Context, a Address) (Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx, insertAddressQuery,
		a.UserID, a.AddressName, a.AddressDesc, a.PostalCode, a.Phone, a.CreatedAt, a.UpdatedAt))
}

func (r *PostgresRepository) UpdateAddress(ctx context.Context, a Address) (Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx, updateAddressQuery,
		a.UserID, a.AddressID, a.AddressName, a.AddressDesc, a.PostalCode, a.Phone, a.UpdatedAt))
}

func (r *PostgresRepository) DeleteAddress(ctx context.Context, userID, addressID int) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
