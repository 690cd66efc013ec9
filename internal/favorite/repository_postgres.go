package favorite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// PostgresRepository keeps favorites in users.favorite_product_ids so the
// list order is the order products were saved in.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listFavoritesQuery = `SELECT favorite_product_ids FROM users WHERE user_id = $1`
	addFavoriteQuery   = `
		UPDATE users
		SET favorite_product_ids = array_append(favorite_product_ids, $2), updated_at = $3
		WHERE user_id = $1 AND NOT ($2 = ANY(favorite_product_ids))
		RETURNING favorite_product_ids`
	removeFavoriteQuery = `
		UPDATE users
		SET favorite_product_ids = array_remove(favorite_product_ids, $2), updated_at = $3
		WHERE user_id = $1 AND $2 = ANY(favorite_product_ids)
		RETURNING favorite_product_ids`
	userExistsQuery = `SELECT 1 FROM users WHERE user_id = $1`
)

var now = func() string { return time.Now().UTC().Format(time.RFC3339) }

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func toInts(arr pq.Int64Array) []int {
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		out = append(out, int(v))
	}
	return out
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRowContext(ctx, listFavoritesQuery, userID).Scan(&arr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID int) ([]int, error) {
	return r.mutate(ctx, addFavoriteQuery, userID, productID, ErrAlreadyFavorite)
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID int) ([]int, error) {
	return r.mutate(ctx, removeFavoriteQuery, userID, productID, ErrNotFavorite)
}

// mutate runs a guarded array update. No row back means either the user is
// missing or the guard failed, which onGuard reports.
func (r *PostgresRepository) mutate(ctx context.Context, query string, userID, productID int, onGuard error) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, userID, productID, now()).Scan(&arr)
	if errors.Is(err, sql.ErrNoRows) {
		var one int
		if err := r.db.QueryRowContext(ctx, userExistsQuery, userID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		} else if err != nil {
			return nil, err
		}
		return nil, onGuard
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}
