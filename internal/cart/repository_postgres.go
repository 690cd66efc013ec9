package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"
)

// PostgresRepository keeps the cart in the users.cart jsonb column as an
// ordered array of lines. Older rows may hold a {"productID": qty} map.
type PostgresRepository struct {
	db *sql.DB
}

const (
	loadCartQuery = `SELECT cart FROM users WHERE user_id = $1`
	saveCartQuery = `UPDATE users SET cart = $1, updated_at = $2 WHERE user_id = $3`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, userID int) ([]Line, error) {
	var raw sql.NullString
	if err := r.db.QueryRowContext(ctx, loadCartQuery, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !raw.Valid || raw.String == "" {
		return []Line{}, nil
	}
	return decodeLines([]byte(raw.String))
}

func (r *PostgresRepository) Save(ctx context.Context, userID int, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, saveCartQuery, string(b), time.Now().UTC().Format(time.RFC3339), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeLines(b []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(b, &lines); err == nil {
		return lines, nil
	}

	// legacy map form, no order information
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	lines = make([]Line, 0, len(m))
	for k, qty := range m {
		pid, err := strconv.Atoi(k)
		if err != nil || qty <= 0 {
			continue
		}
		lines = append(lines, Line{ProductID: pid, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}
