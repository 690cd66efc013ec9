package banner

import (
	"context"
	"database/sql"
)

// Repository provides access to banner items.
type Repository interface {
	List(ctx context.Context, limit int) ([]BannerItem, error)
}

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns banner rows ordered by `ord` then id.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]BannerItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT banner_id, title, subtitle, banner_img, banner_link, banner_alt FROM banner ORDER BY COALESCE(ord, 0) DESC, banner_id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BannerItem, 0)
	for rows.Next() {
		var (
			item     BannerItem
			subtitle sql.NullString
			img      sql.NullString
			link     sql.NullString
			alt      sql.NullString
		)
		if err := rows.Scan(&item.BannerID, &item.Title, &subtitle, &img, &link, &alt); err != nil {
			return nil, err
		}
		item.Subtitle = nullable(subtitle)
		item.BannerImg = nullable(img)
		item.Link = nullable(link)
		item.Alt = nullable(alt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
