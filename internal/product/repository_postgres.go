package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `product_id, name, category, description, sku, stock, retail_price, trade_price, same_day_eligible, image_url, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY product_id
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = $1
	`
	listProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)
	`
	insertProductQuery = `
		INSERT INTO products (name, category, description, sku, stock, retail_price, trade_price, same_day_eligible, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING product_id
	`
	countProductsQuery = `SELECT COUNT(*) FROM products`
	adjustStockQuery   = `
		UPDATE products SET stock = GREATEST(stock + $2, 0), updated_at = to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		WHERE product_id = $1
		RETURNING stock
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.QueryContext(ctx, listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	var img any
	if p.ImageURL != nil {
		img = *p.ImageURL
	}
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.Name, p.Category, p.Description, p.SKU, p.Stock,
		p.RetailPrice, p.TradePrice, p.SameDayEligible, img,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countProductsQuery).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepository) AdjustStock(ctx context.Context, id, delta int) (int, error) {
	var stock int
	if err := r.db.QueryRowContext(ctx, adjustStockQuery, id, delta).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return stock, nil
}

func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p         Product
		desc      sql.NullString
		img       sql.NullString
		createdAt sql.NullString
		updatedAt sql.NullString
	)
	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&desc,
		&p.SKU,
		&p.Stock,
		&p.RetailPrice,
		&p.TradePrice,
		&p.SameDayEligible,
		&img,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Product{}, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	if img.Valid {
		p.ImageURL = &img.String
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.String
	}
	return p, nil
}
