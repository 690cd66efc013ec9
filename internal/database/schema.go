package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order at startup; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT,
		sku TEXT UNIQUE,
		stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		retail_price NUMERIC(12,2) NOT NULL,
		trade_price NUMERIC(12,2) NOT NULL,
		same_day_eligible BOOLEAN NOT NULL DEFAULT false,
		image_url TEXT,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		company_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		legal_name TEXT NOT NULL DEFAULT '',
		uen TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		credit_limit NUMERIC(14,2) NOT NULL DEFAULT 0,
		current_credit NUMERIC(14,2) NOT NULL DEFAULT 0,
		payment_terms TEXT NOT NULL DEFAULT 'COD',
		status TEXT NOT NULL DEFAULT 'pending_verification',
		version INT NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		require_approval BOOLEAN NOT NULL DEFAULT false,
		approval_threshold NUMERIC(14,2) NOT NULL DEFAULT 0,
		auto_approve_below NUMERIC(14,2) NOT NULL DEFAULT 0,
		multi_level_approval BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		phone TEXT,
		account_type TEXT NOT NULL CHECK (account_type IN ('individual', 'company')),
		wallet_balance NUMERIC(12,2),
		total_orders INT,
		total_spent NUMERIC(14,2),
		company_id INT REFERENCES companies (company_id),
		company_role TEXT,
		permissions JSONB,
		order_limit NUMERIC(14,2),
		main_address_id INT,
		cart JSONB NOT NULL DEFAULT '[]',
		favorite_product_ids INT[] NOT NULL DEFAULT '{}',
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS address (
		address_id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		address_name TEXT,
		address_desc TEXT,
		postal_code TEXT,
		phone TEXT,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE SEQUENCE IF NOT EXISTS order_number_seq`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id UUID PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		user_id INT NOT NULL REFERENCES users (user_id),
		company_id INT REFERENCES companies (company_id),
		items JSONB NOT NULL,
		delivery_address TEXT NOT NULL,
		slot_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		slot_time TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		subtotal NUMERIC(14,2) NOT NULL,
		delivery_fee NUMERIC(14,2) NOT NULL,
		gst NUMERIC(14,2) NOT NULL,
		total NUMERIC(14,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		requires_approval BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS rewards (
		reward_id INT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		reward_type TEXT NOT NULL CHECK (reward_type IN ('voucher', 'experience', 'product', 'discount', 'credit')),
		points INT NOT NULL CHECK (points > 0),
		value NUMERIC(12,2) NOT NULL DEFAULT 0,
		validity TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS reward_points (
		user_id INT PRIMARY KEY REFERENCES users (user_id) ON DELETE CASCADE,
		points INT NOT NULL CHECK (points >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS redeemed_vouchers (
		voucher_id UUID PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
		reward_id INT NOT NULL REFERENCES rewards (reward_id),
		title TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		value NUMERIC(12,2) NOT NULL,
		redeemed_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS banner (
		banner_id SERIAL PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		subtitle TEXT,
		banner_img TEXT,
		banner_link TEXT,
		banner_alt TEXT,
		ord INT
	)`,
}

// Migrate creates any missing table, sequence or index.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
