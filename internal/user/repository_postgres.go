package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	selectUserColumns = `
		SELECT user_id, name, email, password, phone, account_type,
			wallet_balance, total_orders, total_spent,
			company_id, company_role, permissions, order_limit,
			main_address_id, created_at, updated_at
		FROM users
	`
	getUserByIDQuery    = selectUserColumns + ` WHERE user_id = $1`
	getUserByEmailQuery = selectUserColumns + ` WHERE email = $1`

	insertUserQuery = `
		INSERT INTO users (name, email, password, phone, account_type,
			wallet_balance, total_orders, total_spent,
			company_id, company_role, permissions, order_limit,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING user_id
	`
	updateProfileQuery = `
		UPDATE users
		SET name = $1,
			phone = $2,
			main_address_id = $3,
			updated_at = $4
		WHERE user_id = $5
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	var (
		wallet, spent = decimal.Zero, decimal.Zero
		totalOrders   int
		companyID     sql.NullInt64
		companyRole   sql.NullString
		permissions   []byte
		orderLimit    decimal.NullDecimal
	)

	switch user.AccountType {
	case AccountIndividual:
		if user.Individual != nil {
			wallet = user.Individual.WalletBalance
			spent = user.Individual.TotalSpent
			totalOrders = user.Individual.TotalOrders
		}
	case AccountCompany:
		if user.Company != nil {
			companyID = sql.NullInt64{Int64: int64(user.Company.CompanyID), Valid: true}
			companyRole = sql.NullString{String: string(user.Company.Role), Valid: true}
			b, err := json.Marshal(user.Company.Permissions)
			if err != nil {
				return User{}, err
			}
			permissions = b
			if user.Company.OrderLimit != nil {
				orderLimit = decimal.NewNullDecimal(*user.Company.OrderLimit)
			}
		}
	}

	var id int
	err := r.db.QueryRowContext(ctx, insertUserQuery,
		user.Name,
		user.Email,
		user.Password,
		user.Phone,
		string(user.AccountType),
		wallet,
		totalOrders,
		spent,
		companyID,
		companyRole,
		permissions,
		orderLimit,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return User{}, err
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int, update User) (User, error) {
	var mainAddress any
	if update.MainAddressID != nil {
		mainAddress = *update.MainAddressID
	}
	result, err := r.db.ExecContext(ctx, updateProfileQuery,
		update.Name,
		update.Phone,
		mainAddress,
		update.UpdatedAt,
		id,
	)
	if err != nil {
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u           User
		accountType string
		wallet      decimal.Decimal
		totalOrders int
		spent       decimal.Decimal
		companyID   sql.NullInt64
		companyRole sql.NullString
		permissions []byte
		orderLimit  decimal.NullDecimal
		mainAddress sql.NullInt64
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)

	if err := scanner.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Phone,
		&accountType,
		&wallet,
		&totalOrders,
		&spent,
		&companyID,
		&companyRole,
		&permissions,
		&orderLimit,
		&mainAddress,
		&createdAt,
		&updatedAt,
	); err != nil {
		return User{}, err
	}

	u.AccountType = AccountType(accountType)
	switch u.AccountType {
	case AccountIndividual:
		u.Individual = &IndividualProfile{WalletBalance: wallet, TotalOrders: totalOrders, TotalSpent: spent}
	case AccountCompany:
		m := &CompanyMembership{
			CompanyID: int(companyID.Int64),
			Role:      CompanyRole(companyRole.String),
		}
		if len(permissions) > 0 {
			if err := json.Unmarshal(permissions, &m.Permissions); err != nil {
				return User{}, err
			}
		}
		if orderLimit.Valid {
			limit := orderLimit.Decimal
			m.OrderLimit = &limit
		}
		u.Company = m
	default:
		return User{}, ErrInvalidAccount
	}

	if mainAddress.Valid {
		id := int(mainAddress.Int64)
		u.MainAddressID = &id
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.String
	}
	return u, nil
}
