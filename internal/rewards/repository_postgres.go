package rewards

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB             *sqlx.DB
	StartingPoints int
}

func NewPGRepository(db *sqlx.DB, startingPoints int) *PGRepository {
	return &PGRepository{DB: db, StartingPoints: startingPoints}
}

const rewardColumns = `reward_id, title, description, reward_type, points, value, validity, active`

func (r *PGRepository) ListRewards(ctx context.Context) ([]Reward, error) {
	var out []Reward
	err := r.DB.SelectContext(ctx, &out, `SELECT `+rewardColumns+` FROM rewards WHERE active ORDER BY points`)
	return out, err
}

func (r *PGRepository) GetReward(ctx context.Context, id int) (Reward, error) {
	var rw Reward
	err := r.DB.GetContext(ctx, &rw, `SELECT `+rewardColumns+` FROM rewards WHERE reward_id = $1 AND active`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Reward{}, ErrRewardNotFound
	}
	return rw, err
}

func (r *PGRepository) Balance(ctx context.Context, userID int) (int, error) {
	if _, err := r.DB.ExecContext(ctx,
		`INSERT INTO reward_points (user_id, points) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, r.StartingPoints); err != nil {
		return 0, err
	}
	var points int
	err := r.DB.GetContext(ctx, &points, `SELECT points FROM reward_points WHERE user_id = $1`, userID)
	return points, err
}

func (r *PGRepository) AdjustPoints(ctx context.Context, userID, delta int) (int, error) {
	var points int
	err := r.DB.GetContext(ctx, &points, `
		UPDATE reward_points
		SET points = points + $2, updated_at = now()
		WHERE user_id = $1 AND points + $2 >= 0
		RETURNING points`, userID, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientPoints
	}
	return points, err
}

func (r *PGRepository) AddVoucher(ctx context.Context, v RedeemedVoucher) error {
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO redeemed_vouchers (voucher_id, user_id, reward_id, title, code, value, redeemed_at, expires_at, status)
		VALUES (:voucher_id, :user_id, :reward_id, :title, :code, :value, :redeemed_at, :expires_at, :status)`, v)
	return err
}

func (r *PGRepository) ListVouchers(ctx context.Context, userID int) ([]RedeemedVoucher, error) {
	var out []RedeemedVoucher
	err := r.DB.SelectContext(ctx, &out, `
		SELECT voucher_id, user_id, reward_id, title, code, value, redeemed_at, expires_at, status
		FROM redeemed_vouchers WHERE user_id = $1 ORDER BY redeemed_at DESC`, userID)
	return out, err
}
