package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// orderRow is the flat table shape of an Order.
type orderRow struct {
	ID               string          `db:"order_id"`
	OrderNumber      string          `db:"order_number"`
	UserID           int             `db:"user_id"`
	CompanyID        *int            `db:"company_id"`
	Items            Items           `db:"items"`
	DeliveryAddress  string          `db:"delivery_address"`
	SlotID           string          `db:"slot_id"`
	SlotDate         string          `db:"slot_date"`
	SlotTime         string          `db:"slot_time"`
	PaymentMethod    string          `db:"payment_method"`
	Notes            string          `db:"notes"`
	Subtotal         decimal.Decimal `db:"subtotal"`
	DeliveryFee      decimal.Decimal `db:"delivery_fee"`
	GST              decimal.Decimal `db:"gst"`
	Total            decimal.Decimal `db:"total"`
	Status           string          `db:"status"`
	RequiresApproval bool            `db:"requires_approval"`
	CreatedAt        time.Time       `db:"created_at"`
}

func toRow(o Order) orderRow {
	return orderRow{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		CompanyID:        o.CompanyID,
		Items:            o.Items,
		DeliveryAddress:  o.DeliveryAddress,
		SlotID:           o.DeliverySlot.ID,
		SlotDate:         o.DeliverySlot.Date,
		SlotTime:         o.DeliverySlot.TimeSlot,
		PaymentMethod:    o.PaymentMethod,
		Notes:            o.Notes,
		Subtotal:         o.Subtotal,
		DeliveryFee:      o.DeliveryFee,
		GST:              o.GST,
		Total:            o.Total,
		Status:           string(o.Status),
		RequiresApproval: o.RequiresApproval,
		CreatedAt:        o.CreatedAt,
	}
}

func (r orderRow) toOrder() Order {
	return Order{
		ID:               r.ID,
		OrderNumber:      r.OrderNumber,
		UserID:           r.UserID,
		CompanyID:        r.CompanyID,
		Items:            r.Items,
		DeliveryAddress:  r.DeliveryAddress,
		DeliverySlot:     DeliverySlot{ID: r.SlotID, Date: r.SlotDate, TimeSlot: r.SlotTime},
		PaymentMethod:    r.PaymentMethod,
		Notes:            r.Notes,
		Subtotal:         r.Subtotal,
		DeliveryFee:      r.DeliveryFee,
		GST:              r.GST,
		Total:            r.Total,
		Status:           Status(r.Status),
		RequiresApproval: r.RequiresApproval,
		CreatedAt:        r.CreatedAt,
	}
}

const (
	orderColumns = `order_id, order_number, user_id, company_id, items, delivery_address,
		slot_id, slot_date, slot_time, payment_method, notes,
		subtotal, delivery_fee, gst, total, status, requires_approval, created_at`

	// the number comes from order_number_seq so concurrent inserts never collide
	insertOrderQuery = `
		INSERT INTO orders (
			order_id, order_number, user_id, company_id, items, delivery_address,
			slot_id, slot_date, slot_time, payment_method, notes,
			subtotal, delivery_fee, gst, total, status, requires_approval, created_at
		)
		VALUES (
			:order_id,
			'EASI-' || to_char(CAST(:created_at AS timestamptz), 'YYYYMMDD') || '-' || lpad(CAST(nextval('order_number_seq') % 1000000 AS text), 6, '0'),
			:user_id, :company_id, :items, :delivery_address,
			:slot_id, :slot_date, :slot_time, :payment_method, :notes,
			:subtotal, :delivery_fee, :gst, :total, :status, :requires_approval, :created_at
		)
		RETURNING order_id, order_number`
)

func (r *PGRepository) Create(ctx context.Context, ord Order) (Order, error) {
	ord.ID = uuid.NewString()

	rows, err := r.DB.NamedQueryContext(ctx, insertOrderQuery, toRow(ord))
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Order{}, err
		}
		return Order{}, ErrMissingOrderIdentifier
	}
	if err := rows.Scan(&ord.ID, &ord.OrderNumber); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Order, error) {
	var row orderRow
	err := r.DB.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return row.toOrder(), nil
}

func (r *PGRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	var rows []orderRow
	if err := r.DB.SelectContext(ctx, &rows, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID); err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toOrder())
	}
	return orders, nil
}
