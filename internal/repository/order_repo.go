package repository

import (
	"context"
	"database/sql"
	"errors"

	"food-order-service/internal/models"
	"food-order-service/internal/status"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateTx inserts the order and its line-item snapshots inside the caller's
// transaction, filling in generated ids.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *models.Order) error {
	query := `
		INSERT INTO orders (number, user_id, status, subtotal, discount, total, promo_code, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		RETURNING id, created_at
	`
	err := tx.QueryRowContext(ctx, query,
		o.Number, o.UserID, string(o.Status), o.Subtotal, o.Discount, o.Total, o.PromoCode,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (order_id, menu_item_id, name_snapshot, unit_price, quantity)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := tx.QueryRowContext(ctx, itemQuery,
			o.ID, it.MenuItemID, it.NameSnapshot, it.UnitPrice, it.Quantity,
		).Scan(&it.ID); err != nil {
			return err
		}
	}
	return nil
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrder(ctx context.Context, q rowQuerier, id int64, forUpdate bool) (*models.Order, error) {
	query := `
		SELECT id, number, user_id, status, subtotal, discount, total, promo_code, created_at
		FROM orders WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var o models.Order
	var st string
	err := q.QueryRowContext(ctx, query, id).
		Scan(&o.ID, &o.Number, &o.UserID, &st, &o.Subtotal, &o.Discount, &o.Total, &o.PromoCode, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = status.Status(st)

	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, name_snapshot, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.NameSnapshot, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// GetByID loads one order with its items, or nil when it does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return loadOrder(ctx, r.db, id, false)
}

// List returns orders newest first, optionally filtered by status and user.
// Items are not loaded for listings.
func (r *OrderRepo) List(ctx context.Context, st *status.Status, userID *int64) ([]models.Order, error) {
	query := `
		SELECT id, number, user_id, status, subtotal, discount, total, promo_code, created_at
		FROM orders WHERE 1=1
	`
	args := []any{}
	if st != nil {
		args = append(args, string(*st))
		query += ` AND status = $1`
	}
	if userID != nil {
		args = append(args, *userID)
		if len(args) == 1 {
			query += ` AND user_id = $1`
		} else {
			query += ` AND user_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var o models.Order
		var s string
		if err := rows.Scan(&o.ID, &o.Number, &o.UserID, &s, &o.Subtotal, &o.Discount, &o.Total, &o.PromoCode, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = status.Status(s)
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetForUpdateTx loads one order with its items and locks the order row for
// the rest of the transaction, or returns nil when it does not exist. The
// caller's response can be built from this snapshot without re-reading after
// commit.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	return loadOrder(ctx, tx, id, true)
}

// UpdateStatusTx persists a status already validated by the transition guard.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, s status.Status) error {
	_, err := tx.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(s))
	return err
}
