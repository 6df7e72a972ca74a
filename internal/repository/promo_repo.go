package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"food-order-service/internal/models"
)

// ErrPromoInUse blocks deletion of a code that has been redeemed; such codes
// are retired with active=false instead.
var ErrPromoInUse = errors.New("promo code has redemptions and cannot be deleted")

type PromoRepo struct {
	db *sql.DB
}

func NewPromoRepo(db *sql.DB) *PromoRepo {
	return &PromoRepo{db: db}
}

const promoColumns = `id, code, kind, value, min_subtotal, active,
       valid_from, valid_to, max_redemptions, current_redemptions,
       per_user_limit, created_at, updated_at`

func scanPromo(row *sql.Row) (*models.PromoCode, error) {
	var p models.PromoCode
	err := row.Scan(
		&p.ID, &p.Code, &p.Kind, &p.Value, &p.MinSubtotal, &p.Active,
		&p.ValidFrom, &p.ValidTo, &p.MaxRedemptions, &p.CurrentRedemptions,
		&p.PerUserLimit, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetByCode returns the promo record for an exact code match, or nil when the
// code does not exist.
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`
	return scanPromo(r.db.QueryRowContext(ctx, query, code))
}

// List returns promo codes newest first, optionally filtered by active flag.
func (r *PromoRepo) List(ctx context.Context, active *bool) ([]models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes`
	args := []any{}
	if active != nil {
		query += ` WHERE active = $1`
		args = append(args, *active)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PromoCode
	for rows.Next() {
		var p models.PromoCode
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Kind, &p.Value, &p.MinSubtotal, &p.Active,
			&p.ValidFrom, &p.ValidTo, &p.MaxRedemptions, &p.CurrentRedemptions,
			&p.PerUserLimit, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a new promo code and fills in its id.
func (r *PromoRepo) Create(ctx context.Context, p *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes
		(code, kind, value, min_subtotal, active, valid_from, valid_to,
		 max_redemptions, per_user_limit, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		p.Code, p.Kind, p.Value, p.MinSubtotal, p.Active,
		p.ValidFrom, p.ValidTo, p.MaxRedemptions, p.PerUserLimit,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update overwrites the mutable fields of an existing code.
func (r *PromoRepo) Update(ctx context.Context, p *models.PromoCode) error {
	query := `
		UPDATE promo_codes
		SET kind = $2, value = $3, min_subtotal = $4, active = $5,
		    valid_from = $6, valid_to = $7, max_redemptions = $8,
		    per_user_limit = $9, updated_at = NOW()
		WHERE code = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.Code, p.Kind, p.Value, p.MinSubtotal, p.Active,
		p.ValidFrom, p.ValidTo, p.MaxRedemptions, p.PerUserLimit,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a never-redeemed code. Codes with redemptions are protected.
func (r *PromoRepo) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM promo_codes WHERE code = $1 AND current_redemptions = 0`, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish "not found" from "in use"
		var redemptions int
		err := r.db.QueryRowContext(ctx,
			`SELECT current_redemptions FROM promo_codes WHERE code = $1`, code).Scan(&redemptions)
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		if err != nil {
			return err
		}
		return ErrPromoInUse
	}
	return nil
}

// RedeemTx records one redemption inside the caller's transaction: locks the
// promo row, bumps the counter and appends to the redemption log. Locking
// keeps concurrent redemptions of the same code from losing increments.
func (r *PromoRepo) RedeemTx(ctx context.Context, tx *sql.Tx, code string, orderID int64, userID *int64) error {
	var promoID int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM promo_codes WHERE code = $1 FOR UPDATE`, code).Scan(&promoID)
	if err != nil {
		return fmt.Errorf("lock promo %q: %w", code, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE promo_codes SET current_redemptions = current_redemptions + 1, updated_at = $2 WHERE id = $1`,
		promoID, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment redemptions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO promo_redemptions (promo_id, order_id, user_id, redeemed_at) VALUES ($1, $2, $3, NOW())`,
		promoID, orderID, userID); err != nil {
		return fmt.Errorf("log redemption: %w", err)
	}
	return nil
}
