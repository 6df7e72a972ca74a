package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"food-order-service/internal/models"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// GetMenuItems fetches the pricing read model for a set of menu item ids.
// Missing ids are simply absent from the result map.
func (r *CatalogRepo) GetMenuItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	query := `SELECT id, name, price, is_active FROM menu_items WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]models.MenuItem, len(ids))
	for rows.Next() {
		var mi models.MenuItem
		if err := rows.Scan(&mi.ID, &mi.Name, &mi.Price, &mi.IsActive); err != nil {
			return nil, err
		}
		out[mi.ID] = mi
	}
	return out, rows.Err()
}
