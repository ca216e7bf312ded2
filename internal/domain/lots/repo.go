package lots

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const lotColumns = `id, org_id, product_id, warehouse_id, code, total_qty, available_qty,
	uom, batch_number, location, expiry_date, status, quality_status, created_at`

func scanLot(row pgx.Row) (*Lot, error) {
	var l Lot
	err := row.Scan(
		&l.ID, &l.OrgID, &l.ProductID, &l.WarehouseID, &l.Code,
		&l.TotalQty, &l.AvailableQty, &l.UOM, &l.BatchNumber, &l.Location,
		&l.ExpiryDate, &l.Status, &l.Quality, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID возвращает партию в пределах организации (nil, nil — если нет).
func (r *Repo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Lot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+lotColumns+`
		FROM inventory_lots
		WHERE org_id = $1 AND id = $2
	`, orgID, id)

	l, err := scanLot(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// ListByProduct — все партии продукта в организации; отбор по пригодности
// делает вызывающая сторона.
func (r *Repo) ListByProduct(ctx context.Context, orgID, productID uuid.UUID) ([]Lot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+lotColumns+`
		FROM inventory_lots
		WHERE org_id = $1 AND product_id = $2
		ORDER BY created_at ASC
	`, orgID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lot{}
	for rows.Next() {
		var l Lot
		if err := rows.Scan(
			&l.ID, &l.OrgID, &l.ProductID, &l.WarehouseID, &l.Code,
			&l.TotalQty, &l.AvailableQty, &l.UOM, &l.BatchNumber, &l.Location,
			&l.ExpiryDate, &l.Status, &l.Quality, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
