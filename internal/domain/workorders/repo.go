package workorders

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) GetWorkOrder(ctx context.Context, orgID, id uuid.UUID) (*WorkOrder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, org_id, warehouse_id, number, status, created_at
		FROM work_orders
		WHERE org_id = $1 AND id = $2
	`, orgID, id)

	var wo WorkOrder
	if err := row.Scan(&wo.ID, &wo.OrgID, &wo.WarehouseID, &wo.Number, &wo.Status, &wo.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &wo, nil
}

func (r *Repo) GetMaterial(ctx context.Context, orgID, id uuid.UUID) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, org_id, wo_id, product_id, name, required_qty, reserved_qty, consumed_qty, uom, sequence
		FROM wo_materials
		WHERE org_id = $1 AND id = $2
	`, orgID, id)

	var m Material
	if err := row.Scan(
		&m.ID, &m.OrgID, &m.WorkOrderID, &m.ProductID, &m.Name,
		&m.RequiredQty, &m.ReservedQty, &m.ConsumedQty, &m.UOM, &m.Sequence,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) ListMaterials(ctx context.Context, orgID, woID uuid.UUID) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, org_id, wo_id, product_id, name, required_qty, reserved_qty, consumed_qty, uom, sequence
		FROM wo_materials
		WHERE org_id = $1 AND wo_id = $2
		ORDER BY sequence ASC
	`, orgID, woID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(
			&m.ID, &m.OrgID, &m.WorkOrderID, &m.ProductID, &m.Name,
			&m.RequiredQty, &m.ReservedQty, &m.ConsumedQty, &m.UOM, &m.Sequence,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
