package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const resColumns = `id, org_id, wo_id, material_id, lot_id, reserved_qty, consumed_qty,
	uom, status, reserved_at, reserved_by, released_at, released_by`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	err := row.Scan(
		&res.ID, &res.OrgID, &res.WorkOrderID, &res.MaterialID, &res.LotID,
		&res.ReservedQty, &res.ConsumedQty, &res.UOM, &res.Status,
		&res.ReservedAt, &res.ReservedBy, &res.ReleasedAt, &res.ReleasedBy,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create вставляет резервы одной транзакцией. Строка wo_materials блокируется
// FOR UPDATE, и уже под блокировкой перечитывается сумма активных резервов:
// превышение requiredQty без acknowledge — откат с OverReservationError.
// Конкурирующие вставки по одной строке потребности сериализуются на этой
// блокировке, устаревшая сумма проверку пройти не может. Денормализованный
// reserved_qty обновляется в той же транзакции.
func (r *Repo) Create(ctx context.Context, rs []Reservation, requiredQty decimal.Decimal, acknowledge bool) error {
	if len(rs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	total := decimal.Zero
	for _, res := range rs {
		total = total.Add(res.ReservedQty)
	}

	first := rs[0]
	if _, err = tx.Exec(ctx, `
		SELECT reserved_qty FROM wo_materials
		WHERE org_id = $1 AND id = $2
		FOR UPDATE
	`, first.OrgID, first.MaterialID); err != nil {
		return err
	}

	var existing decimal.Decimal
	if err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(reserved_qty), 0)
		FROM lot_reservations
		WHERE org_id = $1 AND material_id = $2 AND status = 'active'
	`, first.OrgID, first.MaterialID).Scan(&existing); err != nil {
		return err
	}
	if newTotal := existing.Add(total); newTotal.GreaterThan(requiredQty) && !acknowledge {
		return &OverReservationError{Overage: newTotal.Sub(requiredQty), UOM: first.UOM}
	}

	for _, res := range rs {
		if _, err = tx.Exec(ctx, `
			INSERT INTO lot_reservations
				(id, org_id, wo_id, material_id, lot_id, reserved_qty, consumed_qty,
				 uom, status, reserved_at, reserved_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, res.ID, res.OrgID, res.WorkOrderID, res.MaterialID, res.LotID,
			res.ReservedQty, res.ConsumedQty, res.UOM, string(res.Status),
			res.ReservedAt, res.ReservedBy); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(ctx, `
		UPDATE wo_materials
		SET reserved_qty = reserved_qty + $3
		WHERE org_id = $1 AND id = $2
	`, first.OrgID, first.MaterialID, total); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+resColumns+`
		FROM lot_reservations
		WHERE org_id = $1 AND id = $2
	`, orgID, id)

	res, err := scanReservation(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *Repo) listActive(ctx context.Context, orgID uuid.UUID, field string, val uuid.UUID) ([]Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+resColumns+`
		FROM lot_reservations
		WHERE org_id = $1 AND `+field+` = $2 AND status = 'active'
		ORDER BY reserved_at ASC
	`, orgID, val)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reservation{}
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID, &res.OrgID, &res.WorkOrderID, &res.MaterialID, &res.LotID,
			&res.ReservedQty, &res.ConsumedQty, &res.UOM, &res.Status,
			&res.ReservedAt, &res.ReservedBy, &res.ReleasedAt, &res.ReleasedBy,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repo) ListActiveByMaterial(ctx context.Context, orgID, materialID uuid.UUID) ([]Reservation, error) {
	return r.listActive(ctx, orgID, "material_id", materialID)
}

func (r *Repo) ListActiveByWorkOrder(ctx context.Context, orgID, woID uuid.UUID) ([]Reservation, error) {
	return r.listActive(ctx, orgID, "wo_id", woID)
}

// SumActiveByMaterial — сумма активных резервов строки потребности,
// считается на чтении, а не из денормализованной колонки.
func (r *Repo) SumActiveByMaterial(ctx context.Context, orgID, materialID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(reserved_qty), 0)
		FROM lot_reservations
		WHERE org_id = $1 AND material_id = $2 AND status = 'active'
	`, orgID, materialID).Scan(&sum)
	return sum, err
}

// SumActiveByLots — активные резервы по партиям, удерживаемые другими
// строками потребности (excludeMaterialID исключается из суммы).
func (r *Repo) SumActiveByLots(ctx context.Context, orgID uuid.UUID, lotIDs []uuid.UUID, excludeMaterialID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := map[uuid.UUID]decimal.Decimal{}
	if len(lotIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT lot_id, COALESCE(SUM(reserved_qty), 0)
		FROM lot_reservations
		WHERE org_id = $1 AND lot_id = ANY($2) AND material_id <> $3 AND status = 'active'
		GROUP BY lot_id
	`, orgID, lotIDs, excludeMaterialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var lotID uuid.UUID
		var sum decimal.Decimal
		if err := rows.Scan(&lotID, &sum); err != nil {
			return nil, err
		}
		out[lotID] = sum
	}
	return out, rows.Err()
}

// Release переводит резерв в released и уменьшает reserved_qty строки
// потребности (не ниже нуля) в одной транзакции.
func (r *Repo) Release(ctx context.Context, orgID, id uuid.UUID, releasedBy *uuid.UUID, at time.Time) (*Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE lot_reservations
		SET status = 'released', released_at = $3, released_by = $4
		WHERE org_id = $1 AND id = $2 AND status = 'active'
		RETURNING `+resColumns+`
	`, orgID, id, at, releasedBy)

	res, err := scanReservation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE wo_materials
		SET reserved_qty = GREATEST(reserved_qty - $3, 0)
		WHERE org_id = $1 AND id = $2
	`, orgID, res.MaterialID, res.ReservedQty); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// ReleaseAllForWorkOrder — массовый релиз всех активных резервов заказа
// одной транзакцией; reserved_qty строк потребности обнуляется там же.
// released_by остаётся NULL — признак системного действия.
func (r *Repo) ReleaseAllForWorkOrder(ctx context.Context, orgID, woID uuid.UUID, at time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE lot_reservations
		SET status = 'released', released_at = $3, released_by = NULL
		WHERE org_id = $1 AND wo_id = $2 AND status = 'active'
	`, orgID, woID, at)
	if err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE wo_materials
		SET reserved_qty = 0
		WHERE org_id = $1 AND wo_id = $2
	`, orgID, woID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
