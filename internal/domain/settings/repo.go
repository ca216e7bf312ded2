package settings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Get возвращает настройки организации (nil, nil — если строки ещё нет).
func (r *Repo) Get(ctx context.Context, orgID uuid.UUID) (*Settings, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT org_id, enable_fefo
		FROM warehouse_settings
		WHERE org_id = $1
	`, orgID)

	var s Settings
	if err := row.Scan(&s.OrgID, &s.EnableFEFO); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Upsert(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO warehouse_settings (org_id, enable_fefo)
		VALUES ($1, $2)
		ON CONFLICT (org_id)
		DO UPDATE SET enable_fefo = EXCLUDED.enable_fefo, updated_at = now()
	`, s.OrgID, s.EnableFEFO)
	return err
}
