package reserve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/erp-core/internal/domain/lots"
	"github.com/Spok95/erp-core/internal/domain/reservations"
	"github.com/Spok95/erp-core/internal/domain/settings"
	"github.com/Spok95/erp-core/internal/domain/users"
	"github.com/Spok95/erp-core/internal/domain/workorders"
)

// Интерфейсы хранилища, которые ядро требует от слоя persistence.
// Продакшен-реализации — pgx-репозитории в internal/domain, тесты подставляют
// in-memory фейки.

type LotStore interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*lots.Lot, error)
	ListByProduct(ctx context.Context, orgID, productID uuid.UUID) ([]lots.Lot, error)
}

type WorkOrderStore interface {
	GetWorkOrder(ctx context.Context, orgID, id uuid.UUID) (*workorders.WorkOrder, error)
	GetMaterial(ctx context.Context, orgID, id uuid.UUID) (*workorders.Material, error)
	ListMaterials(ctx context.Context, orgID, woID uuid.UUID) ([]workorders.Material, error)
}

type ReservationStore interface {
	// Create атомарна: сумма активных резервов строки потребности
	// перечитывается под блокировкой, превышение requiredQty без
	// acknowledge — OverReservationError и откат целиком.
	Create(ctx context.Context, rs []reservations.Reservation, requiredQty decimal.Decimal, acknowledge bool) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*reservations.Reservation, error)
	ListActiveByMaterial(ctx context.Context, orgID, materialID uuid.UUID) ([]reservations.Reservation, error)
	ListActiveByWorkOrder(ctx context.Context, orgID, woID uuid.UUID) ([]reservations.Reservation, error)
	SumActiveByMaterial(ctx context.Context, orgID, materialID uuid.UUID) (decimal.Decimal, error)
	SumActiveByLots(ctx context.Context, orgID uuid.UUID, lotIDs []uuid.UUID, excludeMaterialID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	Release(ctx context.Context, orgID, id uuid.UUID, releasedBy *uuid.UUID, at time.Time) (*reservations.Reservation, error)
	ReleaseAllForWorkOrder(ctx context.Context, orgID, woID uuid.UUID, at time.Time) (int64, error)
}

type SettingsStore interface {
	Get(ctx context.Context, orgID uuid.UUID) (*settings.Settings, error)
	Upsert(ctx context.Context, s settings.Settings) error
}

type UserStore interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*users.User, error)
}
