package workorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusReleased   Status = "released"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal — статус, после которого заказ не меняется.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Modifiable — можно ли менять резервы для заказа в этом статусе.
func (s Status) Modifiable() bool {
	return s == StatusPlanned || s == StatusReleased || s == StatusInProgress
}

type WorkOrder struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	WarehouseID uuid.UUID
	Number      string
	Status      Status
	CreatedAt   time.Time
}

// Material — строка потребности заказа в продукте.
// ReservedQty — денормализованная сумма активных резервов, обновляется
// в той же транзакции, что и сами резервы.
type Material struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	WorkOrderID uuid.UUID
	ProductID   uuid.UUID
	Name        string
	RequiredQty decimal.Decimal
	ReservedQty decimal.Decimal
	ConsumedQty decimal.Decimal
	UOM         string
	Sequence    int
}
