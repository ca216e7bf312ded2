package reservations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusReleased Status = "released"
	StatusConsumed Status = "consumed"
)

// Reservation — мягкий резерв: претензия строки потребности на количество
// из партии. Остаток партии при создании резерва не списывается.
// Переходы статуса односторонние: active -> released / active -> consumed.
type Reservation struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	WorkOrderID uuid.UUID
	MaterialID  uuid.UUID
	LotID       uuid.UUID
	ReservedQty decimal.Decimal
	ConsumedQty decimal.Decimal
	UOM         string
	Status      Status
	ReservedAt  time.Time
	ReservedBy  uuid.UUID
	ReleasedAt  *time.Time
	ReleasedBy  *uuid.UUID // nil — автоматический (системный) релиз
}

// OverReservationError — суммарный резерв превышает потребность, а
// подтверждения (acknowledge) нет. Возвращается из Create: сумма активных
// резервов перечитывается под блокировкой строки потребности, поэтому
// конкурирующая вставка между проверкой и записью невозможна. Несёт величину
// превышения, чтобы клиент показал её в диалоге подтверждения.
type OverReservationError struct {
	Overage decimal.Decimal
	UOM     string
}

func (e *OverReservationError) Error() string {
	return fmt.Sprintf("over-reservation not acknowledged: %s %s over required", e.Overage.String(), e.UOM)
}
