package lots

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBlocked   Status = "blocked"
	StatusConsumed  Status = "consumed"
)

type Quality string

const (
	QualityPassed  Quality = "passed"
	QualityFailed  Quality = "failed"
	QualityPending Quality = "pending"
)

// Lot — партия (license plate): учётная единица остатка одного продукта.
// AvailableQty уменьшается только при физическом списании, не при резервировании.
type Lot struct {
	ID           uuid.UUID
	OrgID        uuid.UUID
	ProductID    uuid.UUID
	WarehouseID  uuid.UUID
	Code         string
	TotalQty     decimal.Decimal
	AvailableQty decimal.Decimal
	UOM          string
	BatchNumber  *string
	Location     *string
	ExpiryDate   *time.Time
	Status       Status
	Quality      Quality
	CreatedAt    time.Time
}
