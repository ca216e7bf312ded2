package reserve

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation — сколько забрать из конкретной партии.
type Allocation struct {
	LotID uuid.UUID
	Qty   decimal.Decimal
}

type AllocationResult struct {
	Allocations   []Allocation
	TotalReserved decimal.Decimal
	Shortage      decimal.Decimal
}

// Allocate жадно разбирает потребность по уже отсортированному списку партий:
// из каждой берётся min(остаток потребности, нетто-доступное), партии с
// нулевым или отрицательным нетто пропускаются. Возвращает и дефицит, если
// партий не хватило.
func Allocate(ranked []AvailableLot, requiredQty decimal.Decimal) AllocationResult {
	res := AllocationResult{Allocations: []Allocation{}}
	remaining := requiredQty

	for _, al := range ranked {
		if !remaining.IsPositive() {
			break
		}
		if !al.NetAvailableQty.IsPositive() {
			continue
		}

		qty := decimal.Min(remaining, al.NetAvailableQty)
		res.Allocations = append(res.Allocations, Allocation{LotID: al.Lot.ID, Qty: qty})
		res.TotalReserved = res.TotalReserved.Add(qty)
		remaining = remaining.Sub(qty)
	}

	res.Shortage = requiredQty.Sub(res.TotalReserved)
	if res.Shortage.IsNegative() {
		res.Shortage = decimal.Zero
	}
	return res
}
