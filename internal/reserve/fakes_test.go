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

// fakeData — общее in-memory состояние фейковых сторов.
// Семантика повторяет pgx-репозитории: org-изоляция на каждом чтении,
// денормализованный reserved_qty строки потребности меняется вместе с резервами.
type fakeData struct {
	lots      map[uuid.UUID]lots.Lot
	wos       map[uuid.UUID]workorders.WorkOrder
	materials map[uuid.UUID]workorders.Material
	res       map[uuid.UUID]reservations.Reservation
	resOrder  []uuid.UUID
	settings  map[uuid.UUID]settings.Settings
	users     map[uuid.UUID]users.User
}

func newFakeData() *fakeData {
	return &fakeData{
		lots:      map[uuid.UUID]lots.Lot{},
		wos:       map[uuid.UUID]workorders.WorkOrder{},
		materials: map[uuid.UUID]workorders.Material{},
		res:       map[uuid.UUID]reservations.Reservation{},
		settings:  map[uuid.UUID]settings.Settings{},
		users:     map[uuid.UUID]users.User{},
	}
}

type fakeLots struct{ *fakeData }

func (f fakeLots) GetByID(_ context.Context, orgID, id uuid.UUID) (*lots.Lot, error) {
	l, ok := f.lots[id]
	if !ok || l.OrgID != orgID {
		return nil, nil
	}
	return &l, nil
}

func (f fakeLots) ListByProduct(_ context.Context, orgID, productID uuid.UUID) ([]lots.Lot, error) {
	out := []lots.Lot{}
	for _, l := range f.lots {
		if l.OrgID == orgID && l.ProductID == productID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeWorkOrders struct{ *fakeData }

func (f fakeWorkOrders) GetWorkOrder(_ context.Context, orgID, id uuid.UUID) (*workorders.WorkOrder, error) {
	wo, ok := f.wos[id]
	if !ok || wo.OrgID != orgID {
		return nil, nil
	}
	return &wo, nil
}

func (f fakeWorkOrders) GetMaterial(_ context.Context, orgID, id uuid.UUID) (*workorders.Material, error) {
	m, ok := f.materials[id]
	if !ok || m.OrgID != orgID {
		return nil, nil
	}
	return &m, nil
}

func (f fakeWorkOrders) ListMaterials(_ context.Context, orgID, woID uuid.UUID) ([]workorders.Material, error) {
	out := []workorders.Material{}
	for _, m := range f.materials {
		if m.OrgID == orgID && m.WorkOrderID == woID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeReservations struct{ *fakeData }

func (f fakeReservations) Create(_ context.Context, rs []reservations.Reservation, requiredQty decimal.Decimal, acknowledge bool) error {
	if len(rs) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, r := range rs {
		total = total.Add(r.ReservedQty)
	}

	// как в pgx-репозитории: сумма активных резервов перечитывается
	// внутри записи, превышение без acknowledge откатывает всё целиком
	existing := decimal.Zero
	for _, r := range f.res {
		if r.OrgID == rs[0].OrgID && r.MaterialID == rs[0].MaterialID && r.Status == reservations.StatusActive {
			existing = existing.Add(r.ReservedQty)
		}
	}
	if newTotal := existing.Add(total); newTotal.GreaterThan(requiredQty) && !acknowledge {
		return &reservations.OverReservationError{Overage: newTotal.Sub(requiredQty), UOM: rs[0].UOM}
	}

	for _, r := range rs {
		f.res[r.ID] = r
		f.resOrder = append(f.resOrder, r.ID)
	}
	if m, ok := f.materials[rs[0].MaterialID]; ok {
		m.ReservedQty = m.ReservedQty.Add(total)
		f.materials[m.ID] = m
	}
	return nil
}

func (f fakeReservations) GetByID(_ context.Context, orgID, id uuid.UUID) (*reservations.Reservation, error) {
	r, ok := f.res[id]
	if !ok || r.OrgID != orgID {
		return nil, nil
	}
	return &r, nil
}

func (f fakeReservations) ListActiveByMaterial(_ context.Context, orgID, materialID uuid.UUID) ([]reservations.Reservation, error) {
	out := []reservations.Reservation{}
	for _, id := range f.resOrder {
		r := f.res[id]
		if r.OrgID == orgID && r.MaterialID == materialID && r.Status == reservations.StatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeReservations) ListActiveByWorkOrder(_ context.Context, orgID, woID uuid.UUID) ([]reservations.Reservation, error) {
	out := []reservations.Reservation{}
	for _, id := range f.resOrder {
		r := f.res[id]
		if r.OrgID == orgID && r.WorkOrderID == woID && r.Status == reservations.StatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeReservations) SumActiveByMaterial(_ context.Context, orgID, materialID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range f.res {
		if r.OrgID == orgID && r.MaterialID == materialID && r.Status == reservations.StatusActive {
			sum = sum.Add(r.ReservedQty)
		}
	}
	return sum, nil
}

func (f fakeReservations) SumActiveByLots(_ context.Context, orgID uuid.UUID, lotIDs []uuid.UUID, excludeMaterialID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range lotIDs {
		want[id] = true
	}
	out := map[uuid.UUID]decimal.Decimal{}
	for _, r := range f.res {
		if r.OrgID != orgID || !want[r.LotID] || r.MaterialID == excludeMaterialID || r.Status != reservations.StatusActive {
			continue
		}
		out[r.LotID] = out[r.LotID].Add(r.ReservedQty)
	}
	return out, nil
}

func (f fakeReservations) Release(_ context.Context, orgID, id uuid.UUID, releasedBy *uuid.UUID, at time.Time) (*reservations.Reservation, error) {
	r, ok := f.res[id]
	if !ok || r.OrgID != orgID || r.Status != reservations.StatusActive {
		return nil, nil
	}
	r.Status = reservations.StatusReleased
	r.ReleasedAt = &at
	r.ReleasedBy = releasedBy
	f.res[id] = r

	if m, ok := f.materials[r.MaterialID]; ok {
		m.ReservedQty = m.ReservedQty.Sub(r.ReservedQty)
		if m.ReservedQty.IsNegative() {
			m.ReservedQty = decimal.Zero
		}
		f.materials[m.ID] = m
	}
	return &r, nil
}

func (f fakeReservations) ReleaseAllForWorkOrder(_ context.Context, orgID, woID uuid.UUID, at time.Time) (int64, error) {
	var count int64
	for id, r := range f.res {
		if r.OrgID == orgID && r.WorkOrderID == woID && r.Status == reservations.StatusActive {
			r.Status = reservations.StatusReleased
			r.ReleasedAt = &at
			r.ReleasedBy = nil
			f.res[id] = r
			count++
		}
	}
	for id, m := range f.materials {
		if m.OrgID == orgID && m.WorkOrderID == woID {
			m.ReservedQty = decimal.Zero
			f.materials[id] = m
		}
	}
	return count, nil
}

type fakeSettings struct{ *fakeData }

func (f fakeSettings) Get(_ context.Context, orgID uuid.UUID) (*settings.Settings, error) {
	s, ok := f.settings[orgID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f fakeSettings) Upsert(_ context.Context, s settings.Settings) error {
	f.settings[s.OrgID] = s
	return nil
}

type fakeUsers struct{ *fakeData }

func (f fakeUsers) GetByID(_ context.Context, orgID, id uuid.UUID) (*users.User, error) {
	u, ok := f.users[id]
	if !ok || u.OrgID != orgID {
		return nil, nil
	}
	return &u, nil
}
