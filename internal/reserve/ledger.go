package reserve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/erp-core/internal/domain/lots"
	"github.com/Spok95/erp-core/internal/domain/reservations"
	"github.com/Spok95/erp-core/internal/domain/settings"
	"github.com/Spok95/erp-core/internal/domain/users"
	"github.com/Spok95/erp-core/internal/domain/workorders"
	"github.com/Spok95/erp-core/internal/infra/metrics"
)

// Actor — уже аутентифицированный пользователь; ядро проверяет только роль.
type Actor struct {
	ID   uuid.UUID
	Role users.Role
}

func (a Actor) canMutate() bool {
	switch a.Role {
	case users.RoleAdmin, users.RoleManager, users.RoleOperator:
		return true
	}
	return false
}

// ReservationInput — запрошенное количество из конкретной партии.
type ReservationInput struct {
	LotID uuid.UUID
	Qty   decimal.Decimal
}

type Deps struct {
	Lots         LotStore
	WorkOrders   WorkOrderStore
	Reservations ReservationStore
	Settings     SettingsStore
	Users        UserStore
	Log          *slog.Logger

	// DefaultStrategy применяется, когда у организации нет настроек склада.
	DefaultStrategy Strategy
}

// Service — реестр резервов: валидация и запись создания, релиз ручной и
// автоматический, подбор партий и расчёт покрытия.
type Service struct {
	lots       LotStore
	workOrders WorkOrderStore
	store      ReservationStore
	settings   SettingsStore
	users      UserStore
	log        *slog.Logger
	defStrat   Strategy

	now func() time.Time
}

func New(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	strat := d.DefaultStrategy
	if !strat.Valid() {
		strat = StrategyFIFO
	}
	return &Service{
		lots:       d.Lots,
		workOrders: d.WorkOrders,
		store:      d.Reservations,
		settings:   d.Settings,
		users:      d.Users,
		log:        log,
		defStrat:   strat,
		now:        time.Now,
	}
}

// ListEligibleLots возвращает пригодные партии продукта в порядке стратегии,
// с пометкой о резервах других строк потребности. Пустой результат — не
// ошибка: «нечем покрыть» решает вызывающая сторона.
func (s *Service) ListEligibleLots(ctx context.Context, orgID, productID, materialID uuid.UUID, strategy Strategy) ([]AvailableLot, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown picking strategy %q", ErrValidation, strategy)
	}

	all, err := s.lots.ListByProduct(ctx, orgID, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}

	ranked := SortByStrategy(FilterEligible(all, s.now()), strategy)
	return s.annotate(ctx, orgID, materialID, ranked)
}

func (s *Service) annotate(ctx context.Context, orgID, materialID uuid.UUID, ranked []lots.Lot) ([]AvailableLot, error) {
	ids := make([]uuid.UUID, len(ranked))
	for i, l := range ranked {
		ids[i] = l.ID
	}

	others, err := s.store.SumActiveByLots(ctx, orgID, ids, materialID)
	if err != nil {
		return nil, fmt.Errorf("sum reservations by lot: %w", err)
	}

	out := make([]AvailableLot, len(ranked))
	for i, l := range ranked {
		other := others[l.ID]
		out[i] = AvailableLot{
			Lot:               l,
			OtherReservations: other,
			NetAvailableQty:   l.AvailableQty.Sub(other),
		}
	}
	return out, nil
}

// CreateReservations создаёт по одному резерву на пару (партия, количество).
// Порядок проверок фиксированный, первая неудача — отказ целиком.
// Партии из чужой организации неотличимы от несуществующих.
func (s *Service) CreateReservations(
	ctx context.Context,
	actor Actor,
	orgID, woID, materialID uuid.UUID,
	items []ReservationInput,
	acknowledgeOverReservation bool,
) ([]reservations.Reservation, error) {
	if !actor.canMutate() {
		return nil, fmt.Errorf("%w: role %q cannot reserve materials", ErrForbidden, actor.Role)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no reservations requested", ErrValidation)
	}

	wo, err := s.workOrders.GetWorkOrder(ctx, orgID, woID)
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	if wo == nil {
		return nil, fmt.Errorf("work order %s: %w", woID, ErrNotFound)
	}
	if !wo.Status.Modifiable() {
		return nil, fmt.Errorf("%w: cannot reserve materials for %s work order", ErrInvalidState, wo.Status)
	}

	mat, err := s.workOrders.GetMaterial(ctx, orgID, materialID)
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	if mat == nil || mat.WorkOrderID != woID {
		return nil, fmt.Errorf("material requirement %s: %w", materialID, ErrNotFound)
	}

	byID := make(map[uuid.UUID]*lots.Lot, len(items))
	for _, it := range items {
		l, err := s.lots.GetByID(ctx, orgID, it.LotID)
		if err != nil {
			return nil, fmt.Errorf("get lot: %w", err)
		}
		if l == nil {
			return nil, fmt.Errorf("lot %s: %w", it.LotID, ErrNotFound)
		}
		byID[it.LotID] = l
	}

	for _, it := range items {
		if !it.Qty.IsPositive() {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
	}

	// Реестр не доверяет спискам от вызывающей стороны и перепроверяет
	// физический остаток партии сам.
	for _, it := range items {
		if it.Qty.GreaterThan(byID[it.LotID].AvailableQty) {
			return nil, fmt.Errorf("%w: quantity exceeds lot availability (lot %s has %s %s)",
				ErrValidation, byID[it.LotID].Code, byID[it.LotID].AvailableQty, byID[it.LotID].UOM)
		}
	}

	requested := decimal.Zero
	for _, it := range items {
		requested = requested.Add(it.Qty)
	}

	now := s.now()
	rows := make([]reservations.Reservation, len(items))
	for i, it := range items {
		rows[i] = reservations.Reservation{
			ID:          uuid.New(),
			OrgID:       orgID,
			WorkOrderID: woID,
			MaterialID:  materialID,
			LotID:       it.LotID,
			ReservedQty: it.Qty,
			ConsumedQty: decimal.Zero,
			UOM:         mat.UOM,
			Status:      reservations.StatusActive,
			ReservedAt:  now,
			ReservedBy:  actor.ID,
		}
	}

	// проверка превышения живёт в хранилище, под блокировкой строки
	// потребности: здесь её сумма уже могла устареть
	if err := s.store.Create(ctx, rows, mat.RequiredQty, acknowledgeOverReservation); err != nil {
		var over *OverReservationError
		if errors.As(err, &over) {
			metrics.OverReservationsRejected.Inc()
			return nil, over
		}
		return nil, fmt.Errorf("create reservations: %w", err)
	}

	metrics.ReservationsCreated.Add(float64(len(rows)))
	s.log.Info("reservations created",
		"wo_id", woID, "material_id", materialID,
		"count", len(rows), "total_qty", requested.String())
	return rows, nil
}

// Release снимает резерв вручную. Разрешён только из статуса active:
// повторный релиз и релиз потреблённого — ошибка, не тихий успех.
func (s *Service) Release(ctx context.Context, actor Actor, orgID, reservationID uuid.UUID) (*reservations.Reservation, error) {
	if !actor.canMutate() {
		return nil, fmt.Errorf("%w: role %q cannot release reservations", ErrForbidden, actor.Role)
	}

	res, err := s.store.GetByID(ctx, orgID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}

	switch res.Status {
	case reservations.StatusReleased:
		return nil, fmt.Errorf("%w: reservation already released", ErrInvalidState)
	case reservations.StatusConsumed:
		return nil, fmt.Errorf("%w: reservation already consumed", ErrInvalidState)
	}

	wo, err := s.workOrders.GetWorkOrder(ctx, orgID, res.WorkOrderID)
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	if wo != nil && !wo.Status.Modifiable() {
		return nil, fmt.Errorf("%w: cannot modify reservations for %s work order", ErrInvalidState, wo.Status)
	}

	actorID := actor.ID
	updated, err := s.store.Release(ctx, orgID, reservationID, &actorID, s.now())
	if err != nil {
		return nil, fmt.Errorf("release reservation: %w", err)
	}
	if updated == nil {
		// состояние изменилось между чтением и записью
		return nil, fmt.Errorf("%w: reservation is no longer active", ErrInvalidState)
	}

	metrics.ReservationsReleased.Inc()
	s.log.Info("reservation released", "reservation_id", reservationID, "by", actor.ID)
	return updated, nil
}

// AutoReleaseForWorkOrder — массовый релиз при терминальном статусе заказа
// (completed/cancelled). released_by остаётся пустым: действие системное.
// Операция атомарна; частичный провал наружу выходит ошибкой целиком,
// вызывающая сторона повторяет весь вызов.
func (s *Service) AutoReleaseForWorkOrder(ctx context.Context, orgID, woID uuid.UUID) (int64, error) {
	wo, err := s.workOrders.GetWorkOrder(ctx, orgID, woID)
	if err != nil {
		return 0, fmt.Errorf("get work order: %w", err)
	}
	if wo == nil {
		return 0, fmt.Errorf("work order %s: %w", woID, ErrNotFound)
	}
	if !wo.Status.Terminal() {
		return 0, fmt.Errorf("%w: auto-release requires completed or cancelled work order, got %s", ErrInvalidState, wo.Status)
	}

	count, err := s.store.ReleaseAllForWorkOrder(ctx, orgID, woID, s.now())
	if err != nil {
		return 0, fmt.Errorf("release all for work order: %w", err)
	}

	metrics.ReservationsReleased.Add(float64(count))
	s.log.Info("work order reservations auto-released", "wo_id", woID, "status", wo.Status, "count", count)
	return count, nil
}

// SetPickingStrategy переключает порядок подбора партий организации:
// FEFO — по сроку годности, FIFO — по дате поступления.
func (s *Service) SetPickingStrategy(ctx context.Context, actor Actor, orgID uuid.UUID, enableFEFO bool) error {
	if !actor.canMutate() {
		return fmt.Errorf("%w: role %q cannot change picking strategy", ErrForbidden, actor.Role)
	}
	if err := s.settings.Upsert(ctx, settings.Settings{OrgID: orgID, EnableFEFO: enableFEFO}); err != nil {
		return fmt.Errorf("save warehouse settings: %w", err)
	}
	s.log.Info("picking strategy updated", "org_id", orgID, "fefo", enableFEFO)
	return nil
}

func (s *Service) strategyFor(ctx context.Context, orgID uuid.UUID) (Strategy, error) {
	if s.settings == nil {
		return s.defStrat, nil
	}
	cfg, err := s.settings.Get(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("get warehouse settings: %w", err)
	}
	if cfg == nil {
		return s.defStrat, nil
	}
	if cfg.EnableFEFO {
		return StrategyFEFO, nil
	}
	return StrategyFIFO, nil
}

type Shortage struct {
	MaterialID   uuid.UUID
	MaterialName string
	RequiredQty  decimal.Decimal
	ReservedQty  decimal.Decimal
	Shortage     decimal.Decimal
}

type AutoReserveResult struct {
	Strategy          Strategy
	Processed         int
	FullyReserved     int
	PartiallyReserved int
	Shortages         []Shortage
}

// AutoReserveWorkOrder подбирает и резервирует партии под все недокрытые
// строки потребности заказа по стратегии организации. Партии берутся только
// со склада заказа. Дефициты не ошибка — они возвращаются в сводке.
func (s *Service) AutoReserveWorkOrder(ctx context.Context, actor Actor, orgID, woID uuid.UUID) (*AutoReserveResult, error) {
	if !actor.canMutate() {
		return nil, fmt.Errorf("%w: role %q cannot reserve materials", ErrForbidden, actor.Role)
	}

	wo, err := s.workOrders.GetWorkOrder(ctx, orgID, woID)
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	if wo == nil {
		return nil, fmt.Errorf("work order %s: %w", woID, ErrNotFound)
	}
	if !wo.Status.Modifiable() {
		return nil, fmt.Errorf("%w: cannot reserve materials for %s work order", ErrInvalidState, wo.Status)
	}

	strategy, err := s.strategyFor(ctx, orgID)
	if err != nil {
		return nil, err
	}

	mats, err := s.workOrders.ListMaterials(ctx, orgID, woID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}

	result := &AutoReserveResult{Strategy: strategy, Shortages: []Shortage{}}
	now := s.now()

	for _, mat := range mats {
		if !mat.RequiredQty.IsPositive() {
			continue
		}
		result.Processed++

		reserved, err := s.store.SumActiveByMaterial(ctx, orgID, mat.ID)
		if err != nil {
			return nil, fmt.Errorf("sum reservations: %w", err)
		}
		remaining := mat.RequiredQty.Sub(reserved)
		if !remaining.IsPositive() {
			result.FullyReserved++
			continue
		}

		all, err := s.lots.ListByProduct(ctx, orgID, mat.ProductID)
		if err != nil {
			return nil, fmt.Errorf("list lots: %w", err)
		}
		inWarehouse := all[:0:0]
		for _, l := range all {
			if l.WarehouseID == wo.WarehouseID {
				inWarehouse = append(inWarehouse, l)
			}
		}

		ranked := SortByStrategy(FilterEligible(inWarehouse, now), strategy)
		candidates, err := s.annotate(ctx, orgID, mat.ID, ranked)
		if err != nil {
			return nil, err
		}

		alloc := Allocate(candidates, remaining)
		if len(alloc.Allocations) > 0 {
			rows := make([]reservations.Reservation, len(alloc.Allocations))
			for i, a := range alloc.Allocations {
				rows[i] = reservations.Reservation{
					ID:          uuid.New(),
					OrgID:       orgID,
					WorkOrderID: woID,
					MaterialID:  mat.ID,
					LotID:       a.LotID,
					ReservedQty: a.Qty,
					ConsumedQty: decimal.Zero,
					UOM:         mat.UOM,
					Status:      reservations.StatusActive,
					ReservedAt:  now,
					ReservedBy:  actor.ID,
				}
			}
			if err := s.store.Create(ctx, rows, mat.RequiredQty, false); err != nil {
				return nil, fmt.Errorf("create reservations: %w", err)
			}
			metrics.ReservationsCreated.Add(float64(len(rows)))
		}

		newReserved := reserved.Add(alloc.TotalReserved)
		switch {
		case newReserved.GreaterThanOrEqual(mat.RequiredQty):
			result.FullyReserved++
		default:
			if alloc.TotalReserved.IsPositive() || reserved.IsPositive() {
				result.PartiallyReserved++
			}
			result.Shortages = append(result.Shortages, Shortage{
				MaterialID:   mat.ID,
				MaterialName: mat.Name,
				RequiredQty:  mat.RequiredQty,
				ReservedQty:  newReserved,
				Shortage:     mat.RequiredQty.Sub(newReserved),
			})
		}
	}

	s.log.Info("work order auto-reserved",
		"wo_id", woID, "strategy", strategy,
		"processed", result.Processed,
		"full", result.FullyReserved,
		"partial", result.PartiallyReserved,
		"shortages", len(result.Shortages))
	return result, nil
}

type ReservedBy struct {
	ID   uuid.UUID
	Name string
}

type ReservationRow struct {
	Reservation reservations.Reservation
	LotCode     string
	ReservedBy  *ReservedBy
}

type MaterialReservations struct {
	Material      workorders.Material
	Rows          []ReservationRow
	TotalReserved decimal.Decimal
	Coverage      Coverage
}

// MaterialReservations — активные резервы строки потребности с покрытием;
// то, что слой маршрутов отдаёт таблице резервов в UI.
func (s *Service) MaterialReservations(ctx context.Context, orgID, materialID uuid.UUID) (*MaterialReservations, error) {
	mat, err := s.workOrders.GetMaterial(ctx, orgID, materialID)
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	if mat == nil {
		return nil, fmt.Errorf("material requirement %s: %w", materialID, ErrNotFound)
	}

	active, err := s.store.ListActiveByMaterial(ctx, orgID, materialID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	out := &MaterialReservations{Material: *mat, Rows: make([]ReservationRow, 0, len(active))}
	for _, res := range active {
		row := ReservationRow{Reservation: res}

		if l, err := s.lots.GetByID(ctx, orgID, res.LotID); err != nil {
			return nil, fmt.Errorf("get lot: %w", err)
		} else if l != nil {
			row.LotCode = l.Code
		}

		if s.users != nil {
			if u, err := s.users.GetByID(ctx, orgID, res.ReservedBy); err != nil {
				return nil, fmt.Errorf("get user: %w", err)
			} else if u != nil {
				row.ReservedBy = &ReservedBy{ID: u.ID, Name: u.FullName}
			}
		}

		out.Rows = append(out.Rows, row)
		out.TotalReserved = out.TotalReserved.Add(res.ReservedQty)
	}

	out.Coverage = Calculate(mat.RequiredQty, out.TotalReserved)
	return out, nil
}

// WorkOrderReservations — резервы всех строк потребности заказа;
// источник для панели резервов и xlsx-выгрузки.
func (s *Service) WorkOrderReservations(ctx context.Context, orgID, woID uuid.UUID) ([]MaterialReservations, error) {
	wo, err := s.workOrders.GetWorkOrder(ctx, orgID, woID)
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	if wo == nil {
		return nil, fmt.Errorf("work order %s: %w", woID, ErrNotFound)
	}

	mats, err := s.workOrders.ListMaterials(ctx, orgID, woID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}

	out := make([]MaterialReservations, 0, len(mats))
	for _, mat := range mats {
		mr, err := s.MaterialReservations(ctx, orgID, mat.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *mr)
	}
	return out, nil
}
