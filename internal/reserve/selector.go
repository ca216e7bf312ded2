package reserve

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/erp-core/internal/domain/lots"
)

// Strategy — порядок подбора партий.
type Strategy string

const (
	StrategyFIFO Strategy = "fifo"
	StrategyFEFO Strategy = "fefo"
)

func (s Strategy) Valid() bool { return s == StrategyFIFO || s == StrategyFEFO }

// AvailableLot — пригодная партия с пометкой о чужих резервах.
// Мягкая модель: партию, уже занятую другим заказом, резервировать можно,
// но вызывающую сторону предупреждаем, а не блокируем.
type AvailableLot struct {
	Lot               lots.Lot
	OtherReservations decimal.Decimal
	NetAvailableQty   decimal.Decimal
}

// Eligible — пригодна ли партия к резервированию: статус available,
// качество passed, срок годности (если задан) не истёк на дату now.
func Eligible(l lots.Lot, now time.Time) bool {
	if l.Status != lots.StatusAvailable {
		return false
	}
	if l.Quality != lots.QualityPassed {
		return false
	}
	if l.ExpiryDate != nil && l.ExpiryDate.Before(startOfDay(now)) {
		return false
	}
	return true
}

// FilterEligible отбирает пригодные партии. Без побочных эффектов:
// повторное применение даёт тот же результат.
func FilterEligible(ls []lots.Lot, now time.Time) []lots.Lot {
	out := make([]lots.Lot, 0, len(ls))
	for _, l := range ls {
		if Eligible(l, now) {
			out = append(out, l)
		}
	}
	return out
}

// SortByStrategy возвращает отсортированную копию.
//
// FIFO: created_at по возрастанию; при равенстве — expiry_date по
// возрастанию, партии без срока годности после партий со сроком.
// FEFO: expiry_date по возрастанию, без срока годности — всегда в конец;
// при равном сроке — created_at по возрастанию.
func SortByStrategy(ls []lots.Lot, strategy Strategy) []lots.Lot {
	out := make([]lots.Lot, len(ls))
	copy(out, ls)

	less := lessFIFO
	if strategy == StrategyFEFO {
		less = lessFEFO
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessFIFO(a, b lots.Lot) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return expiryBefore(a.ExpiryDate, b.ExpiryDate)
}

func lessFEFO(a, b lots.Lot) bool {
	if a.ExpiryDate == nil && b.ExpiryDate == nil {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if a.ExpiryDate == nil || b.ExpiryDate == nil {
		return b.ExpiryDate == nil
	}
	if !a.ExpiryDate.Equal(*b.ExpiryDate) {
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// nil-срок сортируется после любой даты
func expiryBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
