package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/erp-core/internal/domain/reservations"
	"github.com/Spok95/erp-core/internal/domain/workorders"
	"github.com/Spok95/erp-core/internal/reserve"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBuildWorkOrderReservations(t *testing.T) {
	reservedAt := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	mats := []reserve.MaterialReservations{
		{
			Material: workorders.Material{
				ID: uuid.New(), Name: "Flour premium",
				RequiredQty: d("100"), UOM: "kg",
			},
			TotalReserved: d("80"),
			Coverage: reserve.Coverage{
				Percent:  d("80"),
				Shortage: d("20"),
				Status:   reserve.CoveragePartial,
			},
			Rows: []reserve.ReservationRow{
				{
					Reservation: reservations.Reservation{
						ReservedQty: d("50"), UOM: "kg",
						Status: reservations.StatusActive, ReservedAt: reservedAt,
					},
					LotCode:    "LP-A",
					ReservedBy: &reserve.ReservedBy{ID: uuid.New(), Name: "Olga Petrova"},
				},
				{
					Reservation: reservations.Reservation{
						ReservedQty: d("30"), UOM: "kg",
						Status: reservations.StatusActive, ReservedAt: reservedAt,
					},
					LotCode: "LP-B",
				},
			},
		},
		{
			Material: workorders.Material{
				ID: uuid.New(), Name: "Sugar",
				RequiredQty: d("40"), UOM: "kg",
			},
			TotalReserved: decimal.Zero,
			Coverage: reserve.Coverage{
				Percent:  decimal.Zero,
				Shortage: d("40"),
				Status:   reserve.CoverageNone,
			},
		},
	}

	f, err := BuildWorkOrderReservations(mats)
	require.NoError(t, err)
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	get := func(axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "material_name", get("A1"))
	assert.Equal(t, "reserved_by", get("K1"))

	// строки резервов
	assert.Equal(t, "Flour premium", get("A2"))
	assert.Equal(t, "100", get("B2"))
	assert.Equal(t, "80", get("C2"))
	assert.Equal(t, "80", get("D2"))
	assert.Equal(t, "partial", get("E2"))
	assert.Equal(t, "LP-A", get("F2"))
	assert.Equal(t, "50", get("G2"))
	assert.Equal(t, "kg", get("H2"))
	assert.Equal(t, "active", get("I2"))
	assert.Equal(t, "2026-01-15 10:30", get("J2"))
	assert.Equal(t, "Olga Petrova", get("K2"))

	assert.Equal(t, "LP-B", get("F3"))
	assert.Equal(t, "", get("K3"), "системный или неизвестный автор оставляет колонку пустой")

	// строка-итог для потребности без резервов
	assert.Equal(t, "Sugar", get("A4"))
	assert.Equal(t, "0", get("C4"))
	assert.Equal(t, "none", get("E4"))
	assert.Equal(t, "", get("F4"))
}

func TestBuildWorkOrderReservations_Empty(t *testing.T) {
	f, err := BuildWorkOrderReservations(nil)
	require.NoError(t, err)

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	v, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "material_name", v)

	v, err = f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}
