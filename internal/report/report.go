package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/erp-core/internal/reserve"
)

// BuildWorkOrderReservations собирает xlsx по резервам заказа:
// по строке на резерв плюс итог покрытия на каждую строку потребности.
func BuildWorkOrderReservations(mats []reserve.MaterialReservations) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"material_name",
		"required_qty",
		"reserved_qty",
		"coverage_percent",
		"coverage_status",
		"lot_code",
		"lot_reserved_qty",
		"uom",
		"status",
		"reserved_at",
		"reserved_by",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, mr := range mats {
		coverage := mr.Coverage

		if len(mr.Rows) == 0 {
			// строка-итог без резервов, чтобы дефицит был виден в файле
			line := []interface{}{
				mr.Material.Name,
				mr.Material.RequiredQty.String(),
				mr.TotalReserved.String(),
				coverage.Percent.StringFixed(0),
				string(coverage.Status),
				"", "", mr.Material.UOM, "", "", "",
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &line); err != nil {
				return nil, err
			}
			row++
			continue
		}

		for _, r := range mr.Rows {
			reservedBy := ""
			if r.ReservedBy != nil {
				reservedBy = r.ReservedBy.Name
			}
			line := []interface{}{
				mr.Material.Name,
				mr.Material.RequiredQty.String(),
				mr.TotalReserved.String(),
				coverage.Percent.StringFixed(0),
				string(coverage.Status),
				r.LotCode,
				r.Reservation.ReservedQty.String(),
				r.Reservation.UOM,
				string(r.Reservation.Status),
				r.Reservation.ReservedAt.Format("2006-01-02 15:04"),
				reservedBy,
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &line); err != nil {
				return nil, err
			}
			row++
		}
	}

	return f, nil
}
