// Package export renders billing statements as xlsx workbooks for the web
// dashboard download. Pure presentation over a read-only billing query.
package export

import (
	"bytes"
	"fmt"

	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Начисления"

var header = []string{"Ресурс", "Период", "Начислено", "Оплачено", "Остаток"}

// Excel builds an xlsx statement from charge rows. Returns nil when there
// is nothing to export.
func Excel(rows []billingdomain.StatementRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := setRow(f, 1, headerCells); err != nil {
		return nil, err
	}

	for i, row := range rows {
		period := fmt.Sprintf("%s – %s",
			row.PeriodStart.Format("2006-01-02"),
			row.PeriodEnd.Format("2006-01-02"),
		)
		cells := []any{
			row.UtilityType.Label(),
			period,
			row.Amount,
			row.Paid,
			row.Debt(),
		}
		if err := setRow(f, i+2, cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
