package export

import (
	"bytes"
	"testing"
	"time"

	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcel_EmptyStatement(t *testing.T) {
	out, err := Excel(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestExcel_RendersRows(t *testing.T) {
	rows := []billingdomain.StatementRow{
		{
			UtilityType: utility.Electricity,
			PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			Amount:      1500.00,
			Paid:        1000.00,
		},
		{
			UtilityType: utility.Gas,
			PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			Amount:      300.00,
			Paid:        300.00,
		},
	}

	out, err := Excel(rows)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Contains(t, sheets, "Начисления")

	got, err := f.GetRows("Начисления")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Ресурс", "Период", "Начислено", "Оплачено", "Остаток"}, got[0])
	assert.Equal(t, "Электричество", got[1][0])
	assert.Equal(t, "Газ", got[2][0])

	debt, err := f.GetCellValue("Начисления", "E2")
	require.NoError(t, err)
	assert.Equal(t, "500", debt)
}
