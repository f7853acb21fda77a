package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/skladd/internal/domain/ledger"
	"github.com/mkarpushin/skladd/internal/domain/materials"
)

func TestMaterialsReport(t *testing.T) {
	f, err := Materials([]materials.Row{
		{ID: 1, Name: "Болты", Unit: "pcs", Quantity: 100, MinQuantity: 10, CategoryName: "Крепёж"},
		{ID: 2, Name: "Перчатки", Unit: "pcs", Quantity: 50, MinQuantity: 5, CategoryName: ""},
	})
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	name, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Болты", name)

	cat, err := f.GetCellValue(sheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, "", cat)

	qty, err := f.GetCellValue(sheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "100", qty)
}

func TestTransactionsReport(t *testing.T) {
	when := time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC)
	f, err := Transactions([]ledger.Row{
		{ID: 9, MaterialName: "Болты", Type: ledger.Income, Amount: 30, Comment: "Операция через программу", OperationDate: when},
	})
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	typ, err := f.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "income", typ)

	date, err := f.GetCellValue(sheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-03 12:30:00", date)
}

func TestEmptyReportHasOnlyHeader(t *testing.T) {
	f, err := Transactions(nil)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
