// Package report собирает Excel-отчёты по складу и истории операций.
package report

import (
	"github.com/mkarpushin/skladd/internal/domain/ledger"
	"github.com/mkarpushin/skladd/internal/domain/materials"
	"github.com/xuri/excelize/v2"
)

func Materials(items []materials.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"ID", "Название", "Ед.", "Количество", "Мин. остаток", "Категория"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, err
	}

	row := 2
	for _, it := range items {
		excelRow := []interface{}{it.ID, it.Name, it.Unit, it.Quantity, it.MinQuantity, it.CategoryName}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			_ = f.Close()
			return nil, err
		}
		row++
	}
	return f, nil
}

func Transactions(entries []ledger.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"ID", "Материал", "Тип", "Кол-во", "Комментарий", "Дата"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, err
	}

	row := 2
	for _, e := range entries {
		excelRow := []interface{}{e.ID, e.MaterialName, string(e.Type), e.Amount, e.Comment, e.OperationDate.Format("2006-01-02 15:04:05")}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			_ = f.Close()
			return nil, err
		}
		row++
	}
	return f, nil
}
