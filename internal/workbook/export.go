package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet — лист отчёта: первая строка оформляется как заголовок.
type Sheet struct {
	Name string
	Rows [][]string
}

// Export собирает книгу .xlsx из листов и возвращает её содержимое.
func Export(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: no sheets")
	}

	f, err := newFile(sheets[0].Name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}

	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.Name); err != nil {
				return nil, fmt.Errorf("create sheet %q: %w", s.Name, err)
			}
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return nil, fmt.Errorf("set row: %w", err)
			}
		}

		if len(s.Rows) > 0 && len(s.Rows[0]) > 0 {
			last, err := excelize.CoordinatesToCellName(len(s.Rows[0]), 1)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellStyle(s.Name, "A1", last, bold); err != nil {
				return nil, fmt.Errorf("set header style: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
