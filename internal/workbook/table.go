// Package workbook хранит построчную таблицу в локальном файле .xlsx и формирует отчёты.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/mmeshcher/counter-ledger/internal/sheet"
)

// Table — лист sheetName в файле path.
type Table struct {
	mu    sync.Mutex
	path  string
	sheet string
}

// New создаёт таблицу. Файл появится при первой записи.
func New(path, sheetName string) *Table {
	return &Table{
		path:  path,
		sheet: sheetName,
	}
}

func (t *Table) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", sheet.ErrTableNotFound, t.path)
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

// Rows читает все строки листа.
func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(t.sheet)
	if err != nil {
		return nil, fmt.Errorf("find sheet: %w", err)
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: sheet %q", sheet.ErrTableNotFound, t.sheet)
	}

	rows, err := f.GetRows(t.sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	return rows, nil
}

// AppendRow дописывает строку, создавая файл и лист при необходимости.
func (t *Table) AppendRow(ctx context.Context, row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.open()
	if errors.Is(err, sheet.ErrTableNotFound) {
		f, err = newFile(t.sheet)
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(t.sheet)
	if err != nil {
		return fmt.Errorf("find sheet: %w", err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(t.sheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
	}

	rows, err := f.GetRows(t.sheet)
	if err != nil {
		return fmt.Errorf("get rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(t.sheet, cell, &row); err != nil {
		return fmt.Errorf("set row: %w", err)
	}

	return t.save(f)
}

// DeleteRow удаляет строку по индексу (0 — заголовок).
func (t *Table) DeleteRow(ctx context.Context, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.RemoveRow(t.sheet, index+1); err != nil {
		return fmt.Errorf("remove row %d: %w", index, err)
	}

	return t.save(f)
}

// save пишет книгу во временный файл и переименовывает его, чтобы не оставить полузаписанный файл.
func (t *Table) save(f *excelize.File) error {
	tmp, err := os.CreateTemp(filepath.Dir(t.path), ".workbook-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()

	if err := f.SaveAs(tmpName); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func newFile(sheetName string) (*excelize.File, error) {
	f := excelize.NewFile()
	if first := f.GetSheetName(0); first != sheetName {
		if err := f.SetSheetName(first, sheetName); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}
	return f, nil
}
