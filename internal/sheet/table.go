// Package sheet реализует шлюз к внешней построчной таблице: дозапись, полное чтение и отмену последней строки.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrTableNotFound возвращается таблицей, которой ещё не существует.
	ErrTableNotFound = errors.New("table not found")
	// ErrStoreUnavailable оборачивает любой сбой обращения к хранилищу.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSchemaMismatch возвращается, если заголовок таблицы не совпадает со схемой.
	ErrSchemaMismatch = errors.New("table header does not match schema")
)

// Table описывает внешнюю таблицу. Строка с индексом 0 содержит заголовок.
type Table interface {
	// Rows возвращает все строки таблицы или ErrTableNotFound.
	Rows(ctx context.Context) ([][]string, error)
	// AppendRow дописывает строку в конец таблицы, создавая таблицу при необходимости.
	AppendRow(ctx context.Context, row []string) error
	// DeleteRow удаляет строку по индексу в результате Rows.
	DeleteRow(ctx context.Context, index int) error
}

// MemoryTable хранит таблицу в памяти процесса.
type MemoryTable struct {
	mu     sync.Mutex
	rows   [][]string
	exists bool
}

// NewMemoryTable создаёт таблицу. Без строк таблица считается несуществующей до первой записи.
func NewMemoryTable(rows ...[]string) *MemoryTable {
	t := &MemoryTable{exists: len(rows) > 0}
	for _, r := range rows {
		t.rows = append(t.rows, slices.Clone(r))
	}
	return t
}

// Rows возвращает копию всех строк.
func (t *MemoryTable) Rows(ctx context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.exists {
		return nil, ErrTableNotFound
	}

	res := make([][]string, len(t.rows))
	for i, r := range t.rows {
		res[i] = slices.Clone(r)
	}
	return res, nil
}

// AppendRow дописывает строку.
func (t *MemoryTable) AppendRow(ctx context.Context, row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.exists = true
	t.rows = append(t.rows, slices.Clone(row))
	return nil
}

// DeleteRow удаляет строку по индексу.
func (t *MemoryTable) DeleteRow(ctx context.Context, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("delete row %d: out of range", index)
	}
	t.rows = slices.Delete(t.rows, index, index+1)
	return nil
}
