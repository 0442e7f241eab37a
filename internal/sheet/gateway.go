package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/counter-ledger/internal/model"
)

// Undo описывает результат отмены последней записи.
type Undo struct {
	Done  bool            `json:"undone"`
	Row   []string        `json:"row,omitempty"`
	Event model.SaleEvent `json:"event"`
}

// Gateway сериализует записи в таблицу и читает их обратно.
type Gateway struct {
	table  Table
	schema model.Schema
	loc    *time.Location
}

// NewGateway создаёт шлюз поверх таблицы. По loc разбирается колонка Time.
func NewGateway(table Table, schema model.Schema, loc *time.Location) *Gateway {
	if loc == nil {
		loc = time.UTC
	}
	return &Gateway{
		table:  table,
		schema: schema,
		loc:    loc,
	}
}

// Schema возвращает ревизию схемы, с которой работает шлюз.
func (g *Gateway) Schema() model.Schema {
	return g.schema
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// Append дописывает запись одной строкой. Повторов нет: сбой сразу возвращается вызывающему.
func (g *Gateway) Append(ctx context.Context, e model.SaleEvent) error {
	rows, err := g.table.Rows(ctx)
	if err != nil && !errors.Is(err, ErrTableNotFound) {
		return unavailable("read header", err)
	}

	if len(rows) == 0 {
		if err := g.table.AppendRow(ctx, g.schema.Header()); err != nil {
			return unavailable("write header", err)
		}
	} else if err := g.checkHeader(rows[0]); err != nil {
		return err
	}

	if err := g.table.AppendRow(ctx, EncodeRow(g.schema, e, g.loc)); err != nil {
		return unavailable("append row", err)
	}
	return nil
}

func (g *Gateway) checkHeader(header []string) error {
	want := g.schema.Header()
	if len(header) < len(want) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(header), len(want))
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i+1, header[i], col)
		}
	}
	return nil
}

// LoadAll читает все записи. Отсутствующая или пустая таблица даёт пустой результат без ошибки.
func (g *Gateway) LoadAll(ctx context.Context) ([]model.SaleEvent, error) {
	rows, err := g.table.Rows(ctx)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return []model.SaleEvent{}, nil
		}
		return nil, unavailable("read rows", err)
	}

	if len(rows) <= 1 {
		return []model.SaleEvent{}, nil
	}

	header := rows[0]
	events := make([]model.SaleEvent, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if blank(r) {
			continue
		}
		events = append(events, DecodeRow(header, r, g.loc))
	}

	return events, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// UndoLast удаляет физически последнюю строку, если кроме заголовка в таблице что-то есть.
//
// Последняя строка определяется по числу строк на момент вызова, поэтому одновременная запись
// другим оператором может привести к удалению не той строки. Записи не имеют стабильного
// идентификатора, так что без смены схемы это не исправить.
func (g *Gateway) UndoLast(ctx context.Context) (Undo, error) {
	return g.UndoLastIf(ctx, nil)
}

// UndoLastIf работает как UndoLast, но сначала передаёт последнюю запись в guard.
// Ошибка guard отменяет удаление и возвращается как есть.
func (g *Gateway) UndoLastIf(ctx context.Context, guard func(model.SaleEvent) error) (Undo, error) {
	rows, err := g.table.Rows(ctx)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return Undo{}, nil
		}
		return Undo{}, unavailable("read rows", err)
	}

	if len(rows) <= 1 {
		return Undo{}, nil
	}

	last := len(rows) - 1
	ev := DecodeRow(rows[0], rows[last], g.loc)

	if guard != nil {
		if err := guard(ev); err != nil {
			return Undo{}, err
		}
	}

	if err := g.table.DeleteRow(ctx, last); err != nil {
		return Undo{}, unavailable("delete row", err)
	}

	return Undo{
		Done:  true,
		Row:   rows[last],
		Event: ev,
	}, nil
}
