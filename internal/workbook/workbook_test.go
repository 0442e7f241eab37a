package workbook

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
)

func TestTable_Lifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	table := New(path, "Counter")

	_, err := table.Rows(ctx)
	require.True(t, errors.Is(err, sheet.ErrTableNotFound), "missing file must read as a missing table, got %v", err)

	require.NoError(t, table.AppendRow(ctx, []string{"Time", "Amount"}))
	require.NoError(t, table.AppendRow(ctx, []string{"2026-01-01 10:00:00", "10"}))
	require.NoError(t, table.AppendRow(ctx, []string{"2026-01-01 11:00:00", "20"}))

	rows, err := table.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2026-01-01 11:00:00", "20"}, rows[2])

	require.NoError(t, table.DeleteRow(ctx, 2))

	rows, err = table.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "10", rows[1][1])

	// другой лист той же книги пока не существует
	_, err = New(path, "Other").Rows(ctx)
	assert.ErrorIs(t, err, sheet.ErrTableNotFound)
}

func TestTable_WithGateway(t *testing.T) {
	ctx := context.Background()
	table := New(filepath.Join(t.TempDir(), "sales.xlsx"), "Sheet1")
	g := sheet.NewGateway(table, model.SchemaExtended, time.UTC)

	e := model.SaleEvent{
		Timestamp:          time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Outcome:            model.OutcomeBought,
		AgeBracket:         "20s",
		PromoMethods:       []string{"Sample", "Demo"},
		IsTargetBrand:      "Yes",
		BrandSubCategories: []string{"Makeup"},
	}
	require.NoError(t, g.Append(ctx, e))

	events, err := g.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"Sample", "Demo"}, events[0].PromoMethods)
	assert.Equal(t, []string{"Makeup"}, events[0].BrandSubCategories)
}

func TestExport(t *testing.T) {
	data, err := Export(
		Sheet{Name: "Records", Rows: [][]string{{"Time", "Amount"}, {"2026-01-01 10:00:00", "10"}}},
		Sheet{Name: "Summary", Rows: [][]string{{"Metric", "Value"}, {"Traffic", "1"}}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Records", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Metric", "Value"}, {"Traffic", "1"}}, rows)

	_, err = Export()
	assert.Error(t, err)
}
