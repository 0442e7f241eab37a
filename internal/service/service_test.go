package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/record"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
	"github.com/mmeshcher/counter-ledger/internal/validation"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

type countingGateway struct {
	*sheet.Gateway
	appends int
}

func (g *countingGateway) Append(ctx context.Context, e model.SaleEvent) error {
	g.appends++
	return g.Gateway.Append(ctx, e)
}

func newTestService(t *testing.T, table sheet.Table) (*Service, *clock, *countingGateway) {
	t.Helper()

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	catalog, err := model.DefaultCatalog()
	require.NoError(t, err)

	c := &clock{now: time.Date(2026, 10, 18, 11, 0, 0, 0, loc)}
	gw := &countingGateway{Gateway: sheet.NewGateway(table, model.SchemaExtended, loc)}
	svc := NewService(gw, catalog, Settings{
		Location:  loc,
		DailyGoal: decimal.NewFromInt(1000),
		Now:       c.Now,
	}, zaptest.NewLogger(t))

	return svc, c, gw
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSubmit_ValidationNeverReachesStore(t *testing.T) {
	svc, _, gw := newTestService(t, sheet.NewMemoryTable())

	_, err := svc.Submit(context.Background(), record.Draft{Outcome: "Bought"})

	var vErr *validation.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "amount", vErr.Field)
	assert.Equal(t, 0, gw.appends)
}

func TestSubmit_StampsBusinessTime(t *testing.T) {
	svc, c, _ := newTestService(t, sheet.NewMemoryTable())
	c.now = c.now.UTC().Add(250 * time.Millisecond)

	e, err := svc.Submit(context.Background(), record.Draft{Outcome: "Bought", Amount: amount(50)})
	require.NoError(t, err)

	assert.Equal(t, "America/Los_Angeles", e.Timestamp.Location().String())
	assert.Equal(t, 11, e.Timestamp.Hour())
	assert.Equal(t, 0, e.Timestamp.Nanosecond())
}

func TestDay_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := newTestService(t, sheet.NewMemoryTable())

	_, err := svc.Submit(ctx, record.Draft{Outcome: "Bought", Amount: amount(120), Intent: "Gift"})
	require.NoError(t, err)
	c.now = c.now.Add(time.Minute)
	_, err = svc.Submit(ctx, record.Draft{Outcome: "No Buy", Reason: "Price"})
	require.NoError(t, err)

	r, err := svc.Day(ctx, svc.Today(), model.FieldIntent)
	require.NoError(t, err)

	assert.True(t, r.Today)
	assert.Equal(t, "2026-10-18", r.Date)
	assert.Len(t, r.Events, 2)
	assert.True(t, r.Summary.TotalSales.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 2, r.Summary.Traffic)
	assert.InDelta(t, 50.0, r.Summary.ConversionRate, 1e-9)
	assert.True(t, r.Summary.AverageOrderValue.Equal(decimal.NewFromInt(120)))
	assert.InDelta(t, 12.0, r.Summary.GoalProgress, 1e-9)
	assert.True(t, r.Breakdown["Gift"].Equal(decimal.NewFromInt(120)))
}

func TestDay_History(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := newTestService(t, sheet.NewMemoryTable())

	_, err := svc.Submit(ctx, record.Draft{Outcome: "Bought", Amount: amount(30)})
	require.NoError(t, err)
	c.now = c.now.AddDate(0, 0, 1)
	_, err = svc.Submit(ctx, record.Draft{Outcome: "Bought", Amount: amount(70)})
	require.NoError(t, err)

	day, err := svc.ParseDate("2026-10-18")
	require.NoError(t, err)

	r, err := svc.Day(ctx, day, "")
	require.NoError(t, err)
	assert.False(t, r.Today)
	assert.Len(t, r.Events, 1)
	assert.True(t, r.Summary.TotalSales.Equal(decimal.NewFromInt(30)))
	assert.Nil(t, r.Breakdown)

	dates, err := svc.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-19", "2026-10-18"}, dates)

	all, err := svc.All(ctx, "")
	require.NoError(t, err)
	assert.True(t, all.Summary.TotalSales.Equal(decimal.NewFromInt(100)))

	_, err = svc.ParseDate("18/10/2026")
	assert.Error(t, err)
}

func TestUndoLast(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := newTestService(t, sheet.NewMemoryTable())

	undo, err := svc.UndoLast(ctx)
	require.NoError(t, err)
	assert.False(t, undo.Done, "nothing to undo on an empty table")

	for i := int64(1); i <= 3; i++ {
		_, err := svc.Submit(ctx, record.Draft{Outcome: "Bought", Amount: amount(i * 10)})
		require.NoError(t, err)
		c.now = c.now.Add(time.Minute)
	}

	undo, err = svc.UndoLast(ctx)
	require.NoError(t, err)
	require.True(t, undo.Done)
	assert.True(t, undo.Event.Amount.Equal(decimal.NewFromInt(30)))

	r, err := svc.Day(ctx, svc.Today(), "")
	require.NoError(t, err)
	assert.Len(t, r.Events, 2)
}

func TestUndoLast_RefusesHistory(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := newTestService(t, sheet.NewMemoryTable())

	_, err := svc.Submit(ctx, record.Draft{Outcome: "No Buy", Reason: "Competitor"})
	require.NoError(t, err)

	c.now = c.now.AddDate(0, 0, 1)

	_, err = svc.UndoLast(ctx)
	assert.ErrorIs(t, err, ErrUndoNotToday)

	all, err := svc.All(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Events, 1)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, sheet.NewMemoryTable())

	_, err := svc.Submit(ctx, record.Draft{Outcome: "Bought", Amount: amount(99), Intent: "Specific"})
	require.NoError(t, err)

	data, err := svc.Export(ctx, svc.Today())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.SchemaExtended.Header(), rows[0])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Contains(t, summary, []string{"Total sales", "99.00"})
	assert.Contains(t, summary, []string{"Sales: Specific", "99.00"})
	assert.Equal(t, "sales-2026-10-18.xlsx", ExportName(svc.Today()))
}
