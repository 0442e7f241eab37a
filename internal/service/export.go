package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mmeshcher/counter-ledger/internal/metrics"
	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
	"github.com/mmeshcher/counter-ledger/internal/workbook"
)

// Export формирует отчёт .xlsx за бизнес-дату: лист записей и лист сводки.
func (s *Service) Export(ctx context.Context, day time.Time) ([]byte, error) {
	r, err := s.Day(ctx, day, model.FieldIntent)
	if err != nil {
		return nil, err
	}

	schema := s.gateway.Schema()
	records := make([][]string, 0, len(r.Events)+1)
	records = append(records, schema.Header())
	for _, e := range r.Events {
		records = append(records, sheet.EncodeRow(schema, e, s.settings.Location))
	}

	sum := r.Summary
	summary := [][]string{
		{"Metric", "Value"},
		{"Date", r.Date},
		{"Total sales", sum.TotalSales.StringFixed(2)},
		{"Traffic", strconv.Itoa(sum.Traffic)},
		{"Bought", strconv.Itoa(sum.Bought)},
		{"Conversion rate, %", strconv.FormatFloat(sum.ConversionRate, 'f', 1, 64)},
		{"Average order value", sum.AverageOrderValue.StringFixed(2)},
		{"Daily goal", sum.Goal.StringFixed(2)},
		{"Goal progress, %", strconv.FormatFloat(sum.GoalProgress, 'f', 1, 64)},
	}
	for _, v := range s.catalog.Options(model.FieldReason) {
		summary = append(summary, []string{"No buy: " + v, strconv.Itoa(sum.NoBuyReasons[v])})
	}
	for _, v := range s.catalog.Options(model.FieldIntent) {
		summary = append(summary, []string{"Sales: " + v, r.Breakdown[v].StringFixed(2)})
	}

	data, err := workbook.Export(
		workbook.Sheet{Name: "Records", Rows: records},
		workbook.Sheet{Name: "Summary", Rows: summary},
	)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", r.Date, err)
	}
	return data, nil
}

// ExportName возвращает имя файла отчёта.
func ExportName(day time.Time) string {
	return "sales-" + day.Format(metrics.DateLayout) + ".xlsx"
}
