package gsheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
)

// fakeSheets эмулирует нужную часть Sheets API v4 для одного листа.
type fakeSheets struct {
	mu        sync.Mutex
	title     string
	sheetID   int64
	rows      [][]interface{}
	missing   bool
	appendErr int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		if f.missing {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range: 'Sheet1'","status":"INVALID_ARGUMENT"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Range: f.title, MajorDimension: "ROWS", Values: f.rows})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		if f.appendErr != 0 {
			w.WriteHeader(f.appendErr)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
			return
		}
		if got := r.URL.Query().Get("valueInputOption"); got != "RAW" {
			http.Error(w, `{"error":{"code":400,"message":"bad valueInputOption"}}`, http.StatusBadRequest)
			return
		}
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, `{"error":{"code":400,"message":"bad body"}}`, http.StatusBadRequest)
			return
		}
		f.missing = false
		f.rows = append(f.rows, vr.Values...)
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":{"code":400,"message":"bad body"}}`, http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			rg := rq.DeleteDimension.Range
			if rg.SheetId != f.sheetID || rg.Dimension != "ROWS" || rg.EndIndex != rg.StartIndex+1 {
				http.Error(w, `{"error":{"code":400,"message":"bad range"}}`, http.StatusBadRequest)
				return
			}
			f.rows = append(f.rows[:rg.StartIndex], f.rows[rg.EndIndex:]...)
		}
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(sheets.Spreadsheet{
			Sheets: []*sheets.Sheet{
				{Properties: &sheets.SheetProperties{SheetId: 1, Title: "Other"}},
				{Properties: &sheets.SheetProperties{SheetId: f.sheetID, Title: f.title}},
			},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
	}
}

func newTestTable(t *testing.T, fake *fakeSheets) *Table {
	t.Helper()

	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	table, err := New(ctx, "spreadsheet-1", fake.title, "",
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return table
}

func TestTable_MissingSheet(t *testing.T) {
	table := newTestTable(t, &fakeSheets{title: "Sheet1", missing: true})

	_, err := table.Rows(context.Background())
	if !errors.Is(err, sheet.ErrTableNotFound) {
		t.Fatalf("Rows error = %v, want ErrTableNotFound", err)
	}
}

func TestTable_AppendReadDelete(t *testing.T) {
	fake := &fakeSheets{title: "Sheet1", sheetID: 0}
	table := newTestTable(t, fake)
	ctx := context.Background()

	header := model.SchemaBasic.Header()
	first := []string{"2026-01-01 10:00:00", "30s", "Female", "Asian", "Gift", "Bought", "120", ""}
	second := []string{"2026-01-01 10:05:00", "20s", "Male", "White", "N/A", "No Buy", "0", "Price"}

	for _, r := range [][]string{header, first, second} {
		if err := table.AppendRow(ctx, r); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}

	rows, err := table.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 3 || rows[2][7] != "Price" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if err := table.DeleteRow(ctx, 2); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}

	rows, err = table.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 || rows[1][6] != "120" {
		t.Fatalf("unexpected rows after delete: %v", rows)
	}
}

func TestTable_AppendFailureKeepsCause(t *testing.T) {
	table := newTestTable(t, &fakeSheets{title: "Sheet1", appendErr: http.StatusForbidden})

	err := table.AppendRow(context.Background(), []string{"x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, sheet.ErrTableNotFound) {
		t.Fatalf("permission errors must not look like a missing table")
	}
	if !strings.Contains(err.Error(), "permission") {
		t.Fatalf("error %q does not carry the cause", err)
	}
}

func TestTable_WithGateway(t *testing.T) {
	table := newTestTable(t, &fakeSheets{title: "Sales Log", sheetID: 42})
	ctx := context.Background()
	g := sheet.NewGateway(table, model.SchemaBasic, time.UTC)

	events, err := g.LoadAll(ctx)
	if err != nil || len(events) != 0 {
		t.Fatalf("LoadAll on empty sheet = %v, %v", events, err)
	}

	e := model.SaleEvent{Timestamp: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), Outcome: model.OutcomeNoBuy, Reason: "Price"}
	if err := g.Append(ctx, e); err != nil {
		t.Fatalf("Append: %v", err)
	}

	undo, err := g.UndoLast(ctx)
	if err != nil || !undo.Done || undo.Event.Reason != "Price" {
		t.Fatalf("UndoLast = %+v, %v", undo, err)
	}

	undo, err = g.UndoLast(ctx)
	if err != nil || undo.Done {
		t.Fatalf("second UndoLast = %+v, %v; want not done", undo, err)
	}
}
