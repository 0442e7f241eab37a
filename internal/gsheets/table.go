// Package gsheets реализует построчную таблицу поверх листа Google Sheets.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mmeshcher/counter-ledger/internal/sheet"
)

// Table — лист spreadsheetID/sheetName.
type Table struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// New создаёт клиент Google Sheets. Без явных опций используется файл сервисного аккаунта credentialsFile.
func New(ctx context.Context, spreadsheetID, sheetName, credentialsFile string, opts ...option.ClientOption) (*Table, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Table{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func (t *Table) sheetRange() string {
	return "'" + strings.ReplaceAll(t.sheetName, "'", "''") + "'"
}

// mapError переводит ответ "нет такого листа/таблицы" в sheet.ErrTableNotFound.
func mapError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Code == http.StatusNotFound ||
		(apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")) {
		return fmt.Errorf("%w: %s", sheet.ErrTableNotFound, apiErr.Message)
	}
	return err
}

// Rows читает все значения листа.
func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	resp, err := t.svc.Spreadsheets.Values.Get(t.spreadsheetID, t.sheetRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", mapError(err))
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		cells := make([]string, len(r))
		for j, v := range r {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}

	return rows, nil
}

// AppendRow дописывает строку вызовом values.append; значения пишутся как есть.
func (t *Table) AppendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, c := range row {
		values[i] = c
	}

	_, err := t.svc.Spreadsheets.Values.Append(t.spreadsheetID, t.sheetRange(), &sheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append values: %w", mapError(err))
	}

	return nil
}

// DeleteRow удаляет строку листа через batchUpdate DeleteDimension.
func (t *Table) DeleteRow(ctx context.Context, index int) error {
	sheetID, err := t.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(index),
					EndIndex:        int64(index + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}

	if _, err := t.svc.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", index, mapError(err))
	}

	return nil
}

func (t *Table) sheetID(ctx context.Context) (int64, error) {
	ss, err := t.svc.Spreadsheets.Get(t.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", mapError(err))
	}

	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == t.sheetName {
			return s.Properties.SheetId, nil
		}
	}

	return 0, fmt.Errorf("%w: sheet %q", sheet.ErrTableNotFound, t.sheetName)
}
