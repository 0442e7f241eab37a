// Package handler содержит HTTP-обработчики API журнала продаж.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/counter-ledger/internal/middleware"
	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/record"
	"github.com/mmeshcher/counter-ledger/internal/service"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
	"github.com/mmeshcher/counter-ledger/internal/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Options() map[model.Field][]string
	Schema() model.Schema
	ParseDate(v string) (time.Time, error)
	Submit(ctx context.Context, d record.Draft) (model.SaleEvent, error)
	Day(ctx context.Context, day time.Time, by model.Field) (*service.Report, error)
	All(ctx context.Context, by model.Field) (*service.Report, error)
	Dates(ctx context.Context) ([]string, error)
	UndoLast(ctx context.Context) (sheet.Undo, error)
	Export(ctx context.Context, day time.Time) ([]byte, error)
}

// Handler реализует HTTP-обработчики API журнала продаж.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// writeError переводит ошибку сервиса в HTTP-статус.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	fields := []zap.Field{zap.Error(err)}
	if id, ok := middleware.GetRequestIDFromContext(r.Context()); ok {
		fields = append(fields, zap.String("request_id", id))
	}

	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, sheet.ErrStoreUnavailable):
		h.logger.Error(op, fields...)
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUndoNotToday), errors.Is(err, sheet.ErrSchemaMismatch):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.Error(op, fields...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type optionsResponse struct {
	Schema  string                   `json:"schema"`
	Columns []string                 `json:"columns"`
	Options map[model.Field][]string `json:"options"`
}

// GetOptions возвращает закрытые наборы значений формы и ревизию схемы.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	schema := h.service.Schema()
	h.writeJSON(w, http.StatusOK, optionsResponse{
		Schema:  schema.Name,
		Columns: schema.Header(),
		Options: h.service.Options(),
	})
}

// CreateSale проверяет черновик формы и дописывает запись.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var d record.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	e, err := h.service.Submit(r.Context(), d)
	if err != nil {
		h.writeError(w, r, "submit sale error", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, e)
}

// GetSales возвращает записи и показатели за дату из параметра date.
// date=all отдаёт всё время; by добавляет разбивку продаж по полю.
func (h *Handler) GetSales(w http.ResponseWriter, r *http.Request) {
	var by model.Field
	if v := r.URL.Query().Get("by"); v != "" {
		f, ok := model.ParseField(v)
		if !ok {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown field " + strconv.Quote(v), Field: "by"})
			return
		}
		by = f
	}

	var (
		report *service.Report
		err    error
	)

	date := r.URL.Query().Get("date")
	if date == "all" {
		report, err = h.service.All(r.Context(), by)
	} else {
		day, perr := h.service.ParseDate(date)
		if perr != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: perr.Error(), Field: "date"})
			return
		}
		report, err = h.service.Day(r.Context(), day, by)
	}
	if err != nil {
		h.writeError(w, r, "get sales error", err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// GetDates возвращает даты, за которые есть записи.
func (h *Handler) GetDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.Dates(r.Context())
	if err != nil {
		h.writeError(w, r, "get dates error", err)
		return
	}
	if dates == nil {
		dates = []string{}
	}

	h.writeJSON(w, http.StatusOK, dates)
}

// UndoLast удаляет последнюю запись сегодняшнего дня.
func (h *Handler) UndoLast(w http.ResponseWriter, r *http.Request) {
	undo, err := h.service.UndoLast(r.Context())
	if err != nil {
		h.writeError(w, r, "undo last error", err)
		return
	}

	if !undo.Done {
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: "nothing to undo"})
		return
	}

	h.writeJSON(w, http.StatusOK, undo)
}

// ExportSales отдаёт отчёт .xlsx за дату.
func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "date"})
		return
	}

	data, err := h.service.Export(r.Context(), day)
	if err != nil {
		h.writeError(w, r, "export sales error", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportName(day)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("write export", zap.Error(err))
	}
}

// Ping сообщает, что сервис жив.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
