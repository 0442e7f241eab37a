// Package service связывает сборку записей, шлюз к таблице и расчёт показателей.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/counter-ledger/internal/metrics"
	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/record"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
)

// ErrUndoNotToday возвращается при попытке отменить запись прошлого дня: история только для чтения.
var ErrUndoNotToday = errors.New("last record is not from today")

// Gateway описывает контракт хранилища, используемый сервисом.
type Gateway interface {
	Schema() model.Schema
	Append(ctx context.Context, e model.SaleEvent) error
	LoadAll(ctx context.Context) ([]model.SaleEvent, error)
	UndoLastIf(ctx context.Context, guard func(model.SaleEvent) error) (sheet.Undo, error)
}

// Settings — явное состояние, которое раньше было бы глобальным.
type Settings struct {
	// Location — часовой пояс бизнеса.
	Location *time.Location
	// DailyGoal — дневная цель по продажам; ноль отключает расчёт прогресса.
	DailyGoal decimal.Decimal
	// Now — источник времени; по умолчанию time.Now.
	Now func() time.Time
}

// Service содержит бизнес-логику журнала продаж.
type Service struct {
	gateway  Gateway
	catalog  *model.Catalog
	builder  *record.Builder
	settings Settings
	logger   *zap.Logger
}

// NewService создаёт сервис.
func NewService(gateway Gateway, catalog *model.Catalog, settings Settings, logger *zap.Logger) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		gateway:  gateway,
		catalog:  catalog,
		builder:  record.NewBuilder(catalog, gateway.Schema()),
		settings: settings,
		logger:   logger,
	}
}

// Report — записи и показатели за дату (или за всё время, если Date пуст).
type Report struct {
	Date      string                     `json:"date,omitempty"`
	Today     bool                       `json:"today"`
	Events    []model.SaleEvent          `json:"events"`
	Summary   metrics.Summary            `json:"summary"`
	By        model.Field                `json:"by,omitempty"`
	Breakdown map[string]decimal.Decimal `json:"breakdown,omitempty"`
}

// Options возвращает закрытые наборы значений формы.
func (s *Service) Options() map[model.Field][]string {
	return s.catalog.All()
}

// Schema возвращает ревизию схемы хранилища.
func (s *Service) Schema() model.Schema {
	return s.gateway.Schema()
}

// Today возвращает текущую бизнес-дату (полночь в часовом поясе бизнеса).
func (s *Service) Today() time.Time {
	y, m, d := s.settings.Now().In(s.settings.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.settings.Location)
}

// ParseDate разбирает дату вида 2006-01-02; пустая строка означает сегодня.
func (s *Service) ParseDate(v string) (time.Time, error) {
	if v == "" {
		return s.Today(), nil
	}
	day, err := time.ParseInLocation(metrics.DateLayout, v, s.settings.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", v, err)
	}
	return day, nil
}

func (s *Service) isToday(t time.Time) bool {
	return t.In(s.settings.Location).Format(metrics.DateLayout) == s.Today().Format(metrics.DateLayout)
}

// Submit проверяет черновик, ставит метку времени бизнеса и дописывает запись.
// Ошибки проверки до хранилища не доходят.
func (s *Service) Submit(ctx context.Context, d record.Draft) (model.SaleEvent, error) {
	ts := s.settings.Now().In(s.settings.Location)

	e, err := s.builder.Build(d, ts)
	if err != nil {
		return model.SaleEvent{}, err
	}

	if err := s.gateway.Append(ctx, e); err != nil {
		s.logger.Error("append sale event", zap.Error(err))
		return model.SaleEvent{}, err
	}

	s.logger.Info("sale event recorded",
		zap.String("outcome", string(e.Outcome)),
		zap.String("amount", e.Amount.String()),
		zap.Time("timestamp", e.Timestamp),
	)

	return e, nil
}

// Day возвращает записи и показатели за бизнес-дату. Если by не пуст, добавляется разбивка продаж по полю.
func (s *Service) Day(ctx context.Context, day time.Time, by model.Field) (*Report, error) {
	events, err := s.gateway.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	events = metrics.FilterByDate(events, day, s.settings.Location)
	r := s.report(events, by)
	r.Date = day.Format(metrics.DateLayout)
	r.Today = r.Date == s.Today().Format(metrics.DateLayout)

	return r, nil
}

// All возвращает все записи и показатели за всё время.
func (s *Service) All(ctx context.Context, by model.Field) (*Report, error) {
	events, err := s.gateway.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.report(events, by), nil
}

func (s *Service) report(events []model.SaleEvent, by model.Field) *Report {
	r := &Report{
		Events:  events,
		Summary: metrics.Summarize(events, s.settings.DailyGoal),
	}
	if by != "" {
		r.By = by
		r.Breakdown = metrics.ByCategory(events, by)
	}
	return r
}

// Dates возвращает даты, за которые есть записи, начиная с последней.
func (s *Service) Dates(ctx context.Context) ([]string, error) {
	events, err := s.gateway.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return metrics.Dates(events, s.settings.Location), nil
}

// UndoLast удаляет последнюю запись, если она сделана сегодня.
// Undo.Done == false без ошибки означает, что отменять нечего.
func (s *Service) UndoLast(ctx context.Context) (sheet.Undo, error) {
	undo, err := s.gateway.UndoLastIf(ctx, func(e model.SaleEvent) error {
		if !s.isToday(e.Timestamp) {
			return fmt.Errorf("%w: %s", ErrUndoNotToday, e.Timestamp.Format(model.TimeLayout))
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUndoNotToday) {
			s.logger.Error("undo last sale event", zap.Error(err))
		}
		return sheet.Undo{}, err
	}

	if undo.Done {
		s.logger.Info("sale event undone", zap.Strings("row", undo.Row))
	}

	return undo, nil
}
