// Package main запускает HTTP-сервер журнала продаж.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/counter-ledger/internal/config"
	"github.com/mmeshcher/counter-ledger/internal/gsheets"
	"github.com/mmeshcher/counter-ledger/internal/handler"
	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/repository"
	"github.com/mmeshcher/counter-ledger/internal/service"
	"github.com/mmeshcher/counter-ledger/internal/sheet"
	"github.com/mmeshcher/counter-ledger/internal/workbook"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		sugar.Warnw(".env not loaded", "error", err.Error())
	}

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, closeTable, err := openTable(ctx, cfg)
	if err != nil {
		sugar.Fatalw("store initialization error", "driver", cfg.StoreDriver, "error", err.Error())
	}
	defer closeTable()

	catalog, err := model.DefaultCatalog()
	if err != nil {
		sugar.Fatalw("catalog error", "error", err.Error())
	}

	gateway := sheet.NewGateway(table, cfg.TableSchema(), cfg.Location())
	svc := service.NewService(gateway, catalog, service.Settings{
		Location:  cfg.Location(),
		DailyGoal: decimal.NewFromFloat(cfg.DailyGoal),
	}, logger)

	h := handler.NewHandler(svc, logger)
	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting counter ledger",
			"addr", cfg.RunAddress,
			"driver", cfg.StoreDriver,
			"schema", cfg.TableSchema().Name,
			"timezone", cfg.BusinessTimezone,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Остановка по сигналу или по ошибке сервера
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// openTable создаёт хранилище выбранного драйвера и функцию его закрытия.
func openTable(ctx context.Context, cfg *config.Config) (sheet.Table, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return sheet.NewMemoryTable(), noop, nil
	case config.DriverXLSX:
		return workbook.New(cfg.WorkbookPath, cfg.SheetName), noop, nil
	case config.DriverPostgres:
		t, err := repository.NewPostgresTable(cfg.DatabaseURI, cfg.SheetName)
		if err != nil {
			return nil, noop, err
		}
		return t, func() { _ = t.Close() }, nil
	case config.DriverSheets:
		t, err := gsheets.New(ctx, cfg.SpreadsheetID, cfg.SheetName, cfg.GoogleCredentials)
		if err != nil {
			return nil, noop, err
		}
		return t, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
