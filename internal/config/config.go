// Package config содержит логику чтения конфигурации журнала продаж.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mmeshcher/counter-ledger/internal/model"
)

// Драйверы хранилища.
const (
	DriverMemory   = "memory"
	DriverXLSX     = "xlsx"
	DriverPostgres = "postgres"
	DriverSheets   = "sheets"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress        string  `env:"RUN_ADDRESS"`
	StoreDriver       string  `env:"STORE_DRIVER"`
	DatabaseURI       string  `env:"DATABASE_URI"`
	SpreadsheetID     string  `env:"SPREADSHEET_ID"`
	SheetName         string  `env:"SHEET_NAME"`
	GoogleCredentials string  `env:"GOOGLE_CREDENTIALS"`
	WorkbookPath      string  `env:"WORKBOOK_PATH"`
	BusinessTimezone  string  `env:"BUSINESS_TIMEZONE"`
	DailyGoal         float64 `env:"DAILY_GOAL"`
	Schema            string  `env:"SCHEMA"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.StoreDriver, "s", DriverXLSX, "store driver: memory, xlsx, postgres or sheets")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.SpreadsheetID, "k", "", "Google spreadsheet ID")
	flag.StringVar(&cfg.SheetName, "n", "Sheet1", "sheet (table) name")
	flag.StringVar(&cfg.GoogleCredentials, "c", "secrets.json", "service account credentials file")
	flag.StringVar(&cfg.WorkbookPath, "w", "counter_sales.xlsx", "local workbook path")
	flag.StringVar(&cfg.BusinessTimezone, "z", "America/Los_Angeles", "business timezone")
	flag.Float64Var(&cfg.DailyGoal, "g", 0, "daily sales goal")
	flag.StringVar(&cfg.Schema, "schema", model.SchemaExtended.Name, "table schema revision: basic or extended")

	flag.Parse()

	overrides := []struct {
		env string
		dst *string
	}{
		{fromEnv.RunAddress, &cfg.RunAddress},
		{fromEnv.StoreDriver, &cfg.StoreDriver},
		{fromEnv.DatabaseURI, &cfg.DatabaseURI},
		{fromEnv.SpreadsheetID, &cfg.SpreadsheetID},
		{fromEnv.SheetName, &cfg.SheetName},
		{fromEnv.GoogleCredentials, &cfg.GoogleCredentials},
		{fromEnv.WorkbookPath, &cfg.WorkbookPath},
		{fromEnv.BusinessTimezone, &cfg.BusinessTimezone},
		{fromEnv.Schema, &cfg.Schema},
	}
	for _, o := range overrides {
		if o.env != "" {
			*o.dst = o.env
		}
	}
	if fromEnv.DailyGoal != 0 {
		cfg.DailyGoal = fromEnv.DailyGoal
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}

// Validate проверяет согласованность параметров выбранного драйвера.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMemory:
	case DriverXLSX:
		if c.WorkbookPath == "" {
			errs = append(errs, errors.New("xlsx driver requires a workbook path"))
		}
	case DriverPostgres:
		if c.DatabaseURI == "" {
			errs = append(errs, errors.New("postgres driver requires a database URI"))
		}
	case DriverSheets:
		if c.SpreadsheetID == "" {
			errs = append(errs, errors.New("sheets driver requires a spreadsheet ID"))
		}
		if c.GoogleCredentials == "" {
			errs = append(errs, errors.New("sheets driver requires a credentials file"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}

	if c.SheetName == "" {
		errs = append(errs, errors.New("sheet name must not be empty"))
	}
	if _, err := time.LoadLocation(c.BusinessTimezone); err != nil {
		errs = append(errs, fmt.Errorf("business timezone: %w", err))
	}
	if _, ok := model.SchemaByName(c.Schema); !ok {
		errs = append(errs, fmt.Errorf("unknown schema %q", c.Schema))
	}
	if c.DailyGoal < 0 {
		errs = append(errs, errors.New("daily goal must not be negative"))
	}

	return errors.Join(errs...)
}

// Location возвращает часовой пояс бизнеса. Вызывать после Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TableSchema возвращает ревизию схемы. Вызывать после Validate.
func (c *Config) TableSchema() model.Schema {
	s, ok := model.SchemaByName(c.Schema)
	if !ok {
		return model.SchemaExtended
	}
	return s
}
