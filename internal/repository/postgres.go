// Package repository содержит реализацию построчной таблицы в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/counter-ledger/internal/sheet"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRowNotFound возвращается при удалении строки за пределами таблицы.
var ErrRowNotFound = errors.New("row not found")

// PostgresTable хранит одну логическую таблицу (лист) в общей таблице sheet_rows.
type PostgresTable struct {
	pool  *pgxpool.Pool
	sheet string
}

// NewPostgresTable подключается к БД, применяет миграции и возвращает таблицу для листа sheetName.
func NewPostgresTable(dsn, sheetName string) (*PostgresTable, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	t := &PostgresTable{pool: pool, sheet: sheetName}

	if err := t.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return t, nil
}

func (t *PostgresTable) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(t.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (t *PostgresTable) Close() error {
	t.pool.Close()
	return nil
}

// mapError переводит отсутствие таблицы в sheet.ErrTableNotFound.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%w: %s", sheet.ErrTableNotFound, pgErr.Message)
	}
	return err
}

// Rows возвращает строки листа в порядке записи.
func (t *PostgresTable) Rows(ctx context.Context) ([][]string, error) {
	rows, err := t.pool.Query(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet = $1 ORDER BY id`,
		t.sheet,
	)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", mapError(err))
	}
	defer rows.Close()

	var res [][]string
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		res = append(res, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", mapError(err))
	}

	if len(res) == 0 {
		return nil, sheet.ErrTableNotFound
	}

	return res, nil
}

// AppendRow дописывает строку одним INSERT.
func (t *PostgresTable) AppendRow(ctx context.Context, row []string) error {
	_, err := t.pool.Exec(ctx,
		`INSERT INTO sheet_rows (sheet, cells) VALUES ($1, $2)`,
		t.sheet, row,
	)
	if err != nil {
		return fmt.Errorf("insert row: %w", mapError(err))
	}
	return nil
}

// DeleteRow удаляет строку по её порядковому номеру в листе.
func (t *PostgresTable) DeleteRow(ctx context.Context, index int) error {
	cmdTag, err := t.pool.Exec(ctx,
		`DELETE FROM sheet_rows
		 WHERE id = (
			SELECT id FROM sheet_rows
			WHERE sheet = $1
			ORDER BY id
			OFFSET $2
			LIMIT 1
		 )`,
		t.sheet, index,
	)
	if err != nil {
		return fmt.Errorf("delete row: %w", mapError(err))
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: index %d", ErrRowNotFound, index)
	}

	return nil
}
