package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/ignatzorin/eventmarket-backend/internal/logger"
)

// NewPostgres создаёт подключение к PostgreSQL с заданным DSN.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}

// RunMigrations применяет goose-миграции из каталога migrationsDir.
// Версии хранятся в таблице goose_db_version, повторный запуск ничего не меняет.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres: не удалось выбрать диалект миграций: %w", err)
	}
	if logger.Log != nil {
		goose.SetLogger(logger.Log)
	}

	if err := goose.UpContext(ctx, conn.DB, migrationsDir); err != nil {
		return fmt.Errorf("postgres: не удалось применить миграции из %s: %w", migrationsDir, err)
	}

	version, err := goose.GetDBVersionContext(ctx, conn.DB)
	if err != nil {
		return fmt.Errorf("postgres: не удалось получить версию схемы: %w", err)
	}
	logger.WithFields(map[string]interface{}{"version": version}).Info("postgres: схема актуальна")

	return nil
}
