package database

import (
	"context"
	"database/sql"
	"fmt"

	"seniorsync/internal/config"

	_ "github.com/lib/pq"
)

// NewPostgresDB 创建PostgreSQL数据库连接
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// schema health_reports：每个用户每天一条
const schema = `
CREATE TABLE IF NOT EXISTS health_reports (
	report_id         UUID PRIMARY KEY,
	user_id           VARCHAR(128) NOT NULL,
	report_date       DATE NOT NULL,
	sleep_hours       INTEGER NOT NULL DEFAULT 0,
	mood_rating       INTEGER NOT NULL DEFAULT 0,
	pain              VARCHAR(3) NOT NULL DEFAULT 'No',
	pain_severity     INTEGER NOT NULL DEFAULT 0,
	medications_taken VARCHAR(3) NOT NULL DEFAULT 'No',
	meals             VARCHAR(3) NOT NULL DEFAULT 'Yes',
	health_concerns   VARCHAR(3) NOT NULL DEFAULT 'No',
	summary           TEXT NOT NULL DEFAULT '',
	concerns          JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, report_date)
);
CREATE INDEX IF NOT EXISTS idx_health_reports_date ON health_reports (report_date);
`

// EnsureSchema 创建报表所需的表（幂等）
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
