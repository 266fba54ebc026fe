package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS render_records (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL DEFAULT '',
	template_id TEXT NOT NULL,
	design_hash TEXT NOT NULL,
	cached BOOLEAN NOT NULL DEFAULT FALSE,
	render_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_render_records_template ON render_records (template_id);
CREATE INDEX IF NOT EXISTS idx_render_records_created ON render_records (created_at DESC);`

// Open connects to PostgreSQL using DATABASE_URL, or the individual
// DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME/DB_SSLMODE variables, and
// ensures the render-history schema exists. Returns (nil, nil) when no
// database is configured at all; history is optional.
func Open(ctx context.Context) (*sql.DB, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := os.Getenv("DB_HOST")
		user := os.Getenv("DB_USER")
		dbname := os.Getenv("DB_NAME")
		if host == "" || user == "" || dbname == "" {
			return nil, nil
		}

		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, os.Getenv("DB_PASSWORD"), dbname, sslmode)
	}

	conn, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure render-history schema: %w", err)
	}
	return conn, nil
}
