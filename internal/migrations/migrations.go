// Package migrations holds the Postgres schema as goose migrations embedded
// in the binary.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

var gooseUpContext = goose.UpContext

type slogLogger struct{}

func (slogLogger) Printf(format string, v ...any) {
	slog.Info("migration", "detail", fmt.Sprintf(format, v...))
}

func (slogLogger) Fatalf(format string, v ...any) {
	slog.Error("migration failed", "detail", fmt.Sprintf(format, v...))
}

// Up applies every pending migration to the database at dsn.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrations: open: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(files)
	goose.SetLogger(slogLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}

	return nil
}
