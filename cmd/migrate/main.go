// Command migrate applies the database schema migrations and exits.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"

	"authsvc/config"
	"authsvc/internal/domain/lifecycle"
	"authsvc/internal/infra/persistence/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migrations applied")
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}

func buildDSN(cfg *config.Config) string {
	master := cfg.Postgres.Master

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(master.UserName),
		url.QueryEscape(master.Password),
		net.JoinHostPort(master.Host, master.Port),
		cfg.Postgres.Database,
		cfg.Postgres.SSLMode,
	)
}
