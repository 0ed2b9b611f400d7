// Command migrate applies or rolls back the embedded goose migrations.
//
// Usage:
//
//	migrate [up|down|status]
//
// The database DSN comes from the regular configuration (DATABASE_DSN).
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/heartmarshall/studyplanner-backend/internal/app"
	"github.com/heartmarshall/studyplanner-backend/internal/config"
	"github.com/heartmarshall/studyplanner-backend/internal/migrations"
)

func main() {
	timeoutFlag := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(ctx, logger, db, command); err != nil {
		logger.Error("migrate failed", slog.String("command", command), slog.String("error", err.Error()))
		db.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, db *sql.DB, command string) error {
	switch command {
	case "up":
		n, err := migrations.Up(ctx, db)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", slog.Int("count", n))
	case "down":
		if err := migrations.Down(ctx, db); err != nil {
			return err
		}
		logger.Info("rolled back one migration")
	case "status":
		statuses, err := migrations.Status(ctx, db)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			applied := "pending"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%-40s %s\n", s.Source.Path, applied)
		}
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
	return nil
}
