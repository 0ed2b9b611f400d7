// Command seeder loads a YAML topic catalog (subjects, chapters, topics)
// into the database. Re-running it with the same file is safe: entities are
// matched by name and updated in place.
//
// Flags:
//
//	--catalog        path to the catalog YAML file (overrides seeder config)
//	--subject        comma-separated subject names to load (default: all)
//	--dry-run        validate the catalog without writing to DB
//	--seeder-config  path to seeder YAML config file
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/catalog"
	"github.com/heartmarshall/studyplanner-backend/internal/app"
	"github.com/heartmarshall/studyplanner-backend/internal/app/seeder"
	"github.com/heartmarshall/studyplanner-backend/internal/config"
)

// Compile-time interface assertion.
var _ seeder.CatalogWriter = (*catalog.Repo)(nil)

func main() {
	catalogFlag := flag.String("catalog", "", "path to the catalog YAML file")
	subjectFlag := flag.String("subject", "", "comma-separated subjects to load (default: all)")
	dryRunFlag := flag.Bool("dry-run", false, "validate the catalog without writing to DB")
	seederConfigFlag := flag.String("seeder-config", "", "path to seeder YAML config file")
	flag.Parse()

	// Load app config (for DB connection).
	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)

	seederCfg, err := seeder.LoadConfig(*seederConfigFlag)
	if err != nil {
		logger.Error("load seeder config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if *dryRunFlag {
		seederCfg.DryRun = true
	}
	if *catalogFlag != "" {
		seederCfg.CatalogPath = *catalogFlag
	}
	if seederCfg.CatalogPath == "" {
		logger.Error("catalog path not configured")
		os.Exit(1)
	}

	var subjects []string
	if *subjectFlag != "" {
		subjects = strings.Split(*subjectFlag, ",")
		for i := range subjects {
			subjects[i] = strings.TrimSpace(subjects[i])
		}
	}

	cf, err := seeder.ReadCatalogFile(seederCfg.CatalogPath)
	if err != nil {
		logger.Error("read catalog", slog.String("path", seederCfg.CatalogPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("catalog parsed",
		slog.Int("subjects", len(cf.Subjects)),
		slog.Int("topics", cf.TopicCount()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, appCfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	pipeline := seeder.NewPipeline(logger, catalog.New(pool), postgres.NewTxManager(pool), *seederCfg)
	if err := pipeline.Run(ctx, cf, subjects); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}

	if pipeline.HasErrors() {
		logger.Warn("pipeline completed with errors")
		pool.Close()
		os.Exit(1)
	}

	logger.Info("pipeline completed successfully")
}
