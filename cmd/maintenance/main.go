// Command maintenance runs the daily per-learner pipeline: confidence decay,
// health, velocity, buffer, burnout and recalibration. It is intended to be
// invoked once a day by an external scheduler, after the configured
// timezone's midnight.
//
// Flags:
//
//	--config   config file (default: $CONFIG_PATH or ./config.yaml)
//	--date     day to process, YYYY-MM-DD (default: today in MAINTENANCE_TIMEZONE)
//	--timeout  overall run timeout (default: 1h)
//
// Exit codes: 0 = every learner processed cleanly, 1 = fatal error,
// 2 = finished with step errors.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/app"
	"github.com/heartmarshall/studyplanner-backend/internal/config"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/pkg/ctxutil"
)

func main() {
	configFlag := flag.String("config", "", "config file (default: $CONFIG_PATH or ./config.yaml)")
	dateFlag := flag.String("date", "", "day to process, YYYY-MM-DD (default: today)")
	timeoutFlag := flag.Duration("timeout", time.Hour, "overall run timeout")
	flag.Parse()

	cfg, err := config.LoadFrom(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	day, err := runDate(*dateFlag, time.Now(), cfg.Maintenance.Timezone)
	if err != nil {
		logger.Error("parse date", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()
	ctx = ctxutil.WithRunID(ctx, uuid.NewString())

	c, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "build container", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer c.Close()

	res, err := c.Maintenance.Run(ctx, day)
	if err != nil {
		logger.ErrorContext(ctx, "maintenance failed", slog.String("error", err.Error()))
		c.Close()
		os.Exit(1)
	}

	for _, se := range res.Errors {
		logger.WarnContext(ctx, "learner step error",
			slog.String("learner_id", se.LearnerID.String()),
			slog.String("step", se.Step),
			slog.String("error", se.Err.Error()),
		)
	}

	logger.InfoContext(ctx, "maintenance completed",
		slog.String("status", res.Status),
		slog.String("date", res.Date.Format(time.DateOnly)),
		slog.Int("learners", res.LearnersProcessed),
		slog.Int("errors", len(res.Errors)),
	)

	if len(res.Errors) > 0 {
		c.Close()
		os.Exit(2)
	}
}

// runDate parses raw or, when empty, returns today's calendar day in tz.
func runDate(raw string, now time.Time, tz string) (time.Time, error) {
	if raw == "" {
		return domain.LocalDay(now, domain.ParseTimezone(tz)), nil
	}
	return time.Parse(time.DateOnly, raw)
}
