package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/app"
	"github.com/heartmarshall/studyplanner-backend/internal/config"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/pkg/ctxutil"
)

// skipContainer marks commands that run without a database.
const skipContainer = "skip-container"

// env carries state shared by subcommands of one invocation.
type env struct {
	cfg *config.Config
	c   *app.Container

	configPath string
	learner    string
	date       string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Adaptive study planning engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsContainer(cmd) {
				return nil
			}
			return e.open(cmd.Context())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if e.c != nil {
				e.c.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "config file (default: $CONFIG_PATH or ./config.yaml)")
	pf.StringVar(&e.learner, "learner", "", "learner ID")
	pf.StringVar(&e.date, "date", "", "day to act on, YYYY-MM-DD (default: today in the configured timezone)")
	pf.DurationVar(&e.timeout, "timeout", 2*time.Minute, "overall command timeout")

	root.AddCommand(
		newPlanCmd(e),
		newItemCmd(e),
		newReviewCmd(e),
		newConfidenceCmd(e),
		newVelocityCmd(e),
		newBufferCmd(e),
		newCascadeCmd(e),
		newFatigueCmd(e),
		newRecoveryCmd(e),
		newRecalibrateCmd(e),
		newPersonaCmd(e),
		newInsightCmd(e),
		newVersionCmd(),
	)
	return root
}

func needsContainer(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipContainer] == "true" {
			return false
		}
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}

func (e *env) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadFrom(e.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := app.NewLogger(cfg.Log)

	c, err := app.NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	e.cfg, e.c = cfg, c
	return nil
}

// ctx returns a context bounded by --timeout and tagged with a fresh run
// ID and the learner.
func (e *env) ctx(cmd *cobra.Command, learnerID uuid.UUID) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctxutil.WithRunID(parent, uuid.NewString()), e.timeout)
	if learnerID != uuid.Nil {
		ctx = ctxutil.WithLearnerID(ctx, learnerID)
	}
	return ctx, cancel
}

func (e *env) learnerID() (uuid.UUID, error) {
	return parseID("learner", e.learner)
}

// day resolves --date, falling back to today in the configured timezone.
func (e *env) day(now time.Time) (time.Time, error) {
	tz := "UTC"
	if e.cfg != nil {
		tz = e.cfg.Maintenance.Timezone
	}
	return resolveDay(e.date, now, domain.ParseTimezone(tz))
}

func (e *env) dispatch(ctx context.Context, intents []domain.Intent) {
	if len(intents) > 0 {
		e.c.Outbox.Dispatch(ctx, intents...)
	}
}
