package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
	"github.com/heartmarshall/studyplanner-backend/pkg/ctxutil"
)

// Run processes every active learner for date. Learners run in parallel up
// to the configured limit; steps within a learner run in order. A failing
// step is recorded and the remaining steps still run. The returned error is
// non-nil only when the learner list cannot be read.
func (r *Runner) Run(ctx context.Context, date time.Time) (*JobResult, error) {
	ids, err := r.learners.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active learners: %w", err)
	}

	day := domain.Day(date)
	started := time.Now()
	res := &JobResult{Status: JobStatusCompleted, Date: day}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Parallelism)

	for _, id := range ids {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctxutil.WithLearnerID(ctx, id), r.cfg.PerLearnerTimeout)
			defer cancel()

			errs := r.processLearner(lctx, id, day)

			mu.Lock()
			res.LearnersProcessed++
			res.Errors = append(res.Errors, errs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	r.log.InfoContext(ctx, "daily maintenance finished",
		slog.String("date", day.Format(time.DateOnly)),
		slog.Int("learners", res.LearnersProcessed),
		slog.Int("errors", len(res.Errors)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (r *Runner) processLearner(ctx context.Context, id uuid.UUID, day time.Time) []StepError {
	var errs []StepError
	step := func(name string, fn func() error) {
		if err := runStep(fn); err != nil {
			r.log.WarnContext(ctx, "maintenance step failed",
				slog.String("learner_id", id.String()),
				slog.String("step", name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, StepError{LearnerID: id, Step: name, Err: err})
		}
	}

	step(StepConfidenceDecay, func() error {
		out, err := r.conf.RecalculateAll(ctx, id)
		if err != nil {
			return err
		}
		r.dispatch(ctx, out.Intents)
		return nil
	})

	step(StepHealth, func() error {
		out, err := r.health.ExpireRecovery(ctx, id, day)
		if err != nil {
			return err
		}
		if out != nil {
			r.dispatch(ctx, out.Intents)
		}
		_, err = r.health.CalculateFatigueScore(ctx, id, day)
		return err
	})

	// Recovery state is read after the health step so an episode that
	// expired today lets velocity and buffer run again.
	recovering, err := r.inRecovery(ctx, id)
	if err != nil {
		errs = append(errs, StepError{LearnerID: id, Step: StepLoadLearner, Err: err})
		return errs
	}

	if !recovering {
		step(StepVelocitySnapshot, func() error {
			_, err := r.ledger.CalculateVelocity(ctx, id, day)
			return err
		})
		step(StepBufferUpdate, func() error {
			out, err := r.ledger.UpdateBuffer(ctx, id, day)
			if err != nil {
				return err
			}
			r.dispatch(ctx, out.Intents)
			return nil
		})
	}

	step(StepBurnoutSnapshot, func() error {
		return r.burnout(ctx, id, day)
	})

	if r.bench != nil {
		step(StepBenchmark, func() error {
			return r.bench.Benchmark(ctx, id, day)
		})
	}

	step(StepRecalibration, func() error {
		out, err := r.recal.Run(ctx, id, domain.TriggerAutomatic)
		if err != nil {
			return err
		}
		r.dispatch(ctx, out.Intents)
		return nil
	})

	return errs
}

// runStep calls fn and turns a panic into an error so one learner cannot
// take down the batch.
func runStep(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

// burnout stores the day's BRI and enters recovery when the trigger fires.
func (r *Runner) burnout(ctx context.Context, id uuid.UUID, day time.Time) error {
	if _, err := r.health.SnapshotBurnout(ctx, id, day); err != nil {
		return err
	}
	trigger, bri, err := r.health.CheckRecoveryTrigger(ctx, id, day)
	if err != nil {
		return fmt.Errorf("check recovery trigger: %w", err)
	}
	if !trigger {
		return nil
	}
	out, err := r.health.ActivateRecovery(ctx, fatigue.ActivateRecoveryInput{
		LearnerID:  id,
		Date:       day,
		TriggerBRI: bri,
	})
	if err != nil {
		return fmt.Errorf("activate recovery: %w", err)
	}
	r.dispatch(ctx, out.Intents)
	return nil
}

func (r *Runner) inRecovery(ctx context.Context, id uuid.UUID) (bool, error) {
	profile, err := r.learners.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get learner: %w", err)
	}
	return profile.InRecovery, nil
}

func (r *Runner) dispatch(ctx context.Context, intents []domain.Intent) {
	if r.outbox == nil || len(intents) == 0 {
		return
	}
	r.outbox.Dispatch(ctx, intents...)
}
