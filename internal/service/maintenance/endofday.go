package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// EndOfDay refreshes the day's velocity and burnout snapshots after study
// activity and checks the cascade trigger. A fired cascade also runs the
// controller with the cascade trigger. The buffer is left to the daily run
// so a date is posted once with the full day's hours. Velocity and cascade
// are skipped while the learner is recovering.
func (r *Runner) EndOfDay(ctx context.Context, learnerID uuid.UUID, date time.Time) error {
	recovering, err := r.inRecovery(ctx, learnerID)
	if err != nil {
		return err
	}
	day := domain.Day(date)

	var errs []error
	if !recovering {
		if _, err := r.ledger.CalculateVelocity(ctx, learnerID, day); err != nil {
			errs = append(errs, StepError{LearnerID: learnerID, Step: StepVelocitySnapshot, Err: err})
		}
	}
	if _, err := r.health.SnapshotBurnout(ctx, learnerID, day); err != nil {
		errs = append(errs, StepError{LearnerID: learnerID, Step: StepBurnoutSnapshot, Err: err})
	}
	if !recovering {
		res, err := r.ledger.CheckCascade(ctx, learnerID, day)
		switch {
		case err != nil:
			errs = append(errs, StepError{LearnerID: learnerID, Step: StepCascade, Err: err})
		case res.Triggered:
			r.log.InfoContext(ctx, "cascade triggered",
				slog.String("learner_id", learnerID.String()),
				slog.String("reason", res.Reason),
				slog.Float64("backlog", res.Backlog),
			)
			r.dispatch(ctx, res.Intents)
			r.cascadeRecalibration(ctx, learnerID)
		}
	}
	return errors.Join(errs...)
}

// cascadeRecalibration is best effort; a failure is logged and does not
// fail the end-of-day refresh.
func (r *Runner) cascadeRecalibration(ctx context.Context, learnerID uuid.UUID) {
	out, err := r.recal.Run(ctx, learnerID, domain.TriggerCascade)
	if err != nil {
		r.log.WarnContext(ctx, "cascade recalibration failed",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	r.dispatch(ctx, out.Intents)
}
