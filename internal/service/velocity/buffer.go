package velocity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
)

// BufferUpdate is the outcome of posting one day to the buffer ledger.
type BufferUpdate struct {
	Date         time.Time
	Balance      float64
	Transactions []domain.BufferTransaction
	// AlreadyPosted is set when the date had been posted before and the
	// call changed nothing.
	AlreadyPosted bool
	// Frozen is set when the learner is recovering; nothing was posted.
	Frozen  bool
	Intents []domain.Intent
}

// InDebt reports whether the balance is negative.
func (u *BufferUpdate) InDebt() bool {
	return u.Balance < 0
}

// UpdateBuffer posts the day's buffer transactions. A date is posted at
// most once; later calls return the current balance unchanged. The day's
// velocity snapshot is computed first when it does not exist yet. While the
// learner is recovering the ledger is frozen and nothing is posted.
func (s *Service) UpdateBuffer(ctx context.Context, learnerID uuid.UUID, date time.Time) (*BufferUpdate, error) {
	day := domain.Day(date)

	profile, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	if profile.InRecovery {
		return &BufferUpdate{Date: day, Balance: profile.BufferBalance, Frozen: true}, nil
	}

	posted, err := s.buffer.ListTransactions(ctx, learnerID, day, day)
	if err != nil {
		return nil, fmt.Errorf("list buffer transactions: %w", err)
	}
	if len(posted) > 0 {
		return &BufferUpdate{Date: day, Balance: profile.BufferBalance, Transactions: posted, AlreadyPosted: true}, nil
	}

	snap, err := s.snapshots.GetSnapshot(ctx, learnerID, day)
	if errors.Is(err, domain.ErrNotFound) {
		snap, err = s.CalculateVelocity(ctx, learnerID, day)
	}
	if err != nil {
		return nil, fmt.Errorf("velocity snapshot: %w", err)
	}

	days, err := s.study.StudyDays(ctx, learnerID, day.AddDate(0, 0, -streakLookbackDays), day)
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	var today domain.StudyDay
	for _, d := range days {
		if domain.Day(d.Date).Equal(day) {
			today = d
		}
	}

	now := s.clock()
	balance := profile.BufferBalance
	var txs []domain.BufferTransaction
	post := func(typ domain.BufferTxType, amount float64, note string) {
		next := ClampBalance(balance+amount, profile.BufferInitial)
		txs = append(txs, domain.BufferTransaction{
			ID:           uuid.New(),
			LearnerID:    learnerID,
			Date:         day,
			Type:         typ,
			Amount:       domain.Round2(amount),
			BalanceAfter: next,
			DeltaGravity: domain.Round2(today.Gravity - snap.RequiredVelocity),
			Note:         note,
			CreatedAt:    now,
		})
		balance = next
	}

	typ, amount := BufferEntry(today.Studied(), today.Gravity, snap.RequiredVelocity, snap.DaysRemaining, profile.Params)
	post(typ, amount, "")

	if today.Studied() {
		streak := fatigue.ConsecutiveStudyDays(days, day.AddDate(0, 0, 1))
		if streak > 0 && streak%streakMilestone == 0 {
			post(domain.BufferTxStreakBonus, streakBonus, fmt.Sprintf("%d day streak", streak))
		}
	}

	profile.BufferBalance = balance
	profile.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.buffer.AppendTransactions(txCtx, txs); err != nil {
			return fmt.Errorf("append buffer transactions: %w", err)
		}
		if err := s.learners.Update(txCtx, profile); err != nil {
			return fmt.Errorf("update learner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "buffer updated",
		slog.String("learner_id", learnerID.String()),
		slog.String("date", day.Format(time.DateOnly)),
		slog.String("type", string(typ)),
		slog.Float64("balance", balance),
	)

	res := &BufferUpdate{Date: day, Balance: balance, Transactions: txs}
	if res.InDebt() {
		res.Intents = append(res.Intents, domain.NewIntent(domain.IntentBufferDebt, learnerID, now, map[string]any{
			"balance": balance,
			"date":    day.Format(time.DateOnly),
		}))
		s.recalibrate(ctx, learnerID)
	}
	return res, nil
}

// recalibrate runs the controller for buffer debt. Failures are logged and
// never reach the caller.
func (s *Service) recalibrate(ctx context.Context, learnerID uuid.UUID) {
	if s.recal == nil {
		return
	}
	res, err := s.recal.Run(ctx, learnerID, domain.TriggerBufferDebt)
	if err != nil {
		s.log.WarnContext(ctx, "buffer debt recalibration failed",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	s.log.InfoContext(ctx, "buffer debt recalibration",
		slog.String("learner_id", learnerID.String()),
		slog.String("outcome", string(res.Outcome)),
	)
}
