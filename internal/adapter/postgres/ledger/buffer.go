package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// BufferRepo stores the append-only buffer transaction log.
type BufferRepo struct {
	db postgres.Querier
}

// NewBuffer creates a new buffer ledger repository.
func NewBuffer(db postgres.Querier) *BufferRepo {
	return &BufferRepo{db: db}
}

const listBufferSQL = `
SELECT id, learner_id, tx_date, tx_type, amount, balance_after, delta_gravity, note, created_at
FROM buffer_transactions
WHERE learner_id = $1 AND tx_date BETWEEN $2 AND $3
ORDER BY tx_date, created_at`

// AppendTransactions inserts all transactions in one statement. An empty
// batch is a no-op.
func (r *BufferRepo) AppendTransactions(ctx context.Context, txs []domain.BufferTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder.
		Insert("buffer_transactions").
		Columns("id", "learner_id", "tx_date", "tx_type", "amount", "balance_after", "delta_gravity", "note", "created_at")

	// created_at is staggered so the log keeps insertion order within a day.
	now := time.Now().UTC()
	for i, tx := range txs {
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}
		b = b.Values(tx.ID, tx.LearnerID, domain.Day(tx.Date), string(tx.Type),
			tx.Amount, tx.BalanceAfter, tx.DeltaGravity, tx.Note, tx.CreatedAt)
	}
	if _, err := postgres.ExecBuilt(ctx, q, b); err != nil {
		return postgres.MapError(err, "buffer transactions", txs[0].LearnerID)
	}
	return nil
}

// ListTransactions returns transactions in [from, to] in insertion order.
func (r *BufferRepo) ListTransactions(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.BufferTransaction, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listBufferSQL, learnerID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("list buffer transactions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BufferTransaction, error) {
		var (
			tx   domain.BufferTransaction
			kind string
		)
		err := row.Scan(&tx.ID, &tx.LearnerID, &tx.Date, &kind, &tx.Amount, &tx.BalanceAfter,
			&tx.DeltaGravity, &tx.Note, &tx.CreatedAt)
		tx.Type = domain.BufferTxType(kind)
		return tx, err
	})
	if err != nil {
		return nil, fmt.Errorf("list buffer transactions: %w", err)
	}
	return out, nil
}
