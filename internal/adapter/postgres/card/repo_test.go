package card_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/card"
	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

var cardColumns = []string{
	"id", "learner_id", "topic_id", "state", "step", "stability", "difficulty", "due",
	"last_review", "reps", "lapses", "scheduled_days", "elapsed_days", "created_at", "updated_at",
}

func TestRepo_GetByTopic(t *testing.T) {
	t.Parallel()
	learnerID, topicID := uuid.New(), uuid.New()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		mock := testhelper.NewMockPool(t)
		id := uuid.New()
		due := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
		last := due.AddDate(0, 0, -4)
		mock.ExpectQuery(`FROM srs_cards WHERE learner_id = \$1 AND topic_id = \$2`).
			WithArgs(learnerID, topicID).
			WillReturnRows(pgxmock.NewRows(cardColumns).
				AddRow(id, learnerID, topicID, "REVIEW", 0, 4.2, 5.1, due, &last, 3, 0, 4, 4, last, last))

		got, err := card.New(mock).GetByTopic(context.Background(), learnerID, topicID)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, domain.CardStateReview, got.State)
		assert.InDelta(t, 4.2, got.Stability, 1e-9)
		require.NotNil(t, got.LastReview)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		mock := testhelper.NewMockPool(t)
		mock.ExpectQuery(`FROM srs_cards`).
			WithArgs(learnerID, topicID).
			WillReturnError(pgx.ErrNoRows)

		_, err := card.New(mock).GetByTopic(context.Background(), learnerID, topicID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRepo_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("keeps stored identity", func(t *testing.T) {
		t.Parallel()
		mock := testhelper.NewMockPool(t)
		stored := uuid.New()
		created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`INSERT INTO srs_cards .* ON CONFLICT \(learner_id, topic_id\) DO UPDATE .* RETURNING id, created_at`).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(stored, created))

		c := &domain.Card{LearnerID: uuid.New(), TopicID: uuid.New(), State: domain.CardStateLearning, Due: created}
		require.NoError(t, card.New(mock).Upsert(context.Background(), c))
		assert.Equal(t, stored, c.ID)
		assert.Equal(t, created, c.CreatedAt)
		assert.False(t, c.UpdatedAt.IsZero())
	})

	t.Run("unknown learner", func(t *testing.T) {
		t.Parallel()
		mock := testhelper.NewMockPool(t)
		mock.ExpectQuery(`INSERT INTO srs_cards`).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		err := card.New(mock).Upsert(context.Background(), &domain.Card{LearnerID: uuid.New(), TopicID: uuid.New()})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReviewLogRepo_Create(t *testing.T) {
	t.Parallel()

	t.Run("without prev state stores NULL", func(t *testing.T) {
		t.Parallel()
		mock := testhelper.NewMockPool(t)
		l := &domain.ReviewLog{CardID: uuid.New(), LearnerID: uuid.New(), TopicID: uuid.New(), Rating: 3, ReviewedAt: time.Now().UTC()}
		mock.ExpectExec(`INSERT INTO review_logs`).
			WithArgs(pgxmock.AnyArg(), l.CardID, l.LearnerID, l.TopicID, 3, []byte(nil), l.ReviewedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, card.NewReviewLogs(mock).Create(context.Background(), l))
		assert.NotEqual(t, uuid.Nil, l.ID)
	})

	t.Run("card gone", func(t *testing.T) {
		t.Parallel()
		mock := testhelper.NewMockPool(t)
		mock.ExpectExec(`INSERT INTO review_logs`).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		err := card.NewReviewLogs(mock).Create(context.Background(), &domain.ReviewLog{CardID: uuid.New(), Rating: 1})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReviewLogRepo_ListByLearner(t *testing.T) {
	t.Parallel()
	mock := testhelper.NewMockPool(t)

	learnerID := uuid.New()
	at := time.Date(2025, 7, 16, 8, 0, 0, 0, time.UTC)
	prev := []byte(`{"state":"LEARNING","step":1,"stability":0.4,"difficulty":6.1,"due":"2025-07-16T08:00:00Z","reps":1,"lapses":0,"scheduled_days":0,"elapsed_days":0}`)
	mock.ExpectQuery(`FROM review_logs WHERE learner_id = \$1`).
		WithArgs(learnerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "card_id", "learner_id", "topic_id", "rating", "prev_state", "reviewed_at"}).
			AddRow(uuid.New(), uuid.New(), learnerID, uuid.New(), 3, prev, at).
			AddRow(uuid.New(), uuid.New(), learnerID, uuid.New(), 4, []byte(nil), at))

	got, err := card.NewReviewLogs(mock).ListByLearner(context.Background(), learnerID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].PrevState)
	assert.Equal(t, domain.CardStateLearning, got[0].PrevState.State)
	assert.True(t, got[0].PrevState.Due.Equal(at))
	assert.Nil(t, got[0].PrevState.LastReview)
	assert.Nil(t, got[1].PrevState)
}

func TestRepo_Integration(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	cards := card.New(pool)
	logs := card.NewReviewLogs(pool)
	ctx := context.Background()

	l := testhelper.SeedLearner(t, pool)
	topic := testhelper.SeedTopic(t, pool, 3, 3)

	due := time.Now().UTC().Truncate(time.Microsecond)
	c := &domain.Card{LearnerID: l.LearnerID, TopicID: topic.ID, State: domain.CardStateNew, Due: due}
	require.NoError(t, cards.Upsert(ctx, c))
	firstID := c.ID

	prev := c.Snapshot()
	c.ID = uuid.Nil
	c.State = domain.CardStateLearning
	c.Reps = 1
	require.NoError(t, cards.Upsert(ctx, c))
	assert.Equal(t, firstID, c.ID)

	got, err := cards.GetByTopic(ctx, l.LearnerID, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStateLearning, got.State)
	assert.Equal(t, 1, got.Reps)

	require.NoError(t, logs.Create(ctx, &domain.ReviewLog{
		CardID: c.ID, LearnerID: l.LearnerID, TopicID: topic.ID, Rating: 3, PrevState: prev, ReviewedAt: due,
	}))
	list, err := logs.ListByLearner(ctx, l.LearnerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].PrevState)
	assert.Equal(t, domain.CardStateNew, list[0].PrevState.State)
	assert.True(t, list[0].PrevState.Due.Equal(due))
}
