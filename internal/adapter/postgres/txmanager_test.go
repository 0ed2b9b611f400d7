package postgres_test

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRunInTx_Commit(t *testing.T) {
	mock := newMock(t)
	tm := postgres.NewTxManager(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO daily_plans`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, mock)
		_, err := q.Exec(ctx, `INSERT INTO daily_plans (id) VALUES ($1)`, "x")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	tm := postgres.NewTxManager(mock)
	sentinel := errors.New("business logic error")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)
	tm := postgres.NewTxManager(mock)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_BeginError(t *testing.T) {
	mock := newMock(t)
	tm := postgres.NewTxManager(mock)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "begin transaction")
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	mock := newMock(t)
	tm := postgres.NewTxManager(mock)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return tm.RunInTx(ctx, func(ctx context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuerierFromCtx_NoTxReturnsDB(t *testing.T) {
	mock := newMock(t)

	q := postgres.QuerierFromCtx(context.Background(), mock)
	assert.Equal(t, postgres.Querier(mock), q)
}
