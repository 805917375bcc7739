package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestTxManager_LockReadCommit(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tx := beginTx(t, mock)
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1 FOR UPDATE")).
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow("acc-1", "user-1", "HDFC Bank", "Savings", "5010", "INR", "60.00", "100.00", int64(1), true, ts(now), ts(now)))
	mock.ExpectCommit()

	account, err := repo.GetByIDForUpdate(context.Background(), tx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "60", account.Balance.String())

	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, mock)
}

func TestTxManager_BeginError(t *testing.T) {
	mock := newMockPool(t)
	beginErr := errors.New("too many connections")
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}).WillReturnError(beginErr)

	tx, err := newTxManagerWithPool(mock).Begin(context.Background())
	assert.ErrorIs(t, err, beginErr)
	assert.Nil(t, tx)
}

func TestTxManager_RollbackDiscardsWrite(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	tx := beginTx(t, mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET is_active = FALSE")).
		WithArgs("acc-1", pgxmock.AnyArg()).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.Deactivate(context.Background(), tx, "acc-1", time.Now())
	require.Error(t, err)

	require.NoError(t, tx.Rollback(context.Background()))
	assertExpectations(t, mock)
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestQueriesFor_RejectsForeignTransaction(t *testing.T) {
	repo := NewAccountRepository(newMockPool(t))

	assert.PanicsWithValue(t, "postgres: transaction postgres.foreignTx was not started by TxManager", func() {
		_, _ = repo.GetByIDForUpdate(context.Background(), foreignTx{}, "acc-1")
	})
}
