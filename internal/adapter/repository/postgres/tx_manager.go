package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VineetPaun/expense-management/internal/infrastructure/postgres/generated"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

type pgxPool interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// ledgerTxOptions is used for every ledger operation. Read committed is enough because
// writers serialise on the account row via SELECT ... FOR UPDATE before touching entries.
var ledgerTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// TxManager implements usecase.TransactionManager. One transaction carries every write of
// a ledger operation: the locked account row, the entry and its re-chained successors,
// the audit row and the outbox event commit or roll back together.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new read-committed transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, ledgerTxOptions)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back a committed transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

// queriesFor binds the generated queries to the transaction behind tx. Passing a
// transaction from another TxManager implementation is a programming error.
func queriesFor(tx usecase.Transaction) *generated.Queries {
	pgTx, ok := tx.(*Tx)
	if !ok {
		panic(fmt.Sprintf("postgres: transaction %T was not started by TxManager", tx))
	}
	return generated.New(pgTx.PgxTx())
}
