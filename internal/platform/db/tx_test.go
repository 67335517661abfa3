package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	conn := &fakeBeginner{tx: &fakeTx{}}

	err := WithTx(context.Background(), conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(), "UPDATE accounts SET current_balance = 0")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, conn.tx.commits)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	conn := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithTx(context.Background(), conn, func(tx pgx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, conn.tx.commits)
	require.Equal(t, 1, conn.tx.rollbacks)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := &fakeBeginner{tx: &fakeTx{}}

	require.Panics(t, func() {
		_ = WithTx(context.Background(), conn, func(tx pgx.Tx) error {
			panic("posting closure blew up")
		})
	})
	require.Zero(t, conn.tx.commits)
	require.Equal(t, 1, conn.tx.rollbacks)
}

func TestWithTxBeginFailure(t *testing.T) {
	boom := errors.New("pool exhausted")
	conn := &fakeBeginner{err: boom}

	err := WithTx(context.Background(), conn, func(tx pgx.Tx) error { return nil })
	require.ErrorIs(t, err, boom)
}
