package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readWrite = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

func expectTimeout(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL statement_timeout = '30000ms'")).
		WillReturnResult(pgxmock.NewResult("SET", 0))
}

func TestTxManager_CommitsAndJoinsNested(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(readWrite)
	expectTimeout(mock)
	mock.ExpectExec("UPDATE a").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tm := NewTxManager(mock)
	err = tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		require.NotNil(t, tm.GetTx(ctx))
		return tm.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := tm.GetQuerier(ctx).Exec(ctx, "UPDATE a")
			return err
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(readWrite)
	expectTimeout(mock)
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewTxManager(mock).RunInTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_ReadOnly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	expectTimeout(mock)
	mock.ExpectCommit()

	err = NewTxManager(mock).ReadOnly(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_GetQuerierWithoutTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tm := NewTxManager(mock)
	assert.Nil(t, tm.GetTx(context.Background()))
	assert.Equal(t, mock, tm.GetQuerier(context.Background()))
}
