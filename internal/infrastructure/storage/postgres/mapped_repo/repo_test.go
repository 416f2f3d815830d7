package mapped_repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminstore/internal/domain"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

var (
	created   = time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	readWrite = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}
	snapshot  = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func newMockedProgressiveTypeRepo(mock pgxmock.PgxPoolIface) *ProgressiveTypeRepo {
	return NewProgressiveTypeRepo(postgres.NewStaticProvider(mock, nil), logger.Nop())
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func progressiveTypeRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "active", "is_deleted", "created", "created_by", "name", "display_order"})
}

func withRow(rows *pgxmock.Rows, id int64, name string, order int) *pgxmock.Rows {
	return rows.AddRow(id, lo.ToPtr(true), false, created, (*string)(nil), name, order)
}

// expectTx begins a read-write transaction the way TxManager does.
func expectTx(mock pgxmock.PgxPoolIface, opts pgx.TxOptions) {
	mock.ExpectBeginTx(opts)
	mock.ExpectExec(q("SET LOCAL statement_timeout = '30000ms'")).
		WillReturnResult(pgxmock.NewResult("SET", 0))
}

func expectLock(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(q("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("progressive_types").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

// expectPair locks the table and reads target 5 at order 3 and its neighbor 6 at order nbOrder.
func expectPair(mock pgxmock.PgxPoolIface, cmp string, nbOrder int) {
	expectTx(mock, readWrite)
	expectLock(mock)
	mock.ExpectQuery(q("FROM progressive_types WHERE is_deleted = $1 AND id = $2 LIMIT 1 FOR UPDATE")).
		WithArgs(false, int64(5)).
		WillReturnRows(withRow(progressiveTypeRows(), 5, "target", 3))
	mock.ExpectQuery(q("WHERE is_deleted = $1 AND display_order "+cmp+" $2")).
		WithArgs(false, 3).
		WillReturnRows(withRow(progressiveTypeRows(), 6, "neighbor", nbOrder))
}

func expectSetOrder(mock pgxmock.PgxPoolIface, order int, id int64) *pgxmock.ExpectedExec {
	return mock.ExpectExec(q("UPDATE progressive_types SET display_order = $1 WHERE id = $2")).
		WithArgs(order, id)
}

func TestProgressiveTypeRepo_AddLocksReadsMaxAndInserts(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectTx(mock, readWrite)
	expectLock(mock)
	mock.ExpectQuery(q("SELECT COALESCE(MAX(display_order), 0) + 1 FROM progressive_types WHERE is_deleted = $1")).
		WithArgs(false).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(4))
	mock.ExpectQuery(q("INSERT INTO progressive_types (active,created,created_by,display_order,is_deleted,name)")).
		WithArgs(lo.ToPtr(true), pgxmock.AnyArg(), (*string)(nil), 4, false, "Monthly").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectCommit()

	item, err := repo.Add(context.Background(), progressivetype.NewProgressiveType("Monthly"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), item.ID)
	assert.Equal(t, 4, item.DisplayOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_AddInsertFailureRollsBack(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectTx(mock, readWrite)
	expectLock(mock)
	mock.ExpectQuery(q("SELECT COALESCE(MAX(display_order), 0) + 1")).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(1))
	mock.ExpectQuery(q("INSERT INTO progressive_types")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Add(context.Background(), progressivetype.NewProgressiveType("Monthly"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert progressive_types")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveUpSwaps(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectPair(mock, "<", 2)
	expectSetOrder(mock, 2, 5).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectSetOrder(mock, 3, 6).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	moved, err := repo.MoveUp(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveSwapFailureIsNotMoved(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectPair(mock, "<", 2)
	expectSetOrder(mock, 2, 5).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectSetOrder(mock, 3, 6).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	moved, err := repo.MoveUp(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveCommitFailureIsNotMoved(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectPair(mock, ">", 4)
	expectSetOrder(mock, 4, 5).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectSetOrder(mock, 3, 6).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset by peer"))

	moved, err := repo.MoveDown(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveReadFailureIsAnError(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectTx(mock, readWrite)
	expectLock(mock)
	mock.ExpectQuery(q("WHERE is_deleted = $1 AND id = $2 LIMIT 1 FOR UPDATE")).
		WithArgs(false, int64(5)).
		WillReturnError(errors.New("canceling statement due to statement timeout"))
	mock.ExpectRollback()

	moved, err := repo.MoveUp(context.Background(), 5)
	require.Error(t, err)
	assert.False(t, moved)
	assert.Contains(t, err.Error(), "read progressive_types")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveLockFailureIsAnError(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectTx(mock, readWrite)
	mock.ExpectExec(q("pg_advisory_xact_lock")).
		WillReturnError(errors.New("canceling statement due to lock timeout"))
	mock.ExpectRollback()

	moved, err := repo.MoveDown(context.Background(), 5)
	require.Error(t, err)
	assert.False(t, moved)
	assert.Contains(t, err.Error(), "lock progressive_types")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveWithoutTargetOrNeighbor(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		mock := newMockPool(t)
		repo := newMockedProgressiveTypeRepo(mock)

		expectTx(mock, readWrite)
		expectLock(mock)
		mock.ExpectQuery(q("WHERE is_deleted = $1 AND id = $2 LIMIT 1 FOR UPDATE")).
			WithArgs(false, int64(5)).
			WillReturnRows(progressiveTypeRows())
		mock.ExpectCommit()

		moved, err := repo.MoveUp(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, moved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already last", func(t *testing.T) {
		mock := newMockPool(t)
		repo := newMockedProgressiveTypeRepo(mock)

		expectTx(mock, readWrite)
		expectLock(mock)
		mock.ExpectQuery(q("WHERE is_deleted = $1 AND id = $2 LIMIT 1 FOR UPDATE")).
			WithArgs(false, int64(5)).
			WillReturnRows(withRow(progressiveTypeRows(), 5, "target", 3))
		mock.ExpectQuery(q("WHERE is_deleted = $1 AND display_order > $2")).
			WithArgs(false, 3).
			WillReturnRows(progressiveTypeRows())
		mock.ExpectCommit()

		moved, err := repo.MoveDown(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, moved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProgressiveTypeRepo_GetFilteredReadsOneSnapshot(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectTx(mock, snapshot)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM (SELECT")).
		WithArgs(false, "%ly%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(q("ORDER BY name ASC, id ASC LIMIT 2 OFFSET 2")).
		WithArgs(false, "%ly%").
		WillReturnRows(withRow(progressiveTypeRows(), 9, "Yearly", 3))
	mock.ExpectCommit()

	set, err := repo.GetFiltered(context.Background(), domain.FilterOptions{
		PageIndex:   1,
		PageSize:    2,
		SearchQuery: "ly",
		SortOrder:   domain.SortName,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, set.TotalCount)
	require.Len(t, set.Items, 1)
	assert.Equal(t, "Yearly", set.Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_GetFilteredCountFailure(t *testing.T) {
	mock := newMockPool(t)
	repo := newMockedProgressiveTypeRepo(mock)

	expectTx(mock, snapshot)
	mock.ExpectQuery(q("SELECT COUNT(*)")).
		WillReturnError(errors.New("relation \"progressive_types\" does not exist"))
	mock.ExpectRollback()

	set, err := repo.GetFiltered(context.Background(), domain.FilterOptions{PageSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count progressive_types")
	assert.NotNil(t, set.Items)
	assert.Empty(t, set.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
