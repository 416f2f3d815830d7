package template_repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminstore/internal/core/apperror"
	"adminstore/internal/domain"
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/pkg/logger"
)

var denominationColumns = []string{"id", "active", "is_deleted", "created", "created_by", "name"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestStatements_Render(t *testing.T) {
	s := newStatements("denominations", denominationColumns, "id DESC")

	assert.Equal(t,
		"INSERT INTO denominations (active, is_deleted, created, created_by, name) VALUES (:active, :is_deleted, :created, :created_by, :name) RETURNING id",
		s.insert)
	assert.Equal(t,
		"SELECT id, active, is_deleted, created, created_by, name FROM denominations WHERE is_deleted = FALSE ORDER BY id DESC",
		s.getAll)

	countSQL, pageSQL, args := s.filtered(domain.FilterOptions{PageIndex: 1, PageSize: 20, SearchQuery: "a_b", SortOrder: domain.SortNameDesc})
	assert.Equal(t, "SELECT COUNT(*) FROM denominations WHERE is_deleted = FALSE AND name ILIKE :pattern", countSQL)
	assert.Equal(t,
		"SELECT id, active, is_deleted, created, created_by, name FROM denominations WHERE is_deleted = FALSE AND name ILIKE :pattern ORDER BY name DESC, id DESC LIMIT :limit OFFSET :offset",
		pageSQL)
	assert.Equal(t, `%a\_b%`, args["pattern"])
	assert.Equal(t, 20, args["limit"])
	assert.Equal(t, int64(20), args["offset"])

	countSQL, _, args = s.filtered(domain.FilterOptions{PageSize: 5, SearchQuery: "  "})
	assert.NotContains(t, countSQL, "ILIKE")
	assert.NotContains(t, args, "pattern")
}

func TestDenominationRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, db), logger.Nop())
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("FROM denominations WHERE id = $1 AND is_deleted = FALSE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(denominationColumns).
			AddRow(int64(3), true, false, created, "admin", "Gold"))

	item, found, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), item.ID)
	assert.Equal(t, "Gold", item.Name)
	assert.True(t, item.IsActive())
	assert.Equal(t, created, item.Created)

	mock.ExpectQuery(q("FROM denominations WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(denominationColumns))

	item, found, err = repo.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(0), item.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDenominationRepo_Add(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, db), logger.Nop())
	ctx := context.Background()

	mock.ExpectQuery(q("INSERT INTO denominations (active, is_deleted, created, created_by, name) VALUES ($1, $2, $3, $4, $5) RETURNING id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	item := denomination.NewDenomination("Silver")
	item.Active = nil
	item.IsDeleted = true

	got, err := repo.Add(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.True(t, got.IsActive())
	assert.False(t, got.IsDeleted)
	assert.Equal(t, time.UTC, got.Created.Location())

	mock.ExpectQuery(q("INSERT INTO denominations")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.Add(ctx, denomination.NewDenomination("Bronze"))
	require.Error(t, err)
	assert.True(t, apperror.IsIntegrity(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDenominationRepo_AddInvalidRunsNoStatement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	_, err := repo.Add(context.Background(), denomination.NewDenomination(""))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDenominationRepo_UpdateAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, db), logger.Nop())
	ctx := context.Background()

	mock.ExpectExec(q("UPDATE denominations SET active = $1, name = $2 WHERE id = $3 AND is_deleted = FALSE")).
		WithArgs(nil, "Platinum", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := denomination.NewDenomination("Platinum")
	item.ID = 5
	item.Active = nil
	ok, err := repo.Update(ctx, item)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(q("UPDATE denominations SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE denominations SET is_deleted = TRUE")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.Delete(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDenominationRepo_GetFiltered(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, db), logger.Nop())
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COUNT(*) FROM denominations WHERE is_deleted = FALSE AND name ILIKE $1")).
		WithArgs("%old%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(q("AND name ILIKE $1 ORDER BY name ASC, id ASC LIMIT $2 OFFSET $3")).
		WithArgs("%old%", int64(2), int64(2)).
		WillReturnRows(sqlmock.NewRows(denominationColumns).
			AddRow(int64(9), true, false, created, nil, "Old gold"))
	mock.ExpectCommit()

	set, err := repo.GetPage(ctx, 1, 2, "Name", "old", domain.SortName, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), set.TotalCount)
	require.Len(t, set.Items, 1)
	assert.Equal(t, "Old gold", set.Items[0].Name)
	assert.Nil(t, set.Items[0].CreatedBy)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COUNT(*) FROM denominations WHERE is_deleted = FALSE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectCommit()

	set, err = repo.GetFiltered(ctx, domain.FilterOptions{PageIndex: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(7), set.TotalCount)
	assert.Empty(t, set.Items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDenominationRepo_GetFilteredPageFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COUNT(*) FROM denominations")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(q("ORDER BY id DESC LIMIT $1 OFFSET $2")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	set, err := repo.GetPage(context.Background(), 0, 10, "", "", domain.SortDefault, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page denominations")
	assert.Empty(t, set.Items)
	assert.Zero(t, set.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_Add(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(q("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("progressive_types").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT COALESCE(MAX(display_order), 0) + 1 FROM progressive_types WHERE is_deleted = FALSE")).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(4)))
	mock.ExpectQuery(q("INSERT INTO progressive_types")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectCommit()

	item, err := repo.Add(context.Background(), progressivetype.NewProgressiveType("Monthly"))
	require.NoError(t, err)
	assert.Equal(t, int64(21), item.ID)
	assert.Equal(t, 4, item.DisplayOrder)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectMoveReads(mock sqlmock.Sqlmock, neighbor string) {
	mock.ExpectBegin()
	mock.ExpectExec(q("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM progressive_types WHERE id = $1 AND is_deleted = FALSE FOR UPDATE")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_order"}).AddRow(int64(2), int64(2)))
	mock.ExpectQuery(q(neighbor)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_order"}).AddRow(int64(1), int64(1)))
}

func TestProgressiveTypeRepo_MoveUp(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	expectMoveReads(mock, "display_order < $1 AND is_deleted = FALSE ORDER BY display_order DESC LIMIT 1 FOR UPDATE")
	mock.ExpectExec(q("UPDATE progressive_types SET display_order = $1 WHERE id = $2")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE progressive_types SET display_order = $1 WHERE id = $2")).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := repo.MoveUp(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveDownWithoutNeighbor(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(q("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("WHERE id = $1 AND is_deleted = FALSE FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_order"}).AddRow(int64(2), int64(2)))
	mock.ExpectQuery(q("display_order > $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_order"}))
	mock.ExpectRollback()

	moved, err := repo.MoveDown(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_MoveMissingTarget(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(q("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("WHERE id = $1 AND is_deleted = FALSE FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_order"}))
	mock.ExpectRollback()

	moved, err := repo.MoveUp(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_SwapFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	expectMoveReads(mock, "display_order < $1")
	mock.ExpectExec(q("SET display_order = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("SET display_order = $1")).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	moved, err := repo.MoveUp(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_CommitFailureReportsNotMoved(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	expectMoveReads(mock, "display_order < $1")
	mock.ExpectExec(q("SET display_order = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("SET display_order = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	moved, err := repo.MoveUp(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressiveTypeRepo_ReadFailurePropagates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgressiveTypeRepo(postgres.NewStaticProvider(nil, db), logger.Nop())

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := repo.MoveUp(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")

	mock.ExpectBegin()
	mock.ExpectExec(q("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err = repo.MoveDown(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepos_WithoutConnection(t *testing.T) {
	repo := NewDenominationRepo(postgres.NewStaticProvider(nil, nil), logger.Nop())

	_, err := repo.GetAll(context.Background())
	assert.ErrorIs(t, err, postgres.ErrNoDefaultConnection)
}
