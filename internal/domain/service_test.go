package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"adminstore/internal/core/apperror"
	"adminstore/internal/domain"
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/testutil"
	"adminstore/pkg/logger"
)

func newService(repo domain.Repository[*denomination.Denomination]) *domain.AdminService[*denomination.Denomination] {
	return domain.NewAdminService(domain.AdminServiceConfig[*denomination.Denomination]{
		Repo:       repo,
		EntityName: "denomination",
		Logger:     logger.Nop(),
	})
}

// failingRepo fails every storage call with err.
type failingRepo struct {
	denomination.Repository
	err error
}

func (r failingRepo) Add(ctx context.Context, item *denomination.Denomination) (*denomination.Denomination, error) {
	return item, r.err
}

func (r failingRepo) GetByID(ctx context.Context, id int64) (*denomination.Denomination, bool, error) {
	return &denomination.Denomination{}, false, r.err
}

func (r failingRepo) GetFiltered(ctx context.Context, opts domain.FilterOptions) (domain.ArticleSet[*denomination.Denomination], error) {
	return domain.ArticleSet[*denomination.Denomination]{Items: []*denomination.Denomination{}}, r.err
}

func TestAdminService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newService(testutil.NewInMemoryDenominationStore())

	created, err := svc.Create(ctx, denomination.NewDenomination("Euro"))
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Euro", got.Name)
}

func TestAdminService_CreateRejectsInvalidName(t *testing.T) {
	store := testutil.NewInMemoryDenominationStore()
	svc := newService(store)

	_, err := svc.Create(context.Background(), denomination.NewDenomination(" "))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdminService_MissingRowsAreNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newService(testutil.NewInMemoryDenominationStore())

	_, err := svc.GetByID(ctx, 5)
	assert.True(t, apperror.IsNotFound(err))

	missing := denomination.NewDenomination("x")
	missing.ID = 5
	assert.True(t, apperror.IsNotFound(svc.Update(ctx, missing)))

	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, 5)))
}

func TestAdminService_DeleteTwiceIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newService(testutil.NewInMemoryDenominationStore())

	created, err := svc.Create(ctx, denomination.NewDenomination("Euro"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, created.ID)))
}

func TestAdminService_WrapsStorageErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(failingRepo{err: errors.New("connection refused")})

	_, err := svc.Create(ctx, denomination.NewDenomination("Euro"))
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))

	_, err = svc.GetByID(ctx, 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))

	_, err = svc.List(ctx, domain.FilterOptions{PageSize: 10})
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))
}

func TestAdminService_KeepsAppErrors(t *testing.T) {
	svc := newService(failingRepo{err: apperror.NewIntegrity(denomination.TableName)})

	_, err := svc.Create(context.Background(), denomination.NewDenomination("Euro"))
	assert.True(t, apperror.IsIntegrity(err))
}

func TestAdminService_LogsChanges(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	svc := domain.NewAdminService(domain.AdminServiceConfig[*denomination.Denomination]{
		Repo:       testutil.NewInMemoryDenominationStore(),
		EntityName: "denomination",
		Logger:     &logger.Logger{SugaredLogger: zap.New(core).Sugar()},
	})

	created, err := svc.Create(ctx, denomination.NewDenomination("Euro"))
	require.NoError(t, err)

	created.Name = "Euro cent"
	require.NoError(t, svc.Update(ctx, created))
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, created.ID)))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"created", "updated", "deleted"},
		[]string{entries[0].Message, entries[1].Message, entries[2].Message})
	assert.Equal(t, "denomination-service", entries[0].ContextMap()["component"])
	assert.Equal(t, "Euro cent", entries[1].ContextMap()["name"])
	assert.EqualValues(t, created.ID, entries[2].ContextMap()["id"])
}
