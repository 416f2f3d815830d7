package progressivetype_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminstore/internal/core/apperror"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/testutil"
	"adminstore/pkg/logger"
)

type brokenMoveStore struct {
	*testutil.InMemoryProgressiveTypeStore
}

func (s brokenMoveStore) MoveUp(ctx context.Context, id int64) (bool, error) {
	return false, errors.New("lock timeout")
}

func seed(t *testing.T, svc *progressivetype.Service, names ...string) []*progressivetype.ProgressiveType {
	t.Helper()
	out := make([]*progressivetype.ProgressiveType, 0, len(names))
	for _, name := range names {
		created, err := svc.Create(context.Background(), progressivetype.NewProgressiveType(name))
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestService_MoveUpSwapsWithPredecessor(t *testing.T) {
	ctx := context.Background()
	svc := progressivetype.NewService(testutil.NewInMemoryProgressiveTypeStore(), logger.Nop())
	rows := seed(t, svc, "a", "b")

	moved, err := svc.MoveUp(ctx, rows[1].ID)
	require.NoError(t, err)
	assert.True(t, moved)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", all[0].Name)
	assert.Equal(t, 1, all[0].DisplayOrder)
}

func TestService_MoveAtEdgesIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := progressivetype.NewService(testutil.NewInMemoryProgressiveTypeStore(), logger.Nop())
	rows := seed(t, svc, "a", "b")

	moved, err := svc.MoveUp(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = svc.MoveDown(ctx, rows[1].ID)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestService_MoveMissingIsNotFound(t *testing.T) {
	svc := progressivetype.NewService(testutil.NewInMemoryProgressiveTypeStore(), logger.Nop())

	_, err := svc.MoveDown(context.Background(), 3)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_RolledBackSwapIsNotMoved(t *testing.T) {
	store := testutil.NewInMemoryProgressiveTypeStore()
	svc := progressivetype.NewService(store, logger.Nop())
	rows := seed(t, svc, "a", "b")
	store.FailSwap = true

	moved, err := svc.MoveUp(context.Background(), rows[1].ID)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestService_MoveStorageErrorIsDatabaseError(t *testing.T) {
	store := brokenMoveStore{testutil.NewInMemoryProgressiveTypeStore()}
	svc := progressivetype.NewService(store, logger.Nop())
	rows := seed(t, svc, "a", "b")

	_, err := svc.MoveUp(context.Background(), rows[1].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))
}
