package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNProvider_EmptyDSN(t *testing.T) {
	p := NewDSNProvider("")
	defer p.Close()

	_, err := p.DB(context.Background())
	assert.ErrorIs(t, err, ErrNoDefaultConnection)

	_, err = p.SQLX(context.Background())
	assert.ErrorIs(t, err, ErrNoDefaultConnection)
}

func TestStaticProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewStaticProvider(mock, nil)

	db, err := p.DB(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mock, db)

	_, err = p.SQLX(context.Background())
	assert.ErrorIs(t, err, ErrNoDefaultConnection)
}

func TestTenantProvider_FallsBackWithoutTenant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewTenantProvider(nil, NewStaticProvider(mock, nil))
	db, err := p.DB(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mock, db)

	_, err = NewTenantProvider(nil, nil).DB(context.Background())
	assert.ErrorIs(t, err, ErrNoDefaultConnection)
}
