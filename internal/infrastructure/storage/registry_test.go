package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/internal/infrastructure/storage/postgres/driver_repo"
	"adminstore/internal/infrastructure/storage/postgres/mapped_repo"
	"adminstore/internal/infrastructure/storage/postgres/template_repo"
	"adminstore/pkg/logger"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"mapped", ModeMapped},
		{" Template ", ModeTemplate},
		{"DRIVER", ModeDriver},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMode("orm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"orm"`)

	_, err = ParseMode("")
	assert.Error(t, err)
}

func TestNewRepositories(t *testing.T) {
	provider := postgres.NewStaticProvider(nil, nil)
	log := logger.Nop()

	d, err := NewDenominationRepository(ModeMapped, provider, log)
	require.NoError(t, err)
	assert.IsType(t, &mapped_repo.DenominationRepo{}, d)

	d, err = NewDenominationRepository(ModeTemplate, provider, log)
	require.NoError(t, err)
	assert.IsType(t, &template_repo.DenominationRepo{}, d)

	p, err := NewProgressiveTypeRepository(ModeDriver, provider, log)
	require.NoError(t, err)
	assert.IsType(t, &driver_repo.ProgressiveTypeRepo{}, p)

	_, err = NewProgressiveTypeRepository(Mode("ef"), provider, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ef")
}
