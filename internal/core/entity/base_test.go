package entity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminstore/internal/core/apperror"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "Euro", false},
		{"max length", strings.Repeat("a", NameMaxLength), false},
		{"multibyte at max length", strings.Repeat("ж", NameMaxLength), false},
		{"empty", "", true},
		{"whitespace only", " \t ", true},
		{"too long", strings.Repeat("a", NameMaxLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			appErr, _ := apperror.AsAppError(err)
			assert.Equal(t, "name", appErr.Details["field"])
		})
	}
}

func TestAdminEntity_PrepareForCreate(t *testing.T) {
	e := &AdminEntity{
		ID:        9,
		Name:      "x",
		IsDeleted: true,
		Created:   time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 3, 4, 5, 6, 7, 891011121, time.FixedZone("X", 3600))

	e.PrepareForCreate(now)

	assert.Zero(t, e.ID)
	assert.False(t, e.IsDeleted)
	assert.Equal(t, time.UTC, e.Created.Location())
	assert.Equal(t, now.UTC().Truncate(time.Microsecond), e.Created)
	require.NotNil(t, e.Active)
	assert.True(t, *e.Active)
}

func TestAdminEntity_PrepareForCreateKeepsInactive(t *testing.T) {
	e := &AdminEntity{Name: "x", Active: lo.ToPtr(false)}
	e.PrepareForCreate(Now())
	assert.False(t, e.IsActive())
}

func TestAdminEntity_IsActiveTreatsNilAsTrue(t *testing.T) {
	assert.True(t, (&AdminEntity{}).IsActive())
	assert.False(t, (&AdminEntity{Active: lo.ToPtr(false)}).IsActive())
}

func TestAdminEntity_Validate(t *testing.T) {
	assert.NoError(t, (&AdminEntity{Name: "ok"}).Validate(context.Background()))
	assert.Error(t, (&AdminEntity{}).Validate(context.Background()))
}
