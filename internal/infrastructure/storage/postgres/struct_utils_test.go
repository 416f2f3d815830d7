package postgres

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"adminstore/internal/core/entity"
)

type orderedRow struct {
	entity.AdminEntity
	DisplayOrder int    `db:"display_order"`
	Transient    string `db:"-"`
}

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[orderedRow]()

	assert.Equal(t, []string{
		"id", "active", "is_deleted", "created", "created_by", "name", "display_order",
	}, cols)
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[orderedRow](), ExtractDBColumns[*orderedRow]())
}

func TestStructToMap_AdminFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	row := &orderedRow{
		AdminEntity: entity.AdminEntity{
			ID:        7,
			Active:    lo.ToPtr(false),
			Created:   now,
			CreatedBy: lo.ToPtr("admin"),
			Name:      "Gold",
		},
		DisplayOrder: 3,
		Transient:    "ignored",
	}

	m := StructToMap(row)

	assert.Equal(t, int64(7), m["id"])
	assert.Equal(t, lo.ToPtr(false), m["active"])
	assert.Equal(t, false, m["is_deleted"])
	assert.Equal(t, now, m["created"])
	assert.Equal(t, lo.ToPtr("admin"), m["created_by"])
	assert.Equal(t, "Gold", m["name"])
	assert.Equal(t, 3, m["display_order"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 7)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap((*orderedRow)(nil)))
}

func TestPickColumns(t *testing.T) {
	data := map[string]any{"id": 1, "name": "x", "active": true}

	got := PickColumns(data, "name", "active", "missing")

	assert.Equal(t, map[string]any{"name": "x", "active": true}, got)
}
