// Package progressivetype provides the ProgressiveType catalog. Rows carry a
// user-controlled DisplayOrder that is unique among non-deleted rows.
package progressivetype

import (
	"github.com/samber/lo"

	"adminstore/internal/core/entity"
)

// TableName is the storage table for progressive types.
const TableName = "progressive_types"

// ProgressiveType is one progressive type row.
type ProgressiveType struct {
	entity.AdminEntity

	// DisplayOrder is assigned on insert and changed only by MoveUp/MoveDown.
	DisplayOrder int `db:"display_order" json:"displayOrder"`
}

// NewProgressiveType creates an active progressive type.
func NewProgressiveType(name string) *ProgressiveType {
	return &ProgressiveType{
		AdminEntity: entity.AdminEntity{
			Name:   name,
			Active: lo.ToPtr(true),
		},
	}
}
