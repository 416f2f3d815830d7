// Package denomination provides the Denomination catalog: an unordered admin list
// whose natural order is newest first.
package denomination

import (
	"github.com/samber/lo"

	"adminstore/internal/core/entity"
)

// TableName is the storage table for denominations.
const TableName = "denominations"

// Denomination is one denomination row.
type Denomination struct {
	entity.AdminEntity
}

// NewDenomination creates an active denomination.
func NewDenomination(name string) *Denomination {
	return &Denomination{
		AdminEntity: entity.AdminEntity{
			Name:   name,
			Active: lo.ToPtr(true),
		},
	}
}
