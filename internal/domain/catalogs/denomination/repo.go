package denomination

import "adminstore/internal/domain"

// Repository defines persistence for denominations.
type Repository interface {
	domain.Repository[*Denomination]
}
