package progressivetype

import "adminstore/internal/domain"

// Repository defines persistence for progressive types.
type Repository interface {
	domain.OrderedRepository[*ProgressiveType]
}
