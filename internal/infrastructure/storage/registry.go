// Package storage selects the repository backend for the admin list entities.
package storage

import (
	"fmt"
	"strings"

	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/storage/postgres"
	"adminstore/internal/infrastructure/storage/postgres/driver_repo"
	"adminstore/internal/infrastructure/storage/postgres/mapped_repo"
	"adminstore/internal/infrastructure/storage/postgres/template_repo"
	"adminstore/pkg/logger"
)

// Mode names a repository backend.
type Mode string

const (
	// ModeMapped builds queries with squirrel and maps rows with scany.
	ModeMapped Mode = "mapped"
	// ModeTemplate runs named statement templates through sqlx.
	ModeTemplate Mode = "template"
	// ModeDriver talks to pgx directly.
	ModeDriver Mode = "driver"
)

// Modes lists every supported backend.
var Modes = []Mode{ModeMapped, ModeTemplate, ModeDriver}

// ParseMode validates a backend name. Matching ignores case and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeMapped, ModeTemplate, ModeDriver:
		return m, nil
	default:
		return "", fmt.Errorf("unknown storage mode %q (want mapped, template or driver)", s)
	}
}

// NewDenominationRepository returns the denomination repository for mode.
func NewDenominationRepository(mode Mode, provider postgres.ConnectionProvider, log *logger.Logger) (denomination.Repository, error) {
	switch mode {
	case ModeMapped:
		return mapped_repo.NewDenominationRepo(provider, log), nil
	case ModeTemplate:
		return template_repo.NewDenominationRepo(provider, log), nil
	case ModeDriver:
		return driver_repo.NewDenominationRepo(provider, log), nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}
}

// NewProgressiveTypeRepository returns the progressive type repository for mode.
func NewProgressiveTypeRepository(mode Mode, provider postgres.ConnectionProvider, log *logger.Logger) (progressivetype.Repository, error) {
	switch mode {
	case ModeMapped:
		return mapped_repo.NewProgressiveTypeRepo(provider, log), nil
	case ModeTemplate:
		return template_repo.NewProgressiveTypeRepo(provider, log), nil
	case ModeDriver:
		return driver_repo.NewProgressiveTypeRepo(provider, log), nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}
}
