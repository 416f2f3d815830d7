package rules

import (
	"context"
	"fmt"

	"adminstore/pkg/logger"
)

// Tables that must exist before administrator rules can be seeded.
const (
	RolesTable     = "roles"
	ResourcesTable = "resources"
)

// Seeder grants the administrators role full access to every resource.
type Seeder struct {
	store Store
	log   *logger.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(store Store, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{store: store, log: log.WithComponent("rules.seeder")}
}

// SeedAdministratorRules inserts a full-access role rule for each resource
// that has none yet. Missing tables or a missing administrators role skip
// seeding with a warning. Returns the number of rules inserted.
func (s *Seeder) SeedAdministratorRules(ctx context.Context) (int, error) {
	log := s.log.WithContext(ctx)

	missing, err := s.store.MissingTables(ctx, RolesTable, TableName, ResourcesTable)
	if err != nil {
		return 0, fmt.Errorf("check tables: %w", err)
	}
	if len(missing) > 0 {
		log.Warnw("required tables do not exist, skipping administrator rule seeding", "missing", missing)
		return 0, nil
	}

	roleID, found, err := s.store.RoleID(ctx, AdministratorsRole)
	if err != nil {
		return 0, fmt.Errorf("find administrators role: %w", err)
	}
	if !found || roleID == "" {
		log.Warnw("administrators role does not exist, skipping rule seeding")
		return 0, nil
	}

	resourceIDs, err := s.store.ResourceIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list resources: %w", err)
	}

	inserted := 0
	for _, resourceID := range resourceIDs {
		exists, err := s.store.Exists(ctx, resourceID, roleID, AccountTypeRole)
		if err != nil {
			return inserted, fmt.Errorf("check rule for resource %d: %w", resourceID, err)
		}
		if exists {
			continue
		}

		if err := s.store.Insert(ctx, FullAccess(resourceID, roleID)); err != nil {
			return inserted, fmt.Errorf("insert rule for resource %d: %w", resourceID, err)
		}
		inserted++
		log.Infow("full permissions granted to administrators", "resource_id", resourceID)
	}

	log.Infow("administrator rule seeding completed", "inserted", inserted)
	return inserted, nil
}
