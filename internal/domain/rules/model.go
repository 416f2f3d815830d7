// Package rules holds access rules: per-resource permission flags granted to
// a user, group or role.
package rules

import "context"

const (
	// TableName is the storage table for rules.
	TableName = "rules"

	// AccountTypeRole marks a rule granted to a role.
	AccountTypeRole = "Role"

	// AdministratorsRole is the normalized name of the built-in administrators role.
	AdministratorsRole = "ADMINISTRATORS"
)

// Rule is one permission row.
type Rule struct {
	ID          int64  `db:"id"`
	ResourceID  int    `db:"resource_id"`
	AccountID   string `db:"account_id"`
	AccountType string `db:"account_type"`

	NoAccess    bool `db:"no_access"`
	List        bool `db:"list"`
	ReadArticle bool `db:"read_article"`
	Download    bool `db:"download"`
	Write       bool `db:"write"`
	Upload      bool `db:"upload"`
	Extra       bool `db:"extra"`
	Admin       bool `db:"admin"`
	Comment     bool `db:"comment"`
	Menu        bool `db:"menu"`
}

// FullAccess grants every permission on a resource to a role.
func FullAccess(resourceID int, roleID string) Rule {
	return Rule{
		ResourceID:  resourceID,
		AccountID:   roleID,
		AccountType: AccountTypeRole,
		List:        true,
		ReadArticle: true,
		Download:    true,
		Write:       true,
		Upload:      true,
		Extra:       true,
		Admin:       true,
		Comment:     true,
		Menu:        true,
	}
}

// Store is the persistence the seeder needs. It reads roles and resources
// owned by the identity schema and writes rules.
type Store interface {
	// MissingTables returns the names among tables that do not exist.
	MissingTables(ctx context.Context, tables ...string) ([]string, error)

	// RoleID finds a role by normalized name.
	RoleID(ctx context.Context, normalizedName string) (string, bool, error)

	// ResourceIDs lists every resource.
	ResourceIDs(ctx context.Context) ([]int, error)

	// Exists reports whether a rule for the resource and account is stored.
	Exists(ctx context.Context, resourceID int, accountID, accountType string) (bool, error)

	// Insert stores a rule.
	Insert(ctx context.Context, rule Rule) error
}
