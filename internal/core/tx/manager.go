// Package tx defines the transaction boundary used by repositories that need
// several statements to commit or roll back together.
package tx

import (
	"context"
)

// Manager runs fn inside a transaction. An error from fn rolls the transaction
// back; otherwise it commits. Nested calls join the transaction already in ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions, used where
// several reads must observe one snapshot.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
