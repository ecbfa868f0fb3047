package repositories

import (
	"context"
)

// TransactionManager runs work inside one atomic scope. Repositories called with
// the context handed to fn take part in the same scope; a nested call joins the
// outer scope instead of opening a new one.
type TransactionManager interface {
	// WithinTransaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// WithinReadSnapshot runs fn against a read-only, snapshot-consistent view
	// that does not block concurrent writers.
	WithinReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}
