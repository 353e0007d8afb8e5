package check

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: the token or id does not resolve to a record.
	ErrNotFound = errors.New("check not found")
	// ErrConflict: a unique constraint (token) was violated on create.
	ErrConflict = errors.New("check conflict")
)

// Repo is the durable check store. Implementations must provide per-record
// linearizability: UpdateByToken and UpdateByID run the mutation closure
// against the current row inside a single transaction (row-locked or
// otherwise serialized), so concurrent pings, evaluations, and admin calls
// on the same token never interleave partially.
type Repo interface {
	Create(ctx context.Context, c *Check) error
	GetByToken(ctx context.Context, token string) (*Check, error)
	GetByID(ctx context.Context, id int64) (*Check, error)

	// List returns every check. ListActive excludes maintenance checks at
	// the query level. ListPage returns a page plus the total count.
	List(ctx context.Context) ([]*Check, error)
	ListActive(ctx context.Context) ([]*Check, error)
	ListPage(ctx context.Context, limit, offset int) ([]*Check, int, error)

	// UpdateByToken loads the check for token, calls fn with it, and writes
	// the (possibly mutated) record back iff fn returns true. The whole
	// read-decide-write runs as one transaction. The returned check reflects
	// the post-transaction state whether or not a write happened.
	UpdateByToken(ctx context.Context, token string, fn Mutator) (*Check, error)
	UpdateByID(ctx context.Context, id int64, fn Mutator) (*Check, error)

	// Delete removes the check and returns the removed record, so callers
	// can tear down per-check metrics.
	Delete(ctx context.Context, token string) (*Check, error)
}

// Mutator mutates a check in place and reports whether the change should be
// persisted. Returning false makes the update a read-only no-op.
type Mutator func(c *Check) (write bool, err error)

// Events receives a status-change side effect after a transition commits.
type Events interface {
	StatusChanged(ctx context.Context, c *Check, old Status) error
}

// StatusSink is the metrics collaborator: it mirrors check state into the
// metrics registry on every mutation and drops it on deletion.
type StatusSink interface {
	UpdateStatus(c *Check)
	RemoveStatus(c *Check)
}
