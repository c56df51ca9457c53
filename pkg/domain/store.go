package domain

import "context"

// AppendFunc mutates the container within a serialized append operation.
type AppendFunc func(*Container) (Result, error)

// PersistentStore is the contract every container store satisfies. At most
// one append sequence may be in flight at a time per store; implementations
// serialize internally. An append that returns an error leaves the
// in-memory container in a caller-visible failed state (entities committed
// earlier in the same call remain committed); persistent implementations
// snapshot only after success, so discarding and reopening recovers the
// last good state.
type PersistentStore interface {
	// Append runs fn against the live container under the store lock.
	Append(ctx context.Context, fn AppendFunc) (Result, error)
	// View runs fn against a deep copy of the container.
	View(ctx context.Context, fn func(*Container) error) error
	// Close releases any underlying resources.
	Close() error
}
