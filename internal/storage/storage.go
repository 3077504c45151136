// Package storage provides the persistent key-value layer that carts, orders
// and client identities are stored in. Values are serialized text records;
// callers own the serialization format.
package storage

import "context"

// UpdateFunc computes the next value for a key from its current state.
// Returning an error aborts the update without writing; the error is
// propagated to the caller unchanged.
type UpdateFunc func(current string, exists bool) (next string, err error)

// Store is the contract every backend implements. Update is an atomic
// read-modify-write: concurrent writers cannot silently overwrite each
// other's changes (the lost-update hazard of naive read-then-write).
type Store interface {
	Get(ctx context.Context, key string) (value string, exists bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
