// Package middleware wraps a KVStore with cross-cutting persistence behavior
// such as encryption at rest and PII masking.
package middleware

import "github.com/formworks/bindery/pkg/ports"

// Middleware allows wrapping a KVStore to add behavior.
type Middleware func(ports.KVStore) ports.KVStore

// Chain applies the middlewares to the store, first middleware outermost.
func Chain(store ports.KVStore, mws ...Middleware) ports.KVStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
