// Package storage provides utilities shared across storage adapter
// implementations, including the sentinel errors.
//
// Storage adapters (memory, postgres) implement the auth.AccountStore and
// todo.Store interfaces defined next to their consumers. This package
// contains only shared types, not the interfaces themselves.
package storage
