// Package todo serves the task-list resource. Every operation is scoped by
// the owner identity the auth middleware attached to the request: creation
// stamps the owner, and reads, updates, and deletes match (id, owner)
// jointly, so a todo owned by someone else is indistinguishable from one
// that does not exist.
package todo

import (
	"context"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
)

// Store persists todos. Implementations live in pkg/storage. Lookups take
// the owner ID alongside the todo ID; implementations must never match on
// the todo ID alone.
type Store interface {
	CreateTodo(ctx context.Context, t *api.Todo) error
	GetTodo(ctx context.Context, id, ownerID string) (*api.Todo, error)
	ListTodos(ctx context.Context, ownerID string) ([]*api.Todo, error)
	UpdateTodo(ctx context.Context, t *api.Todo) error
	DeleteTodo(ctx context.Context, id, ownerID string) error
}
