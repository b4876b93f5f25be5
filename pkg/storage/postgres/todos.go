package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/storage"
)

// CreateTodo persists a new todo.
func (s *Store) CreateTodo(ctx context.Context, t *api.Todo) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO todos (id, owner_id, text, completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.OwnerID, t.Text, t.Completed, t.CompletedAt, t.CreatedAt)

	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting todo: %w", err)
	}
	return nil
}

// GetTodo retrieves a todo by (id, ownerID) jointly. A todo owned by
// someone else is reported as not found.
func (s *Store) GetTodo(ctx context.Context, id, ownerID string) (*api.Todo, error) {
	var t api.Todo
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, text, completed, completed_at, created_at
		FROM todos
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying todo: %w", err)
	}
	return &t, nil
}

// ListTodos returns all todos owned by ownerID, oldest first.
func (s *Store) ListTodos(ctx context.Context, ownerID string) ([]*api.Todo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, text, completed, completed_at, created_at
		FROM todos
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var out []*api.Todo
	for rows.Next() {
		var t api.Todo
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return out, nil
}

// UpdateTodo replaces the stored todo matching (ID, OwnerID).
func (s *Store) UpdateTodo(ctx context.Context, t *api.Todo) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE todos
		SET text = $3, completed = $4, completed_at = $5
		WHERE id = $1 AND owner_id = $2
	`, t.ID, t.OwnerID, t.Text, t.Completed, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTodo removes the todo matching (id, ownerID).
func (s *Store) DeleteTodo(ctx context.Context, id, ownerID string) error {
	result, err := s.pool.Exec(ctx, `
		DELETE FROM todos WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
