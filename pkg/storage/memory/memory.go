// Package memory provides an in-memory implementation of the account and
// todo stores for testing and lightweight deployments. Data is lost when
// the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/storage"
)

// Store is an in-memory AccountStore and todo Store. All operations are
// guarded by a single mutex, which makes token-list append and remove
// atomic with respect to concurrent logins and logouts.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*api.Account // keyed by account ID
	byEmail  map[string]string       // email -> account ID
	todos    map[string]*api.Todo    // keyed by todo ID
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*api.Account),
		byEmail:  make(map[string]string),
		todos:    make(map[string]*api.Todo),
	}
}

// CreateAccount persists a new account. Returns storage.ErrConflict if the
// email is already registered.
func (s *Store) CreateAccount(_ context.Context, acct *api.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[acct.Email]; exists {
		return storage.ErrConflict
	}
	if _, exists := s.accounts[acct.ID]; exists {
		return storage.ErrConflict
	}

	s.accounts[acct.ID] = cloneAccount(acct)
	s.byEmail[acct.Email] = acct.ID
	return nil
}

// GetAccountByEmail looks up an account by its unique email.
func (s *Store) GetAccountByEmail(_ context.Context, email string) (*api.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

// GetAccountByToken looks up the account with the given ID whose token list
// contains the exact (purpose, token) pair.
func (s *Store) GetAccountByToken(_ context.Context, id string, purpose api.TokenPurpose, token string) (*api.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok || !acct.HasToken(purpose, token) {
		return nil, storage.ErrNotFound
	}
	return cloneAccount(acct), nil
}

// AppendToken appends a token entry to the account's list. The mutation
// happens under the store lock against the stored account, never against
// a caller-held stale copy.
func (s *Store) AppendToken(_ context.Context, id string, purpose api.TokenPurpose, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	acct.Tokens = append(acct.Tokens, api.TokenEntry{Purpose: purpose, Token: token})
	return nil
}

// RemoveToken removes the matching entry from the account's list.
// Removing an absent entry is not an error.
func (s *Store) RemoveToken(_ context.Context, id string, purpose api.TokenPurpose, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}

	kept := acct.Tokens[:0]
	for _, e := range acct.Tokens {
		if e.Purpose == purpose && e.Token == token {
			continue
		}
		kept = append(kept, e)
	}
	acct.Tokens = kept
	return nil
}

// CreateTodo persists a new todo.
func (s *Store) CreateTodo(_ context.Context, t *api.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.todos[t.ID]; exists {
		return storage.ErrConflict
	}
	s.todos[t.ID] = cloneTodo(t)
	return nil
}

// GetTodo retrieves a todo by (id, ownerID) jointly. A todo owned by
// someone else behaves exactly like a missing one.
func (s *Store) GetTodo(_ context.Context, id, ownerID string) (*api.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	return cloneTodo(t), nil
}

// ListTodos returns all todos owned by ownerID, oldest first.
func (s *Store) ListTodos(_ context.Context, ownerID string) ([]*api.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Todo
	for _, t := range s.todos {
		if t.OwnerID == ownerID {
			out = append(out, cloneTodo(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateTodo replaces the stored todo matching (ID, OwnerID).
func (s *Store) UpdateTodo(_ context.Context, t *api.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.todos[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return storage.ErrNotFound
	}
	s.todos[t.ID] = cloneTodo(t)
	return nil
}

// DeleteTodo removes the todo matching (id, ownerID).
func (s *Store) DeleteTodo(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func cloneAccount(a *api.Account) *api.Account {
	c := *a
	c.Tokens = append([]api.TokenEntry(nil), a.Tokens...)
	return &c
}

func cloneTodo(t *api.Todo) *api.Todo {
	c := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}
