package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/storage"
)

func testAccount(id, email string) *api.Account {
	return &api.Account{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$04$fakehash",
		CreatedAt:    time.Now().Unix(),
	}
}

func testTodo(id, ownerID, text string) *api.Todo {
	return &api.Todo{
		ID:        id,
		Text:      text,
		OwnerID:   ownerID,
		CreatedAt: time.Now().Unix(),
	}
}

func TestStore_CreateAccount(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateAccount(ctx, testAccount("acct_1", "a@x.com")); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	got, err := s.GetAccountByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if got.ID != "acct_1" {
		t.Errorf("ID = %q, want acct_1", got.ID)
	}

	err = s.CreateAccount(ctx, testAccount("acct_2", "a@x.com"))
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}
}

func TestStore_GetAccountByEmail_NotFound(t *testing.T) {
	s := New()
	_, err := s.GetAccountByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_TokenLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateAccount(ctx, testAccount("acct_1", "a@x.com")); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if err := s.AppendToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-1"); err != nil {
		t.Fatalf("AppendToken: %v", err)
	}
	if err := s.AppendToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-2"); err != nil {
		t.Fatalf("AppendToken: %v", err)
	}

	got, err := s.GetAccountByToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-1")
	if err != nil {
		t.Fatalf("GetAccountByToken: %v", err)
	}
	if len(got.Tokens) != 2 {
		t.Errorf("len(Tokens) = %d, want 2", len(got.Tokens))
	}

	if err := s.RemoveToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-1"); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if _, err := s.GetAccountByToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("removed token lookup: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetAccountByToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-2"); err != nil {
		t.Errorf("surviving token lookup: %v", err)
	}

	// Removing an absent entry is not an error.
	if err := s.RemoveToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-1"); err != nil {
		t.Errorf("re-remove: %v", err)
	}
}

func TestStore_GetAccountByToken_WrongPurpose(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.CreateAccount(ctx, testAccount("acct_1", "a@x.com"))
	s.AppendToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-1")

	_, err := s.GetAccountByToken(ctx, "acct_1", api.TokenPurpose("refresh"), "tok-1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// Token appends against a stale caller-held copy must not lose entries.
func TestStore_AppendToken_Concurrent(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateAccount(ctx, testAccount("acct_1", "a@x.com"))

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AppendToken(ctx, "acct_1", api.TokenPurposeAccess, "tok-"+string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	got, err := s.GetAccountByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if len(got.Tokens) != n {
		t.Errorf("len(Tokens) = %d, want %d", len(got.Tokens), n)
	}
}

func TestStore_CloneIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	acct := testAccount("acct_1", "a@x.com")
	s.CreateAccount(ctx, acct)

	// Mutating the caller's copy must not touch the stored account.
	acct.Tokens = append(acct.Tokens, api.TokenEntry{Purpose: api.TokenPurposeAccess, Token: "smuggled"})

	got, _ := s.GetAccountByEmail(ctx, "a@x.com")
	if len(got.Tokens) != 0 {
		t.Errorf("stored account picked up caller mutation: %v", got.Tokens)
	}

	// And mutating a returned copy must not either.
	got.Tokens = append(got.Tokens, api.TokenEntry{Purpose: api.TokenPurposeAccess, Token: "smuggled"})
	again, _ := s.GetAccountByEmail(ctx, "a@x.com")
	if len(again.Tokens) != 0 {
		t.Errorf("stored account picked up returned-copy mutation: %v", again.Tokens)
	}
}

func TestStore_TodoCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateTodo(ctx, testTodo("todo_1", "acct_1", "buy milk")); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	got, err := s.GetTodo(ctx, "todo_1", "acct_1")
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if got.Text != "buy milk" {
		t.Errorf("Text = %q", got.Text)
	}

	now := time.Now().Unix()
	got.Text = "buy oat milk"
	got.Completed = true
	got.CompletedAt = &now
	if err := s.UpdateTodo(ctx, got); err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}

	updated, err := s.GetTodo(ctx, "todo_1", "acct_1")
	if err != nil {
		t.Fatalf("GetTodo after update: %v", err)
	}
	if updated.Text != "buy oat milk" || !updated.Completed || updated.CompletedAt == nil {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := s.DeleteTodo(ctx, "todo_1", "acct_1"); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if _, err := s.GetTodo(ctx, "todo_1", "acct_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted todo lookup: err = %v, want ErrNotFound", err)
	}
}

// Another account's todo must be indistinguishable from a missing one for
// every scoped operation.
func TestStore_TodoOwnershipScoping(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.CreateTodo(ctx, testTodo("todo_1", "acct_a", "private"))

	if _, err := s.GetTodo(ctx, "todo_1", "acct_b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTodo as non-owner: err = %v, want ErrNotFound", err)
	}

	stolen := testTodo("todo_1", "acct_b", "hijacked")
	if err := s.UpdateTodo(ctx, stolen); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateTodo as non-owner: err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteTodo(ctx, "todo_1", "acct_b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteTodo as non-owner: err = %v, want ErrNotFound", err)
	}

	// Owner still sees it untouched.
	got, err := s.GetTodo(ctx, "todo_1", "acct_a")
	if err != nil {
		t.Fatalf("GetTodo as owner: %v", err)
	}
	if got.Text != "private" {
		t.Errorf("Text = %q, want private", got.Text)
	}
}

func TestStore_ListTodos(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := testTodo("todo_a", "acct_1", "first")
	a.CreatedAt = 100
	b := testTodo("todo_b", "acct_1", "second")
	b.CreatedAt = 200
	other := testTodo("todo_c", "acct_2", "not mine")

	s.CreateTodo(ctx, b)
	s.CreateTodo(ctx, a)
	s.CreateTodo(ctx, other)

	got, err := s.ListTodos(ctx, "acct_1")
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "todo_a" || got[1].ID != "todo_b" {
		t.Errorf("order = %s, %s, want todo_a, todo_b", got[0].ID, got[1].ID)
	}

	empty, err := s.ListTodos(ctx, "acct_nobody")
	if err != nil {
		t.Fatalf("ListTodos empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len = %d, want 0", len(empty))
	}
}
