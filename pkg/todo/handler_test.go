package todo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/auth"
	"github.com/aufgabe-dev/aufgabe/pkg/storage/memory"
)

// newTestHandler returns the todo routes on a fresh in-memory store. Requests
// must carry an account in the context, as the auth middleware would provide.
func newTestHandler(t *testing.T) (*http.ServeMux, *memory.Store) {
	t.Helper()

	store := memory.New()
	mux := http.NewServeMux()
	NewHandler(store).Register(mux)
	return mux, store
}

func testAccount(id string) *api.Account {
	return &api.Account{
		ID:        id,
		Email:     id + "@example.com",
		CreatedAt: time.Now().Unix(),
	}
}

// do issues a request with the given account injected into the context.
func do(t *testing.T, mux *http.ServeMux, acct *api.Account, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	if acct != nil {
		req = req.WithContext(auth.SetAccount(req.Context(), acct))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createTodo(t *testing.T, mux *http.ServeMux, acct *api.Account, text string) *api.Todo {
	t.Helper()

	rec := do(t, mux, acct, "POST", "/v1/todos", `{"text":`+strconvQuote(text)+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var todo api.Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &todo); err != nil {
		t.Fatalf("create: decoding body: %v", err)
	}
	return &todo
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestHandler_Create(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")

	todo := createTodo(t, mux, acct, "buy milk")

	if todo.Text != "buy milk" {
		t.Errorf("Text = %q", todo.Text)
	}
	if todo.Completed {
		t.Error("new todo is completed")
	}
	if todo.CompletedAt != nil {
		t.Error("new todo has CompletedAt set")
	}
	if !api.ValidateTodoID(todo.ID) {
		t.Errorf("malformed todo id %q", todo.ID)
	}
}

func TestHandler_CreateValidation(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"empty text", `{"text":""}`},
		{"whitespace text", `{"text":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, acct, "POST", "/v1/todos", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandler_GetAndList(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")

	created := createTodo(t, mux, acct, "buy milk")

	rec := do(t, mux, acct, "GET", "/v1/todos/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = do(t, mux, acct, "GET", "/v1/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list api.TodoList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("list: decoding body: %v", err)
	}
	if len(list.Todos) != 1 || list.Todos[0].ID != created.ID {
		t.Errorf("list = %+v, want exactly the created todo", list.Todos)
	}
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := do(t, mux, testAccount("acct_alice"), "GET", "/v1/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"todos":[]`) {
		t.Errorf("empty list body = %s, want empty array not null", rec.Body.String())
	}
}

func TestHandler_UpdateText(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")
	created := createTodo(t, mux, acct, "buy milk")

	rec := do(t, mux, acct, "PATCH", "/v1/todos/"+created.ID, `{"text":"buy oat milk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got api.Todo
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Text != "buy oat milk" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Completed {
		t.Error("text-only patch changed Completed")
	}
}

func TestHandler_CompleteStampsTimestamp(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")
	created := createTodo(t, mux, acct, "buy milk")

	rec := do(t, mux, acct, "PATCH", "/v1/todos/"+created.ID, `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got api.Todo
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Completed {
		t.Error("Completed = false")
	}
	if got.CompletedAt == nil {
		t.Fatal("CompletedAt not stamped")
	}

	// Un-completing clears the timestamp again.
	rec = do(t, mux, acct, "PATCH", "/v1/todos/"+created.ID, `{"completed":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Completed {
		t.Error("Completed = true after clearing")
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", *got.CompletedAt)
	}
}

func TestHandler_Delete(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")
	created := createTodo(t, mux, acct, "buy milk")

	rec := do(t, mux, acct, "DELETE", "/v1/todos/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = do(t, mux, acct, "GET", "/v1/todos/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
}

// Another account's todo is indistinguishable from a missing one on every
// route that takes an ID.
func TestHandler_OwnershipScoping(t *testing.T) {
	mux, _ := newTestHandler(t)
	alice := testAccount("acct_alice")
	mallory := testAccount("acct_mallory")

	created := createTodo(t, mux, alice, "private")

	requests := []struct {
		method string
		body   string
	}{
		{"GET", ""},
		{"PATCH", `{"completed":true}`},
		{"DELETE", ""},
	}

	for _, tt := range requests {
		t.Run(tt.method, func(t *testing.T) {
			rec := do(t, mux, mallory, tt.method, "/v1/todos/"+created.ID, tt.body)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
		})
	}

	// The attempts left the todo untouched for its owner.
	rec := do(t, mux, alice, "GET", "/v1/todos/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get: status = %d", rec.Code)
	}
	var got api.Todo
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Text != "private" || got.Completed {
		t.Errorf("todo mutated by foreign request: %+v", got)
	}

	// Mallory's list does not leak it either.
	rec = do(t, mux, mallory, "GET", "/v1/todos", "")
	var list api.TodoList
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Todos) != 0 {
		t.Errorf("foreign list leaked %d todos", len(list.Todos))
	}
}

func TestHandler_MalformedID(t *testing.T) {
	mux, _ := newTestHandler(t)
	acct := testAccount("acct_alice")

	// An ID that cannot exist behaves like a missing one, not a 400.
	rec := do(t, mux, acct, "GET", "/v1/todos/not-a-todo-id", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_NoAccountInContext(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := do(t, mux, nil, "GET", "/v1/todos", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
