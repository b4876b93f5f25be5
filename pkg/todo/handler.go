package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/auth"
	"github.com/aufgabe-dev/aufgabe/pkg/storage"
	"github.com/aufgabe-dev/aufgabe/pkg/transport"
)

// Handler serves the todo endpoints. All routes sit behind the auth
// middleware; the handler only trusts the account it finds in the context.
type Handler struct {
	store      Store
	validation api.ValidationConfig
}

// NewHandler creates the todo HTTP handler.
func NewHandler(store Store) *Handler {
	return &Handler{
		store:      store,
		validation: api.DefaultValidationConfig(),
	}
}

// Register installs the handler's routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/todos", h.handleCreate)
	mux.HandleFunc("GET /v1/todos", h.handleList)
	mux.HandleFunc("GET /v1/todos/{id}", h.handleGet)
	mux.HandleFunc("PATCH /v1/todos/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /v1/todos/{id}", h.handleDelete)
}

// requireAccount pulls the authenticated account from the context. The auth
// middleware guarantees it is present on these routes; the nil check guards
// against a misconfigured mux.
func requireAccount(w http.ResponseWriter, r *http.Request) *api.Account {
	acct := auth.AccountFromContext(r.Context())
	if acct == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError("authentication required"))
	}
	return acct
}

// handleCreate handles POST /v1/todos. The owner is always the caller;
// there is no way to create a todo for someone else.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	acct := requireAccount(w, r)
	if acct == nil {
		return
	}

	var req api.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return
	}
	if verr := api.ValidateTodoText(req.Text, h.validation); verr != nil {
		transport.WriteAPIError(w, verr)
		return
	}

	t := &api.Todo{
		ID:        api.NewTodoID(),
		Text:      req.Text,
		OwnerID:   acct.ID,
		CreatedAt: time.Now().Unix(),
	}

	if err := h.store.CreateTodo(r.Context(), t); err != nil {
		transport.WriteAPIError(w, api.NewServerError("could not create todo"))
		return
	}

	transport.WriteJSON(w, http.StatusCreated, t)
}

// handleList handles GET /v1/todos, returning only the caller's todos.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	acct := requireAccount(w, r)
	if acct == nil {
		return
	}

	todos, err := h.store.ListTodos(r.Context(), acct.ID)
	if err != nil {
		transport.WriteAPIError(w, api.NewServerError("could not list todos"))
		return
	}
	if todos == nil {
		todos = []*api.Todo{}
	}

	transport.WriteJSON(w, http.StatusOK, api.TodoList{Todos: todos})
}

// handleGet handles GET /v1/todos/{id}.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	acct := requireAccount(w, r)
	if acct == nil {
		return
	}

	id := r.PathValue("id")
	if !api.ValidateTodoID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("todo not found"))
		return
	}

	t, err := h.store.GetTodo(r.Context(), id, acct.ID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, t)
}

// handleUpdate handles PATCH /v1/todos/{id}. Completing a todo stamps
// CompletedAt; un-completing clears it.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	acct := requireAccount(w, r)
	if acct == nil {
		return
	}

	id := r.PathValue("id")
	if !api.ValidateTodoID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("todo not found"))
		return
	}

	var req api.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return
	}

	t, err := h.store.GetTodo(r.Context(), id, acct.ID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	if req.Text != nil {
		if verr := api.ValidateTodoText(*req.Text, h.validation); verr != nil {
			transport.WriteAPIError(w, verr)
			return
		}
		t.Text = *req.Text
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
		if t.Completed {
			now := time.Now().Unix()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}

	if err := h.store.UpdateTodo(r.Context(), t); err != nil {
		h.writeStoreError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, t)
}

// handleDelete handles DELETE /v1/todos/{id}.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	acct := requireAccount(w, r)
	if acct == nil {
		return
	}

	id := r.PathValue("id")
	if !api.ValidateTodoID(id) {
		transport.WriteAPIError(w, api.NewNotFoundError("todo not found"))
		return
	}

	if err := h.store.DeleteTodo(r.Context(), id, acct.ID); err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		transport.WriteAPIError(w, api.NewNotFoundError("todo not found"))
		return
	}
	transport.WriteAPIError(w, api.NewServerError("storage failure"))
}
