package api

// TokenPurpose identifies what an issued token may be used for.
// "access" is currently the only purpose issued.
type TokenPurpose string

const (
	// TokenPurposeAccess marks a regular bearer token issued by login
	// or registration.
	TokenPurposeAccess TokenPurpose = "access"
)

// TokenEntry is one currently-valid issued token. The pair (Purpose, Token)
// is the unit of revocation: logout removes exactly one entry.
type TokenEntry struct {
	Purpose TokenPurpose `json:"purpose"`
	Token   string       `json:"token"`
}

// Account is a registered user. PasswordHash and Tokens are never
// serialized in API responses.
//
// The Tokens list is the authority on token validity: a token absent from
// the list is invalid even if its signature verifies. This is what makes
// server-side revocation possible for otherwise self-contained tokens.
type Account struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Tokens       []TokenEntry `json:"-"`
	CreatedAt    int64        `json:"created_at"`
}

// HasToken reports whether the account's token list contains the exact
// (purpose, token) pair.
func (a *Account) HasToken(purpose TokenPurpose, token string) bool {
	for _, e := range a.Tokens {
		if e.Purpose == purpose && e.Token == token {
			return true
		}
	}
	return false
}

// Todo is a task owned by a single account. OwnerID is set at creation
// and never reassigned; every store operation on a todo is scoped by it.
type Todo struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completed_at"`
	OwnerID     string `json:"-"`
	CreatedAt   int64  `json:"created_at"`
}

// RegisterRequest is the body of POST /v1/accounts.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTodoRequest is the body of POST /v1/todos.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest is the body of PATCH /v1/todos/{id}. Nil fields are
// left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// TodoList wraps the todos collection response.
type TodoList struct {
	Todos []*Todo `json:"todos"`
}
