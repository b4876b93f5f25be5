package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	accountIDPrefix = "acct_"
	todoIDPrefix    = "todo_"
)

var (
	accountIDPattern = regexp.MustCompile(`^acct_[a-zA-Z0-9]{24}$`)
	todoIDPattern    = regexp.MustCompile(`^todo_[a-zA-Z0-9]{24}$`)
)

// NewAccountID generates a new account ID with the "acct_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewAccountID() string {
	return accountIDPrefix + randomAlphanumeric(idLength)
}

// NewTodoID generates a new todo ID with the "todo_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewTodoID() string {
	return todoIDPrefix + randomAlphanumeric(idLength)
}

// ValidateAccountID checks whether the given string is a valid account ID
// (matches "acct_" + 24 alphanumeric characters).
func ValidateAccountID(id string) bool {
	return accountIDPattern.MatchString(id)
}

// ValidateTodoID checks whether the given string is a valid todo ID
// (matches "todo_" + 24 alphanumeric characters).
func ValidateTodoID(id string) bool {
	return todoIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
