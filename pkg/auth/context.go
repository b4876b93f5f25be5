package auth

import (
	"context"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
)

// accountKey is a private type for the account context key.
type accountKey struct{}

// tokenKey is a private type for the raw-token context key.
type tokenKey struct{}

// SetAccount stores the authenticated account in the context.
func SetAccount(ctx context.Context, acct *api.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

// AccountFromContext retrieves the authenticated account.
// Returns nil if no account is set (unauthenticated request).
func AccountFromContext(ctx context.Context) *api.Account {
	if v, ok := ctx.Value(accountKey{}).(*api.Account); ok {
		return v
	}
	return nil
}

// SetToken stores the raw bearer token the request authenticated with.
// Logout uses it to know which token to revoke.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext retrieves the raw bearer token, or empty string.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}
