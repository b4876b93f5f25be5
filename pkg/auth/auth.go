package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/storage"
)

// Sentinel errors. All three are terminal for the current request; handlers
// map them to a client-visible rejection without leaking internal cause.
var (
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login for both an unknown email
	// and a wrong password. The two cases are indistinguishable on purpose,
	// so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, forged, and revoked tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)

// AccountStore persists accounts and their token lists. Implementations
// live in pkg/storage; single-document operations are atomic, and
// AppendToken/RemoveToken must mutate the list in place rather than
// overwrite the whole account, so concurrent logins on different devices
// do not clobber each other's entries.
type AccountStore interface {
	// CreateAccount persists a new account. Returns storage.ErrConflict
	// if the email is already registered.
	CreateAccount(ctx context.Context, acct *api.Account) error

	// GetAccountByEmail looks up an account by its unique email.
	// Returns storage.ErrNotFound if no such account exists.
	GetAccountByEmail(ctx context.Context, email string) (*api.Account, error)

	// GetAccountByToken looks up the account with the given ID whose token
	// list contains the exact (purpose, token) pair. Returns
	// storage.ErrNotFound if the account is gone or the pair is absent.
	GetAccountByToken(ctx context.Context, id string, purpose api.TokenPurpose, token string) (*api.Account, error)

	// AppendToken atomically appends a token entry to the account's list.
	AppendToken(ctx context.Context, id string, purpose api.TokenPurpose, token string) error

	// RemoveToken atomically removes the matching entry from the account's
	// list. Removing an absent entry is not an error.
	RemoveToken(ctx context.Context, id string, purpose api.TokenPurpose, token string) error
}

// Service orchestrates credential verification, token issuance, token
// validation, and token revocation against an AccountStore and TokenCodec.
type Service struct {
	store  AccountStore
	hasher *PasswordHasher
	codec  *TokenCodec
}

// NewService wires the auth service from its dependencies.
func NewService(store AccountStore, hasher *PasswordHasher, codec *TokenCodec) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		codec:  codec,
	}
}

// Register creates a new account with a hashed password and issues its
// first access token. Hashing is an explicit step here, not a persistence
// hook. Returns ErrDuplicateEmail if the email is taken.
func (s *Service) Register(ctx context.Context, email, password string) (*api.Account, string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	acct := &api.Account{
		ID:           api.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().Unix(),
	}

	if err := s.store.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("register: %w", err)
	}

	token, err := s.issueToken(ctx, acct)
	if err != nil {
		return nil, "", err
	}
	return acct, token, nil
}

// Login verifies credentials and issues a fresh access token. An unknown
// email and a wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*api.Account, string, error) {
	acct, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, acct.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, acct)
	if err != nil {
		return nil, "", err
	}
	return acct, token, nil
}

// issueToken signs a new access token and appends it to the account's
// token list.
func (s *Service) issueToken(ctx context.Context, acct *api.Account) (string, error) {
	token, err := s.codec.Sign(acct.ID, api.TokenPurposeAccess)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	if err := s.store.AppendToken(ctx, acct.ID, api.TokenPurposeAccess, token); err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}
	acct.Tokens = append(acct.Tokens, api.TokenEntry{Purpose: api.TokenPurposeAccess, Token: token})
	return token, nil
}

// Resolve maps a bearer token back to its account. Two independent checks
// must both pass: the codec verifies the signature, then the store confirms
// the (purpose, token) pair is still in the account's list. A token that
// verifies but has been logged out, or whose account is gone, is invalid.
func (s *Service) Resolve(ctx context.Context, token string) (*api.Account, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	acct, err := s.store.GetAccountByToken(ctx, claims.Subject, claims.Purpose, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return acct, nil
}

// Revoke removes the token from the account's list. Idempotent: revoking
// an already-absent token succeeds.
func (s *Service) Revoke(ctx context.Context, acct *api.Account, token string) error {
	if err := s.store.RemoveToken(ctx, acct.ID, api.TokenPurposeAccess, token); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return nil
}
