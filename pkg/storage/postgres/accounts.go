package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/storage"
)

// CreateAccount persists a new account. The unique index on email surfaces
// duplicates as storage.ErrConflict.
func (s *Store) CreateAccount(ctx context.Context, acct *api.Account) error {
	tokensJSON, err := json.Marshal(tokensOrEmpty(acct.Tokens))
	if err != nil {
		return fmt.Errorf("marshaling tokens: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, tokens, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, acct.ID, acct.Email, acct.PasswordHash, tokensJSON, acct.CreatedAt)

	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// GetAccountByEmail looks up an account by its unique email.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*api.Account, error) {
	return s.getAccount(ctx, "email = $1", email)
}

// GetAccountByToken looks up the account with the given ID whose tokens
// array contains the exact (purpose, token) pair. The membership check runs
// in the database via JSONB containment, so a revoked token never matches.
func (s *Store) GetAccountByToken(ctx context.Context, id string, purpose api.TokenPurpose, token string) (*api.Account, error) {
	entryJSON, err := json.Marshal([]api.TokenEntry{{Purpose: purpose, Token: token}})
	if err != nil {
		return nil, fmt.Errorf("marshaling token entry: %w", err)
	}
	return s.getAccount(ctx, "id = $1 AND tokens @> $2::jsonb", id, entryJSON)
}

func (s *Store) getAccount(ctx context.Context, where string, args ...any) (*api.Account, error) {
	var acct api.Account
	var tokensJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, tokens, created_at
		FROM accounts
		WHERE `+where,
		args...,
	).Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &tokensJSON, &acct.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	if err := json.Unmarshal(tokensJSON, &acct.Tokens); err != nil {
		return nil, fmt.Errorf("unmarshaling tokens: %w", err)
	}

	return &acct, nil
}

// AppendToken appends a token entry to the account's tokens array in a
// single UPDATE, so concurrent logins from different devices never lose
// each other's entries to a stale read.
func (s *Store) AppendToken(ctx context.Context, id string, purpose api.TokenPurpose, token string) error {
	entryJSON, err := json.Marshal(api.TokenEntry{Purpose: purpose, Token: token})
	if err != nil {
		return fmt.Errorf("marshaling token entry: %w", err)
	}

	result, err := s.pool.Exec(ctx, `
		UPDATE accounts SET tokens = tokens || $2::jsonb WHERE id = $1
	`, id, entryJSON)
	if err != nil {
		return fmt.Errorf("appending token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RemoveToken filters the matching entry out of the tokens array in a
// single UPDATE. Removing an absent entry is not an error.
func (s *Store) RemoveToken(ctx context.Context, id string, purpose api.TokenPurpose, token string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET tokens = COALESCE(
			(SELECT jsonb_agg(e)
			 FROM jsonb_array_elements(tokens) AS e
			 WHERE NOT (e->>'purpose' = $2 AND e->>'token' = $3)),
			'[]'::jsonb
		)
		WHERE id = $1
	`, id, string(purpose), token)
	if err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// tokensOrEmpty avoids serializing a nil slice as JSON null.
func tokensOrEmpty(tokens []api.TokenEntry) []api.TokenEntry {
	if tokens == nil {
		return []api.TokenEntry{}
	}
	return tokens
}
