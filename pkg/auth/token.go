package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
)

// Claims are the statements embedded in a signed token: the account the
// token was issued to and what it may be used for. No expiry claim is set;
// revocation happens by removing the token from the account's token list,
// not by waiting out a deadline.
type Claims struct {
	jwtlib.RegisteredClaims
	Purpose api.TokenPurpose `json:"purpose"`
}

// TokenCodec signs and verifies compact bearer tokens with HMAC-SHA256
// over a server-held secret. Verification is purely cryptographic and
// consults no store; callers compose it with a revocation-list check.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec signing with the given secret. The secret
// is an explicit dependency; there is no ambient process-wide signing key.
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret}
}

// Sign produces a signed token carrying the account ID as subject and the
// given purpose. The random jti keeps tokens issued within the same second
// distinct, so each login yields its own independently revocable token.
func (c *TokenCodec) Sign(accountID string, purpose api.TokenPurpose) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:  accountID,
			IssuedAt: jwtlib.NewNumericDate(time.Now()),
			ID:       newTokenID(),
		},
		Purpose: purpose,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and encoding and returns its claims.
// Any failure (malformed encoding, wrong signing method, bad signature,
// missing subject) yields ErrInvalidToken.
func (c *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// newTokenID generates a random jti claim value.
func newTokenID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
