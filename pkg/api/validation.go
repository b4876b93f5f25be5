package api

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MinPasswordLength int
	MaxPasswordLength int
	MaxTodoTextLength int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
// The 72-byte password ceiling is a bcrypt limit; longer inputs would be
// silently truncated by the hash, so they are rejected up front.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MinPasswordLength: 6,
		MaxPasswordLength: 72,
		MaxTodoTextLength: 4096,
	}
}

// emailPattern is intentionally loose: one @, a non-empty local part, and a
// dotted domain. Real validation happens when mail is actually delivered.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRegisterRequest checks a RegisterRequest for validity. It returns
// an *APIError describing the first validation failure, or nil if the
// request is valid.
func ValidateRegisterRequest(req *RegisterRequest, cfg ValidationConfig) *APIError {
	if req.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if !emailPattern.MatchString(req.Email) {
		return NewInvalidRequestError("email", fmt.Sprintf("%q is not a valid email address", req.Email))
	}
	if len(req.Password) < cfg.MinPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", cfg.MinPasswordLength))
	}
	if cfg.MaxPasswordLength > 0 && len(req.Password) > cfg.MaxPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at most %d bytes", cfg.MaxPasswordLength))
	}
	return nil
}

// ValidateLoginRequest checks a LoginRequest for shape only. It never
// reveals anything about registered accounts.
func ValidateLoginRequest(req *LoginRequest) *APIError {
	if req.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if req.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	return nil
}

// ValidateTodoText checks todo text for creation and updates.
func ValidateTodoText(text string, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(text) == "" {
		return NewInvalidRequestError("text", "text is required")
	}
	if cfg.MaxTodoTextLength > 0 && len(text) > cfg.MaxTodoTextLength {
		return NewInvalidRequestError("text",
			fmt.Sprintf("text exceeds maximum of %d bytes", cfg.MaxTodoTextLength))
	}
	return nil
}
