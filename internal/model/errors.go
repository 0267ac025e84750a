package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by UserStore.Create on an email uniqueness violation.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUsernameTaken is returned by UserStore.Create on a username uniqueness violation.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing authorization token")
	// ErrPasswordTooLong is returned by PasswordHasher.Hash for input longer than MaxPasswordBytes.
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Messages of UnauthorizedError. Login failures always use MsgInvalidCredentials.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserNotFound       = "User not found"
)

// ConflictField names the unique attribute a registration collided on.
type ConflictField string

const (
	ConflictEmail    ConflictField = "email"
	ConflictUsername ConflictField = "username"
)

// ConflictError reports a registration that collided with an existing account.
type ConflictError struct {
	Field ConflictField
}

func (e *ConflictError) Error() string {
	if e.Field == ConflictEmail {
		return "Email already in use"
	}
	return "Username already taken"
}

// Reason returns a stable machine-readable code.
func (e *ConflictError) Reason() string {
	if e.Field == ConflictEmail {
		return "EMAIL_TAKEN"
	}
	return "USERNAME_TAKEN"
}

// UnauthorizedError reports a request that could not be authenticated.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// Reason returns a stable machine-readable code.
func (e *UnauthorizedError) Reason() string {
	if e.Message == MsgUserNotFound {
		return "USER_NOT_FOUND"
	}
	return "INVALID_CREDENTIALS"
}

// TokenFailure classifies why a token was rejected.
type TokenFailure string

const (
	TokenMalformed        TokenFailure = "malformed"
	TokenSignatureInvalid TokenFailure = "signature"
	TokenExpired          TokenFailure = "expired"
	TokenWrongType        TokenFailure = "wrong_type"
	TokenInvalidClaims    TokenFailure = "invalid_claims"
)

// InvalidTokenError is returned by token verification.
type InvalidTokenError struct {
	Reason TokenFailure
	Err    error
}

func (e *InvalidTokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid token: %s", e.Reason)
	}
	return fmt.Sprintf("invalid token: %s: %v", e.Reason, e.Err)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.Err
}

// Code returns a stable machine-readable code, e.g. TOKEN_EXPIRED.
func (e *InvalidTokenError) Code() string {
	return "TOKEN_" + strings.ToUpper(string(e.Reason))
}
