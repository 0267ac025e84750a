package model

import (
	"context"

	"github.com/google/uuid"
)

// AuthService defines registration, login, refresh and identity lookup.
type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (AuthResult, error)
	Login(ctx context.Context, params LoginParams) (AuthResult, error)
	RefreshTokens(ctx context.Context, userID uuid.UUID) (TokenPair, error)
	GetMe(ctx context.Context, userID uuid.UUID) (Profile, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. Malformed hashes never match.
	Verify(password, hash string) bool
}

// RegisterParams is a registration request. The tags describe its validation schema.
type RegisterParams struct {
	Email     string  `json:"email" jsonschema:"format=email"`
	Username  string  `json:"username" jsonschema:"minLength=3,maxLength=20"`
	Password  string  `json:"password" jsonschema:"minLength=8,maxLength=72"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// LoginParams is a login request.
type LoginParams struct {
	Email    string `json:"email" jsonschema:"format=email"`
	Password string `json:"password" jsonschema:"minLength=1"`
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User         PublicUser
	AccessToken  string
	RefreshToken string
}
