package model

import (
	"context"

	"github.com/google/uuid"
)

// TokenPayload holds the identity claims signed into both token kinds.
type TokenPayload struct {
	Subject uuid.UUID
	Email   string
	Role    Role
}

// TokenPair is an access token and a refresh token derived from one payload.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer signs access/refresh token pairs.
type TokenIssuer interface {
	IssuePair(ctx context.Context, payload TokenPayload) (TokenPair, error)
}

// TokenVerifier validates one kind of token and returns its payload.
// Failures are *InvalidTokenError.
type TokenVerifier interface {
	Verify(token string) (TokenPayload, error)
}
