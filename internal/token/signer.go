package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/userauth/internal/model"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrEmptySecret  = errors.New("token secret is empty")
	ErrInvalidTTL   = errors.New("token ttl must be positive")
	ErrUnknownKind  = errors.New("unknown token kind")
	ErrEmptySubject = errors.New("token subject is empty")
)

// Claims represents JWT claims shared by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	TokenType Kind       `json:"typ"`
}

var _ model.TokenVerifier = (*Signer)(nil)

// Signer signs and verifies one kind of token with its own HMAC secret and lifetime.
type Signer struct {
	kind   Kind
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewSigner creates a Signer. An empty issuer disables the iss claim check.
func NewSigner(kind Kind, secret string, ttl time.Duration, issuer string) (*Signer, error) {
	if kind != KindAccess && kind != KindRefresh {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if secret == "" {
		return nil, fmt.Errorf("%s: %w", kind, ErrEmptySecret)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%s: %w", kind, ErrInvalidTTL)
	}

	return &Signer{
		kind:   kind,
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Kind returns the token kind this signer handles.
func (s *Signer) Kind() Kind {
	return s.kind
}

// TTL returns the lifetime of issued tokens.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign issues a token carrying payload.
func (s *Signer) Sign(payload model.TokenPayload) (string, error) {
	if payload.Subject == uuid.Nil {
		return "", ErrEmptySubject
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.Subject.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:     payload.Email,
		Role:      payload.Role,
		TokenType: s.kind,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", s.kind, err)
	}

	return tokenString, nil
}

// Verify checks signature, expiry and kind, and returns the signed payload.
func (s *Signer) Verify(tokenString string) (model.TokenPayload, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return model.TokenPayload{}, &model.InvalidTokenError{Reason: classify(err), Err: err}
	}

	if claims.TokenType != s.kind {
		return model.TokenPayload{}, &model.InvalidTokenError{
			Reason: model.TokenWrongType,
			Err:    fmt.Errorf("expected %s token, got %q", s.kind, claims.TokenType),
		}
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil || subject == uuid.Nil {
		return model.TokenPayload{}, &model.InvalidTokenError{
			Reason: model.TokenInvalidClaims,
			Err:    fmt.Errorf("bad subject %q", claims.Subject),
		}
	}

	return model.TokenPayload{
		Subject: subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

// classify maps parser errors onto failure reasons. The parser checks the
// signature before any claim, so a foreign token reports signature, not expiry.
func classify(err error) model.TokenFailure {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return model.TokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return model.TokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.TokenExpired
	default:
		return model.TokenInvalidClaims
	}
}
