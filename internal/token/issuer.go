// Package token issues and verifies the two JWT kinds used by the service.
//
// Access and refresh tokens carry the same claims but are signed with distinct
// secrets and lifetimes, so a leaked key of one kind cannot forge the other.
package token

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dtroode/userauth/internal/model"
)

// ErrSharedSecret is returned when both token kinds are configured with one secret.
var ErrSharedSecret = errors.New("access and refresh tokens must use distinct secrets")

// Config holds signing parameters for both token kinds.
type Config struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	Issuer        string
}

var _ model.TokenIssuer = (*Issuer)(nil)

// Issuer issues and verifies access/refresh token pairs.
type Issuer struct {
	access  *Signer
	refresh *Signer
}

// NewIssuer creates an Issuer from cfg.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret != "" && cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSharedSecret
	}

	access, err := NewSigner(KindAccess, cfg.AccessSecret, cfg.AccessTTL, cfg.Issuer)
	if err != nil {
		return nil, err
	}
	refresh, err := NewSigner(KindRefresh, cfg.RefreshSecret, cfg.RefreshTTL, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return &Issuer{access: access, refresh: refresh}, nil
}

// Access returns the access token signer, usable as a verifier by middleware.
func (i *Issuer) Access() *Signer {
	return i.access
}

// Refresh returns the refresh token signer.
func (i *Issuer) Refresh() *Signer {
	return i.refresh
}

// IssueAccessToken signs a short-lived access token.
func (i *Issuer) IssueAccessToken(payload model.TokenPayload) (string, error) {
	return i.access.Sign(payload)
}

// IssueRefreshToken signs a long-lived refresh token.
func (i *Issuer) IssueRefreshToken(payload model.TokenPayload) (string, error) {
	return i.refresh.Sign(payload)
}

// IssuePair signs both tokens concurrently. Either failure fails the pair.
func (i *Issuer) IssuePair(ctx context.Context, payload model.TokenPayload) (model.TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return model.TokenPair{}, err
	}

	var (
		pair model.TokenPair
		g    errgroup.Group
	)
	g.Go(func() error {
		token, err := i.access.Sign(payload)
		pair.AccessToken = token
		return err
	})
	g.Go(func() error {
		token, err := i.refresh.Sign(payload)
		pair.RefreshToken = token
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TokenPair{}, err
	}

	return pair, nil
}

// VerifyAccessToken validates an access token.
func (i *Issuer) VerifyAccessToken(token string) (model.TokenPayload, error) {
	return i.access.Verify(token)
}

// VerifyRefreshToken validates a refresh token.
func (i *Issuer) VerifyRefreshToken(token string) (model.TokenPayload, error) {
	return i.refresh.Verify(token)
}
