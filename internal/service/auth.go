package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
)

var _ model.AuthService = (*Auth)(nil)

// Auth implements registration, login, token refresh and identity lookup.
type Auth struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	issuer    model.TokenIssuer
	logger    *logger.Logger

	// decoyHash is verified against when login finds no usable hash, so unknown
	// accounts cost the same bcrypt work as known ones.
	decoyHash string
}

// NewAuth creates Auth. It hashes a random decoy password with hasher, so
// construction takes one hash's worth of time.
func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	issuer model.TokenIssuer,
	logger *logger.Logger,
) (*Auth, error) {
	decoyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare decoy hash: %w", err)
	}

	return &Auth{
		userStore: userStore,
		hasher:    hasher,
		issuer:    issuer,
		logger:    logger,
		decoyHash: decoyHash,
	}, nil
}

func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.AuthResult, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email,
		"username", params.Username)

	existing, err := a.userStore.FindByEmailOrUsername(ctx, params.Email, params.Username)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to look up existing user",
			"email", params.Email,
			"username", params.Username,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to find user by email or username: %w", err)
	}
	if err == nil {
		conflict := &model.ConflictError{Field: model.ConflictUsername}
		if existing.Email == params.Email {
			conflict.Field = model.ConflictEmail
		}
		a.logger.Info("Auth service: registration conflict",
			"field", string(conflict.Field))
		return model.AuthResult{}, conflict
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: &hash,
		Role:         model.RoleUser,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
	}

	// Tokens are signed before the insert so a signing failure leaves no account behind.
	pair, err := a.issuer.IssuePair(ctx, payloadOf(user))
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	created, err := a.userStore.Create(ctx, user)
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		a.logger.Info("Auth service: registration lost email race", "email", params.Email)
		return model.AuthResult{}, &model.ConflictError{Field: model.ConflictEmail}
	case errors.Is(err, model.ErrUsernameTaken):
		a.logger.Info("Auth service: registration lost username race", "username", params.Username)
		return model.AuthResult{}, &model.ConflictError{Field: model.ConflictUsername}
	case err != nil:
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", created.ID.String())

	return model.AuthResult{
		User:         created.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.AuthResult, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", params.Email)

	user, err := a.userStore.FindByEmail(ctx, params.Email)
	found := err == nil
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash := a.decoyHash
	if found && user.HasPassword() {
		hash = *user.PasswordHash
	}
	valid := a.hasher.Verify(params.Password, hash)

	if !found || !user.HasPassword() || !valid {
		a.logger.Info("Auth service: login rejected",
			"email", params.Email)
		return model.AuthResult{}, &model.UnauthorizedError{Message: model.MsgInvalidCredentials}
	}

	pair, err := a.issuer.IssuePair(ctx, payloadOf(user))
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID.String(),
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID.String())

	return model.AuthResult{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RefreshTokens issues a fresh pair for a user whose refresh token the caller
// has already verified.
func (a *Auth) RefreshTokens(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	pair, err := a.issuer.IssuePair(ctx, payloadOf(user))
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", userID.String(),
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Debug("Auth service: tokens refreshed",
		"user_id", userID.String())

	return pair, nil
}

func (a *Auth) GetMe(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	return user.Profile(), nil
}

func (a *Auth) findUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.FindByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: user not found",
			"user_id", userID.String())
		return model.User{}, &model.UnauthorizedError{Message: model.MsgUserNotFound}
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", userID.String(),
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func payloadOf(user model.User) model.TokenPayload {
	return model.TokenPayload{
		Subject: user.ID,
		Email:   user.Email,
		Role:    user.Role,
	}
}
