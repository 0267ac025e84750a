package handler

import (
	"context"

	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
	pb "github.com/dtroode/userauth/internal/proto/userauth/v1"
)

var _ pb.AuthServer = (*Auth)(nil)

// Validator checks a request against its schema.
type Validator interface {
	Validate(value any) error
}

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	pb.UnimplementedAuthServer
	authService    model.AuthService
	validator      Validator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	authService model.AuthService,
	validator Validator,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authService:    authService,
		validator:      validator,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account and returns its first token pair.
func (h *Auth) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing registration request",
		"email", req.GetEmail(),
		"username", req.GetUsername())

	params := registerParams(req)
	if err := h.validator.Validate(params); err != nil {
		return nil, handleError(err)
	}

	result, err := h.authService.Register(ctx, params)
	if err != nil {
		return nil, handleError(err)
	}

	return authResponse(result), nil
}

// Login exchanges credentials for a token pair.
func (h *Auth) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing login request",
		"email", req.GetEmail())

	params := loginParams(req)
	if err := h.validator.Validate(params); err != nil {
		return nil, handleError(err)
	}

	result, err := h.authService.Login(ctx, params)
	if err != nil {
		return nil, handleError(err)
	}

	return authResponse(result), nil
}

// Refresh issues a new pair for the user identified by the refresh token.
func (h *Auth) Refresh(ctx context.Context, _ *pb.RefreshRequest) (*pb.RefreshResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, handleError(model.ErrMissingToken)
	}

	pair, err := h.authService.RefreshTokens(ctx, userID)
	if err != nil {
		return nil, handleError(err)
	}

	h.logger.Debug("Auth handler: token refresh completed",
		"user_id", userID.String())

	return refreshResponse(pair), nil
}

// Me returns the profile of the user identified by the access token.
func (h *Auth) Me(ctx context.Context, _ *pb.MeRequest) (*pb.MeResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, handleError(model.ErrMissingToken)
	}

	profile, err := h.authService.GetMe(ctx, userID)
	if err != nil {
		return nil, handleError(err)
	}

	return meResponse(profile), nil
}
