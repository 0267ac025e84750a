package router

import (
	"context"

	"github.com/dtroode/userauth/internal/api/grpc/handler"
	"github.com/dtroode/userauth/internal/api/grpc/middleware"
	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
	pb "github.com/dtroode/userauth/internal/proto/userauth/v1"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
)

// Router wires the userauth.v1.Auth service and its interceptors into a gRPC server.
type Router struct {
	authService    model.AuthService
	validator      handler.Validator
	accessTokens   model.TokenVerifier
	refreshTokens  model.TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance. Me is authenticated with accessTokens,
// Refresh with refreshTokens.
func New(
	authService model.AuthService,
	validator handler.Validator,
	accessTokens model.TokenVerifier,
	refreshTokens model.TokenVerifier,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		validator:      validator,
		accessTokens:   accessTokens,
		refreshTokens:  refreshTokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

func onlyMethod(fullMethod string) selector.Matcher {
	return selector.MatchFunc(func(_ context.Context, c interceptors.CallMeta) bool {
		return c.FullMethod() == fullMethod
	})
}

// Register builds the gRPC server with request logging and per-method
// authentication interceptors.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	accessAuth := middleware.NewAuthenticate(r.accessTokens, r.contextManager, r.logger)
	refreshAuth := middleware.NewAuthenticate(r.refreshTokens, r.contextManager, r.logger)

	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(accessAuth.AuthFunc),
				onlyMethod(pb.Auth_Me_FullMethodName),
			),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(refreshAuth.AuthFunc),
				onlyMethod(pb.Auth_Refresh_FullMethodName),
			),
		),
	)

	s := grpc.NewServer(opts...)
	pb.RegisterAuthServer(s, handler.NewAuth(r.authService, r.validator, r.contextManager, r.logger))

	return s
}
