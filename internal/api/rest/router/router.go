package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dtroode/userauth/internal/api/apierror"
	"github.com/dtroode/userauth/internal/api/rest/handler"
	"github.com/dtroode/userauth/internal/api/rest/middleware"
	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
)

// Router wires the /auth endpoints and their middleware into a mux router.
type Router struct {
	authService    model.AuthService
	validator      handler.Validator
	accessTokens   model.TokenVerifier
	refreshTokens  model.TokenVerifier
	contextManager model.ContextManager
	pinger         handler.Pinger
	logger         *logger.Logger
}

// New creates new HTTP Router instance. /auth/me is authenticated with
// accessTokens, /auth/refresh with refreshTokens.
func New(
	authService model.AuthService,
	validator handler.Validator,
	accessTokens model.TokenVerifier,
	refreshTokens model.TokenVerifier,
	contextManager model.ContextManager,
	pinger handler.Pinger,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		validator:      validator,
		accessTokens:   accessTokens,
		refreshTokens:  refreshTokens,
		contextManager: contextManager,
		pinger:         pinger,
		logger:         logger,
	}
}

// Register builds the HTTP handler.
func (r *Router) Register() http.Handler {
	authHandler := handler.NewAuth(r.authService, r.validator, r.contextManager, r.logger)
	health := handler.NewHealth(r.pinger, r.logger)
	accessAuth := middleware.NewAuthenticate(r.accessTokens, r.contextManager, r.logger)
	refreshAuth := middleware.NewAuthenticate(r.refreshTokens, r.contextManager, r.logger)

	m := mux.NewRouter()
	m.Use(middleware.NewLogging(r.logger).Handle)
	m.NotFoundHandler = http.HandlerFunc(notFound)
	m.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	m.HandleFunc("/healthz", health.Check).Methods(http.MethodGet)

	// Routes stay on the root router: a method mismatch on a subrouter route
	// falls through to 404 instead of MethodNotAllowedHandler.
	m.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	m.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	m.Handle("/auth/refresh", refreshAuth.Handle(http.HandlerFunc(authHandler.Refresh))).Methods(http.MethodPost)
	m.Handle("/auth/me", accessAuth.Handle(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	return m
}

func notFound(w http.ResponseWriter, r *http.Request) {
	handler.WriteError(w, &apierror.APIError{
		HTTPStatus: http.StatusNotFound,
		Reason:     "NOT_FOUND",
		Message:    "Cannot " + r.Method + " " + r.URL.Path,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	handler.WriteError(w, &apierror.APIError{
		HTTPStatus: http.StatusMethodNotAllowed,
		Reason:     "METHOD_NOT_ALLOWED",
		Message:    "Cannot " + r.Method + " " + r.URL.Path,
	})
}
