package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dtroode/userauth/internal/api/apierror"
	"github.com/dtroode/userauth/internal/api/dto"
	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
)

const maxBodyBytes = 1 << 20

// Validator checks a request against its schema.
type Validator interface {
	Validate(value any) error
}

// Auth handles the /auth endpoints.
type Auth struct {
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

// Register handles POST /auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email,
		"username", req.Username)

	params := req.Params()
	if err := h.validator.Validate(params); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.authService.Register(r.Context(), params)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewAuthResponse(result))
}

// Login handles POST /auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	params := req.Params()
	if err := h.validator.Validate(params); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), params)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewAuthResponse(result))
}

// Refresh handles POST /auth/refresh. The refresh token is the bearer credential.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		WriteError(w, model.ErrMissingToken)
		return
	}

	pair, err := h.authService.RefreshTokens(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewTokenPairResponse(pair))
}

// Me handles GET /auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		WriteError(w, model.ErrMissingToken)
		return
	}

	profile, err := h.authService.GetMe(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewProfileResponse(profile))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apierror.NewBadRequest("request body is empty")
		case errors.As(err, &maxBytesErr):
			return apierror.NewBadRequest("request body is too large")
		default:
			return apierror.NewBadRequest("malformed JSON body")
		}
	}
	return nil
}
