package middleware

import (
	"net/http"
	"strings"

	"github.com/dtroode/userauth/internal/api/rest/handler"
	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
)

const bearerPrefix = "Bearer "

// Authenticate validates bearer tokens of one kind and injects the subject into
// the request context.
type Authenticate struct {
	verifier       model.TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier model.TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid token with 401.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			handler.WriteError(w, model.ErrMissingToken)
			return
		}

		payload, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Debug("Authenticate middleware: token rejected",
				"path", r.URL.Path,
				"error", err.Error())
			handler.WriteError(w, err)
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), payload.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
