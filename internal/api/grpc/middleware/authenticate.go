package middleware

import (
	"context"
	"strings"

	"github.com/dtroode/userauth/internal/api/apierror"
	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
	"google.golang.org/grpc/metadata"
)

const bearerPrefix = "Bearer "

// Authenticate validates bearer tokens of one kind and injects the subject into context.
type Authenticate struct {
	verifier       model.TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier model.TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// AuthFunc parses the authorization metadata, verifies the token and returns a
// context carrying the token's subject.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	token := bearerToken(ctx)
	if token == "" {
		return nil, apierror.From(model.ErrMissingToken).GRPCStatus().Err()
	}

	payload, err := m.verifier.Verify(token)
	if err != nil {
		m.logger.Debug("Authenticate middleware: token rejected",
			"error", err.Error())
		return nil, apierror.From(err).GRPCStatus().Err()
	}

	return m.contextManager.SetUserIDToContext(ctx, payload.Subject), nil
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}

	header := values[0]
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
