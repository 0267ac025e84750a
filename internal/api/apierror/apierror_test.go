package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"

	"github.com/dtroode/userauth/internal/model"
	"github.com/dtroode/userauth/internal/validation"
)

func TestFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		httpStatus int
		grpcCode   codes.Code
		reason     string
		message    string
	}{
		{
			name:       "email conflict",
			err:        &model.ConflictError{Field: model.ConflictEmail},
			httpStatus: http.StatusConflict,
			grpcCode:   codes.AlreadyExists,
			reason:     "EMAIL_TAKEN",
			message:    "Email already in use",
		},
		{
			name:       "username conflict",
			err:        &model.ConflictError{Field: model.ConflictUsername},
			httpStatus: http.StatusConflict,
			grpcCode:   codes.AlreadyExists,
			reason:     "USERNAME_TAKEN",
			message:    "Username already taken",
		},
		{
			name:       "invalid credentials",
			err:        &model.UnauthorizedError{Message: model.MsgInvalidCredentials},
			httpStatus: http.StatusUnauthorized,
			grpcCode:   codes.Unauthenticated,
			reason:     "INVALID_CREDENTIALS",
			message:    "Invalid credentials",
		},
		{
			name:       "user not found",
			err:        fmt.Errorf("wrapped: %w", &model.UnauthorizedError{Message: model.MsgUserNotFound}),
			httpStatus: http.StatusUnauthorized,
			grpcCode:   codes.Unauthenticated,
			reason:     "USER_NOT_FOUND",
			message:    "User not found",
		},
		{
			name:       "expired token",
			err:        &model.InvalidTokenError{Reason: model.TokenExpired, Err: errors.New("exp")},
			httpStatus: http.StatusUnauthorized,
			grpcCode:   codes.Unauthenticated,
			reason:     "TOKEN_EXPIRED",
			message:    "Unauthorized",
		},
		{
			name:       "missing token",
			err:        model.ErrMissingToken,
			httpStatus: http.StatusUnauthorized,
			grpcCode:   codes.Unauthenticated,
			reason:     ReasonMissingToken,
			message:    "Unauthorized",
		},
		{
			name:       "bad request",
			err:        NewBadRequest("malformed JSON body"),
			httpStatus: http.StatusBadRequest,
			grpcCode:   codes.InvalidArgument,
			reason:     ReasonBadRequest,
			message:    "malformed JSON body",
		},
		{
			name:       "internal",
			err:        errors.New("pq: connection refused"),
			httpStatus: http.StatusInternalServerError,
			grpcCode:   codes.Internal,
			reason:     ReasonInternal,
			message:    "Internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := From(tt.err)
			assert.Equal(t, tt.httpStatus, got.HTTPStatus)
			assert.Equal(t, tt.grpcCode, got.GRPCCode)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, []string{tt.message}, got.Messages())
		})
	}
}

func TestFrom_Validation(t *testing.T) {
	t.Parallel()

	err := &validation.Error{Violations: []validation.Violation{
		{Field: "email", Message: "not valid email"},
		{Field: "username", Message: "minLength: got 2, want 3"},
	}}

	got := From(err)
	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	assert.Equal(t, codes.InvalidArgument, got.GRPCCode)
	assert.Equal(t, ReasonValidation, got.Reason)
	assert.Equal(t, []string{"email: not valid email", "username: minLength: got 2, want 3"}, got.Messages())

	st := got.GRPCStatus()
	assert.Equal(t, codes.InvalidArgument, st.Code())

	var (
		info       *errdetails.ErrorInfo
		badRequest *errdetails.BadRequest
	)
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			info = v
		case *errdetails.BadRequest:
			badRequest = v
		}
	}
	require.NotNil(t, info)
	require.NotNil(t, badRequest)
	assert.Equal(t, ReasonValidation, info.GetReason())
	require.Len(t, badRequest.GetFieldViolations(), 2)
	assert.Equal(t, "email", badRequest.GetFieldViolations()[0].GetField())
}

func TestFrom_PasswordTooLong(t *testing.T) {
	t.Parallel()

	got := From(fmt.Errorf("failed to hash password: %w", model.ErrPasswordTooLong))
	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	assert.Equal(t, codes.InvalidArgument, got.GRPCCode)
	assert.Equal(t, ReasonValidation, got.Reason)
	assert.Equal(t, []string{"password: must be at most 72 bytes"}, got.Messages())
}

func TestAPIError_GRPCStatus(t *testing.T) {
	t.Parallel()

	st := From(&model.ConflictError{Field: model.ConflictEmail}).GRPCStatus()
	assert.Equal(t, codes.AlreadyExists, st.Code())
	assert.Equal(t, "Email already in use", st.Message())

	require.Len(t, st.Details(), 1)
	info, ok := st.Details()[0].(*errdetails.ErrorInfo)
	require.True(t, ok)
	assert.Equal(t, "EMAIL_TAKEN", info.GetReason())
	assert.Equal(t, Domain, info.GetDomain())
}
