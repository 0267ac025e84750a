package handler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/userauth/internal/mocks"
	"github.com/dtroode/userauth/internal/model"
	pb "github.com/dtroode/userauth/internal/proto/userauth/v1"
	"github.com/dtroode/userauth/internal/testutil"
	"github.com/dtroode/userauth/internal/validation"
)

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()

	v, err := validation.New(model.RegisterParams{}, model.LoginParams{})
	require.NoError(t, err)
	return v
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()

	st, ok := status.FromError(err)
	require.True(t, ok)
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	validReq := &pb.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "password1"}

	tests := []struct {
		name       string
		req        *pb.RegisterRequest
		setup      func(svc *mocks.AuthService)
		wantCode   codes.Code
		wantReason string
	}{
		{
			name: "success",
			req:  validReq,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, registerParams(validReq)).Return(model.AuthResult{
					User:         model.PublicUser{ID: userID, Email: "a@x.com", Username: "alice", Role: model.RoleUser},
					AccessToken:  "access",
					RefreshToken: "refresh",
				}, nil)
			},
			wantCode: codes.OK,
		},
		{
			name:       "invalid email",
			req:        &pb.RegisterRequest{Email: "not-an-email", Username: "alice", Password: "password1"},
			setup:      func(svc *mocks.AuthService) {},
			wantCode:   codes.InvalidArgument,
			wantReason: "VALIDATION_FAILED",
		},
		{
			name:       "short password",
			req:        &pb.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "short"},
			setup:      func(svc *mocks.AuthService) {},
			wantCode:   codes.InvalidArgument,
			wantReason: "VALIDATION_FAILED",
		},
		{
			name:       "password over 72 characters",
			req:        &pb.RegisterRequest{Email: "a@x.com", Username: "alice", Password: strings.Repeat("a", 73)},
			setup:      func(svc *mocks.AuthService) {},
			wantCode:   codes.InvalidArgument,
			wantReason: "VALIDATION_FAILED",
		},
		{
			name: "password over 72 bytes",
			req:  &pb.RegisterRequest{Email: "a@x.com", Username: "alice", Password: strings.Repeat("é", 40)},
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, mock.Anything).
					Return(model.AuthResult{}, fmt.Errorf("failed to hash password: %w", model.ErrPasswordTooLong))
			},
			wantCode:   codes.InvalidArgument,
			wantReason: "VALIDATION_FAILED",
		},
		{
			name: "email taken",
			req:  validReq,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, mock.Anything).
					Return(model.AuthResult{}, &model.ConflictError{Field: model.ConflictEmail})
			},
			wantCode:   codes.AlreadyExists,
			wantReason: "EMAIL_TAKEN",
		},
		{
			name: "internal error",
			req:  validReq,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, mock.Anything).
					Return(model.AuthResult{}, assert.AnError)
			},
			wantCode:   codes.Internal,
			wantReason: "INTERNAL",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			tt.setup(svc)

			h := NewAuth(svc, newValidator(t), mocks.NewContextManager(t), testutil.MakeNoopLogger())
			out, err := h.Register(context.Background(), tt.req)

			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, userID.String(), out.GetUser().GetId())
				assert.Equal(t, "USER", out.GetUser().GetRole())
				assert.Equal(t, "access", out.AccessToken)
				assert.Equal(t, "refresh", out.RefreshToken)
				return
			}

			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, status.Code(err))
			assert.Equal(t, tt.wantReason, reasonOf(t, err))
			assert.NotContains(t, err.Error(), assert.AnError.Error())
		})
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := mocks.NewAuthService(t)
		svc.On("Login", mock.Anything, model.LoginParams{Email: "a@x.com", Password: "password1"}).
			Return(model.AuthResult{AccessToken: "access", RefreshToken: "refresh"}, nil)

		h := NewAuth(svc, newValidator(t), mocks.NewContextManager(t), testutil.MakeNoopLogger())
		out, err := h.Login(context.Background(), &pb.LoginRequest{Email: "a@x.com", Password: "password1"})
		require.NoError(t, err)
		assert.Equal(t, "access", out.AccessToken)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		t.Parallel()

		svc := mocks.NewAuthService(t)
		svc.On("Login", mock.Anything, mock.Anything).
			Return(model.AuthResult{}, &model.UnauthorizedError{Message: model.MsgInvalidCredentials})

		h := NewAuth(svc, newValidator(t), mocks.NewContextManager(t), testutil.MakeNoopLogger())
		out, err := h.Login(context.Background(), &pb.LoginRequest{Email: "a@x.com", Password: "wrong"})
		assert.Nil(t, out)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, "INVALID_CREDENTIALS", reasonOf(t, err))
		assert.Equal(t, "Invalid credentials", status.Convert(err).Message())
	})

	t.Run("empty password", func(t *testing.T) {
		t.Parallel()

		h := NewAuth(mocks.NewAuthService(t), newValidator(t), mocks.NewContextManager(t), testutil.MakeNoopLogger())
		_, err := h.Login(context.Background(), &pb.LoginRequest{Email: "a@x.com"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestAuth_Refresh(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := mocks.NewAuthService(t)
		cm := mocks.NewContextManager(t)
		cm.On("GetUserIDFromContext", mock.Anything).Return(userID, true)
		svc.On("RefreshTokens", mock.Anything, userID).
			Return(model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)

		h := NewAuth(svc, newValidator(t), cm, testutil.MakeNoopLogger())
		out, err := h.Refresh(context.Background(), &pb.RefreshRequest{})
		require.NoError(t, err)
		assert.Equal(t, "a2", out.GetAccessToken())
		assert.Equal(t, "r2", out.GetRefreshToken())
	})

	t.Run("no user in context", func(t *testing.T) {
		t.Parallel()

		cm := mocks.NewContextManager(t)
		cm.On("GetUserIDFromContext", mock.Anything).Return(uuid.Nil, false)

		h := NewAuth(mocks.NewAuthService(t), newValidator(t), cm, testutil.MakeNoopLogger())
		_, err := h.Refresh(context.Background(), &pb.RefreshRequest{})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, "MISSING_TOKEN", reasonOf(t, err))
	})

	t.Run("user deleted", func(t *testing.T) {
		t.Parallel()

		svc := mocks.NewAuthService(t)
		cm := mocks.NewContextManager(t)
		cm.On("GetUserIDFromContext", mock.Anything).Return(userID, true)
		svc.On("RefreshTokens", mock.Anything, userID).
			Return(model.TokenPair{}, &model.UnauthorizedError{Message: model.MsgUserNotFound})

		h := NewAuth(svc, newValidator(t), cm, testutil.MakeNoopLogger())
		_, err := h.Refresh(context.Background(), &pb.RefreshRequest{})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, "USER_NOT_FOUND", reasonOf(t, err))
	})
}

func TestAuth_Me(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	svc := mocks.NewAuthService(t)
	cm := mocks.NewContextManager(t)
	cm.On("GetUserIDFromContext", mock.Anything).Return(userID, true)
	svc.On("GetMe", mock.Anything, userID).Return(model.Profile{
		ID:        userID,
		Email:     "a@x.com",
		Username:  "alice",
		Role:      model.RoleUser,
		CreatedAt: created,
	}, nil)

	h := NewAuth(svc, newValidator(t), cm, testutil.MakeNoopLogger())
	out, err := h.Me(context.Background(), &pb.MeRequest{})
	require.NoError(t, err)
	assert.Equal(t, userID.String(), out.GetId())
	assert.Nil(t, out.FirstName)
	assert.Nil(t, out.AvatarUrl)
	assert.Equal(t, created, out.GetCreatedAt().AsTime())
}
