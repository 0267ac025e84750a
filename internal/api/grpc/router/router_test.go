package router

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"

	grpcctx "github.com/dtroode/userauth/internal/api/grpc/context"
	"github.com/dtroode/userauth/internal/model"
	"github.com/dtroode/userauth/internal/password"
	pb "github.com/dtroode/userauth/internal/proto/userauth/v1"
	"github.com/dtroode/userauth/internal/repository/sqlite"
	"github.com/dtroode/userauth/internal/service"
	"github.com/dtroode/userauth/internal/testutil"
	"github.com/dtroode/userauth/internal/token"
	"github.com/dtroode/userauth/internal/validation"
)

func newClient(t *testing.T) pb.AuthClient {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
		Issuer:        "userauth-test",
	})
	require.NoError(t, err)
	lg := testutil.MakeNoopLogger()

	authService, err := service.NewAuth(sqlite.NewUserRepository(store), hasher, issuer, lg)
	require.NoError(t, err)
	validator, err := validation.New(model.RegisterParams{}, model.LoginParams{})
	require.NoError(t, err)

	s := New(authService, validator, issuer.Access(), issuer.Refresh(), grpcctx.NewManager(), lg).Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewAuthClient(conn)
}

func withBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func requireReason(t *testing.T, err error, code codes.Code, reason string) {
	t.Helper()

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, code, st.Code())
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			assert.Equal(t, reason, info.GetReason())
			return
		}
	}
	t.Fatalf("status %v has no ErrorInfo", st)
}

func TestRouter_AuthFlow(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	registered, err := client.Register(ctx, &pb.RegisterRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.GetUser().GetUsername())
	assert.Equal(t, "USER", registered.GetUser().GetRole())
	assert.NotEqual(t, registered.AccessToken, registered.RefreshToken)

	_, err = client.Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Username: "bob", Password: "password1"})
	requireReason(t, err, codes.AlreadyExists, "EMAIL_TAKEN")

	_, err = client.Register(ctx, &pb.RegisterRequest{Email: "b@x.com", Username: "alice", Password: "password1"})
	requireReason(t, err, codes.AlreadyExists, "USERNAME_TAKEN")

	_, err = client.Register(ctx, &pb.RegisterRequest{Email: "bad", Username: "al", Password: "x"})
	requireReason(t, err, codes.InvalidArgument, "VALIDATION_FAILED")

	_, err = client.Register(ctx, &pb.RegisterRequest{Email: "c@x.com", Username: "carol", Password: strings.Repeat("a", 73)})
	requireReason(t, err, codes.InvalidArgument, "VALIDATION_FAILED")
	_, err = client.Register(ctx, &pb.RegisterRequest{Email: "c@x.com", Username: "carol", Password: strings.Repeat("é", 40)})
	requireReason(t, err, codes.InvalidArgument, "VALIDATION_FAILED")

	named, err := client.Register(ctx, &pb.RegisterRequest{
		Email:     "d@x.com",
		Username:  "dave",
		Password:  "password1",
		FirstName: proto.String("Dave"),
	})
	require.NoError(t, err)
	namedMe, err := client.Me(withBearer(ctx, named.GetAccessToken()), &pb.MeRequest{})
	require.NoError(t, err)
	require.NotNil(t, namedMe.FirstName)
	assert.Equal(t, "Dave", namedMe.GetFirstName())
	assert.Nil(t, namedMe.LastName)

	loggedIn, err := client.Login(ctx, &pb.LoginRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, registered.GetUser().GetId(), loggedIn.GetUser().GetId())

	_, err = client.Login(ctx, &pb.LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	requireReason(t, err, codes.Unauthenticated, "INVALID_CREDENTIALS")
	_, err = client.Login(ctx, &pb.LoginRequest{Email: "nobody@x.com", Password: "wrong-password"})
	requireReason(t, err, codes.Unauthenticated, "INVALID_CREDENTIALS")

	me, err := client.Me(withBearer(ctx, loggedIn.AccessToken), &pb.MeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.GetEmail())
	assert.Nil(t, me.FirstName)
	assert.False(t, me.GetCreatedAt().AsTime().IsZero())

	refreshed, err := client.Refresh(withBearer(ctx, loggedIn.RefreshToken), &pb.RefreshRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
}

func TestRouter_TokenKindsAreNotInterchangeable(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	registered, err := client.Register(ctx, &pb.RegisterRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "password1",
	})
	require.NoError(t, err)

	_, err = client.Me(withBearer(ctx, registered.RefreshToken), &pb.MeRequest{})
	requireReason(t, err, codes.Unauthenticated, "TOKEN_SIGNATURE")

	_, err = client.Refresh(withBearer(ctx, registered.AccessToken), &pb.RefreshRequest{})
	requireReason(t, err, codes.Unauthenticated, "TOKEN_SIGNATURE")

	_, err = client.Me(ctx, &pb.MeRequest{})
	requireReason(t, err, codes.Unauthenticated, "MISSING_TOKEN")

	_, err = client.Me(withBearer(ctx, "not.a.jwt"), &pb.MeRequest{})
	requireReason(t, err, codes.Unauthenticated, "TOKEN_MALFORMED")
}
