//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/userauth/internal/model"
	repo "github.com/dtroode/userauth/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "userauth_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/userauth_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestUserRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn, 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.Ping(ctx))

	ur := repo.NewUserRepository(conn)
	hash := "$2a$10$hash"
	first := "Alice"
	u := model.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: &hash,
		FirstName:    &first,
	}

	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)
	require.Equal(t, model.RoleUser, saved.Role)
	require.False(t, saved.CreatedAt.IsZero())
	require.Equal(t, "Alice", *saved.FirstName)
	require.Nil(t, saved.LastName)

	byEmail, err := ur.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, hash, *byEmail.PasswordHash)

	byID, err := ur.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	_, err = ur.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ur.Create(ctx, model.User{ID: uuid.New(), Email: u.Email, Username: "other", PasswordHash: &hash})
	require.ErrorIs(t, err, model.ErrEmailTaken)

	_, err = ur.Create(ctx, model.User{ID: uuid.New(), Email: "other@example.com", Username: u.Username, PasswordHash: &hash})
	require.ErrorIs(t, err, model.ErrUsernameTaken)

	bob := model.User{ID: uuid.New(), Email: "bob@example.com", Username: "bob", PasswordHash: &hash}
	_, err = ur.Create(ctx, bob)
	require.NoError(t, err)

	// alice's email and bob's username match different rows; the email match wins.
	match, err := ur.FindByEmailOrUsername(ctx, u.Email, bob.Username)
	require.NoError(t, err)
	require.Equal(t, u.ID, match.ID)

	match, err = ur.FindByEmailOrUsername(ctx, "new@example.com", bob.Username)
	require.NoError(t, err)
	require.Equal(t, bob.ID, match.ID)

	_, err = ur.FindByEmailOrUsername(ctx, "new@example.com", "newname")
	require.ErrorIs(t, err, model.ErrNotFound)
}
