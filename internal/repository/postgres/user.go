package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/userauth/internal/model"
)

// Unique constraint names from the users migration.
const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

const userColumns = `id, email, username, password_hash, role, first_name, last_name, bio, avatar_url, created_at, updated_at`

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// FindByEmailOrUsername returns a user matching either field, preferring the
// email match when two different rows match.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error) {
	query := `SELECT ` + userColumns + `
			  FROM users WHERE email = $1 OR username = $2
			  ORDER BY (email = $1) DESC LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email or username: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Create inserts user. Role defaults to USER when empty; timestamps are set by the database.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, username, password_hash, role, first_name, last_name, bio, avatar_url)
			  VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'USER'), $6, $7, $8, $9)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, string(user.Role),
		user.FirstName, user.LastName, user.Bio, user.AvatarURL,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case emailConstraint:
				return model.User{}, fmt.Errorf("failed to create user: %w", model.ErrEmailTaken)
			case usernameConstraint:
				return model.User{}, fmt.Errorf("failed to create user: %w", model.ErrUsernameTaken)
			}
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		id   string
		role string
	)

	err := row.Scan(
		&id, &user.Email, &user.Username, &user.PasswordHash, &role,
		&user.FirstName, &user.LastName, &user.Bio, &user.AvatarURL,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user id %q: %w", id, err)
	}
	user.Role = model.Role(role)

	return user, nil
}
