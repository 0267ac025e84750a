package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dtroode/userauth/internal/model"
)

const userColumns = `id, email, username, password_hash, role, first_name, last_name, bio, avatar_url, created_at, updated_at`

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	store *Store
	now   func() time.Time
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{
		store: store,
		now:   time.Now,
	}
}

// FindByEmailOrUsername returns a user matching either field, preferring the
// email match when two different rows match.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = ? OR username = ?
		ORDER BY (email = ?) DESC
		LIMIT 1`,
		email, username, email,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email or username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Create inserts user. Role defaults to USER when empty.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Email, user.Username, user.PasswordHash, string(user.Role),
		user.FirstName, user.LastName, user.Bio, user.AvatarURL,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && isConstraint(sqliteErr.Code()) {
			switch msg := sqliteErr.Error(); {
			case strings.Contains(msg, "users.email"):
				return model.User{}, fmt.Errorf("failed to create user: %w", model.ErrEmailTaken)
			case strings.Contains(msg, "users.username"):
				return model.User{}, fmt.Errorf("failed to create user: %w", model.ErrUsernameTaken)
			}
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		user                 model.User
		id, role             string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&id, &user.Email, &user.Username, &user.PasswordHash, &role,
		&user.FirstName, &user.LastName, &user.Bio, &user.AvatarURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	if user.ID, err = uuid.Parse(id); err != nil {
		return model.User{}, fmt.Errorf("failed to parse user id %q: %w", id, err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.User{}, err
	}
	user.Role = model.Role(role)

	return user, nil
}

// isConstraint accepts the extended unique code and the primary code, since
// extended result codes depend on connection flags.
func isConstraint(code int) bool {
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
