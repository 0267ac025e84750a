package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization tag carried into every issued token.
type Role string

const (
	// RoleUser is assigned to every account created through registration.
	RoleUser Role = "USER"
	// RoleAdmin marks privileged accounts. It is never assigned by this module.
	RoleAdmin Role = "ADMIN"
)

// UserStore defines persistence operations for users.
//
// Lookups return ErrNotFound when nothing matches. Create returns ErrEmailTaken or
// ErrUsernameTaken when the store's own uniqueness constraint rejects the row.
type UserStore interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored account.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash *string
	Role         Role
	FirstName    *string
	LastName     *string
	Bio          *string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Public returns the projection handed out after register and login.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
}

// Profile returns the projection served to the account owner.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the minimal identity returned alongside a token pair.
type PublicUser struct {
	ID       uuid.UUID
	Email    string
	Username string
	Role     Role
}

// Profile is the safe field set of an account. It has no password hash field.
type Profile struct {
	ID        uuid.UUID
	Email     string
	Username  string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
	Role      Role
	CreatedAt time.Time
}
