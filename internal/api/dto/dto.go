// Package dto holds the JSON request and response bodies of the HTTP transport.
package dto

import (
	"time"

	"github.com/dtroode/userauth/internal/model"
)

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// Params converts the request for the auth service.
func (r RegisterRequest) Params() model.RegisterParams {
	return model.RegisterParams{
		Email:     r.Email,
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Params converts the request for the auth service.
func (r LoginRequest) Params() model.LoginParams {
	return model.LoginParams{
		Email:    r.Email,
		Password: r.Password,
	}
}

// User is the identity returned with a token pair.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenPairResponse is returned by refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProfileResponse is returned by me. Absent optional fields are encoded as null.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatarUrl"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewAuthResponse(result model.AuthResult) *AuthResponse {
	return &AuthResponse{
		User: User{
			ID:       result.User.ID.String(),
			Email:    result.User.Email,
			Username: result.User.Username,
			Role:     string(result.User.Role),
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

func NewTokenPairResponse(pair model.TokenPair) *TokenPairResponse {
	return &TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

func NewProfileResponse(profile model.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		Role:      string(profile.Role),
		CreatedAt: profile.CreatedAt,
	}
}
