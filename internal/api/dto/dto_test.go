package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/userauth/internal/model"
)

func TestRegisterRequest_Params(t *testing.T) {
	first := "Alice"
	req := RegisterRequest{Email: "a@x.com", Username: "alice", Password: "password1", FirstName: &first}

	assert.Equal(t, model.RegisterParams{
		Email:     "a@x.com",
		Username:  "alice",
		Password:  "password1",
		FirstName: &first,
	}, req.Params())
}

func TestNewAuthResponse(t *testing.T) {
	id := uuid.New()
	resp := NewAuthResponse(model.AuthResult{
		User:         model.PublicUser{ID: id, Email: "a@x.com", Username: "alice", Role: model.RoleUser},
		AccessToken:  "access",
		RefreshToken: "refresh",
	})

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"user": {"id": "`+id.String()+`", "email": "a@x.com", "username": "alice", "role": "USER"},
		"accessToken": "access",
		"refreshToken": "refresh"
	}`, string(body))
}

func TestNewProfileResponse_NullOptionalFields(t *testing.T) {
	id := uuid.New()
	bio := "hi"
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	body, err := json.Marshal(NewProfileResponse(model.Profile{
		ID:        id,
		Email:     "a@x.com",
		Username:  "alice",
		Bio:       &bio,
		Role:      model.RoleUser,
		CreatedAt: created,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "`+id.String()+`",
		"email": "a@x.com",
		"username": "alice",
		"firstName": null,
		"lastName": null,
		"bio": "hi",
		"avatarUrl": null,
		"role": "USER",
		"createdAt": "2025-03-01T12:00:00Z"
	}`, string(body))
	assert.NotContains(t, string(body), "password")
}
