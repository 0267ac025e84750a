package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/userauth/internal/model"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(model.RegisterParams{}, model.LoginParams{})
	require.NoError(t, err)
	return v
}

func strPtr(s string) *string { return &s }

func fields(err *Error) []string {
	out := make([]string, 0, len(err.Violations))
	for _, v := range err.Violations {
		out = append(out, v.Field)
	}
	return out
}

func TestValidator_Register(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	tests := []struct {
		name       string
		params     model.RegisterParams
		wantFields []string
	}{
		{
			name:   "valid",
			params: model.RegisterParams{Email: "a@x.com", Username: "alice", Password: "longenough1"},
		},
		{
			name: "valid with names",
			params: model.RegisterParams{
				Email: "a@x.com", Username: "alice", Password: "longenough1",
				FirstName: strPtr("Alice"), LastName: strPtr("Liddell"),
			},
		},
		{
			name:   "username at bounds",
			params: model.RegisterParams{Email: "a@x.com", Username: "abc", Password: "12345678"},
		},
		{
			name:   "username max",
			params: model.RegisterParams{Email: "a@x.com", Username: strings.Repeat("u", 20), Password: "longenough1"},
		},
		{
			name:       "bad email",
			params:     model.RegisterParams{Email: "not-an-email", Username: "alice", Password: "longenough1"},
			wantFields: []string{"email"},
		},
		{
			name:       "short username",
			params:     model.RegisterParams{Email: "a@x.com", Username: "al", Password: "longenough1"},
			wantFields: []string{"username"},
		},
		{
			name:       "long username",
			params:     model.RegisterParams{Email: "a@x.com", Username: strings.Repeat("u", 21), Password: "longenough1"},
			wantFields: []string{"username"},
		},
		{
			name:       "short password",
			params:     model.RegisterParams{Email: "a@x.com", Username: "alice", Password: "short"},
			wantFields: []string{"password"},
		},
		{
			name:       "everything empty",
			params:     model.RegisterParams{},
			wantFields: []string{"email", "password", "username"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tt.params)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantFields, fields(verr))
			assert.Len(t, verr.Messages(), len(tt.wantFields))
			assert.Contains(t, err.Error(), "invalid request: ")
		})
	}
}

func TestValidator_Login(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	assert.NoError(t, v.Validate(&model.LoginParams{Email: "a@x.com", Password: "x"}))

	err := v.Validate(model.LoginParams{Email: "a@x.com"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"password"}, fields(verr))
}

func TestValidator_UnknownType(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	err := v.Validate(struct{ A string }{})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestViolation_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "email: bad", Violation{Field: "email", Message: "bad"}.String())
	assert.Equal(t, "bad", Violation{Message: "bad"}.String())
}
