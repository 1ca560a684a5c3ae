package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr string
	}{
		{name: "valid", request: LoginRequest{Username: "alice", Password: "secret"}},
		{name: "missing username", request: LoginRequest{Password: "secret"}, wantErr: "username"},
		{name: "blank username", request: LoginRequest{Username: "   ", Password: "secret"}, wantErr: "username"},
		{name: "missing password", request: LoginRequest{Username: "alice"}, wantErr: "password"},
		{
			name:    "oversized password",
			request: LoginRequest{Username: "alice", Password: strings.Repeat("x", 1025)},
			wantErr: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoginRequest_ToLoginInput(t *testing.T) {
	input := (&LoginRequest{Username: "alice", Password: "secret"}).ToLoginInput()
	assert.Equal(t, "alice", input.Username)
	assert.Equal(t, "secret", input.Password)
}
