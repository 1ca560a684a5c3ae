// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	customValidation "github.com/allisson/authgate/internal/validation"
)

// LoginRequest contains the credentials submitted to POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the login request is well formed. Password strength is not
// checked here; a wrong password is reported as invalid credentials.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, 1024),
		),
	)
}

// ToLoginInput converts the request to the use case input.
func (r *LoginRequest) ToLoginInput() *authDomain.LoginInput {
	return &authDomain.LoginInput{
		Username: r.Username,
		Password: r.Password,
	}
}
