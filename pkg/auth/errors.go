package auth

import "errors"

var (
	ErrUnauthorized       = errors.New("auth.unauthorized")
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")
	ErrEmailAlreadyExists = errors.New("auth.email_already_exists")
)
