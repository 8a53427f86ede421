package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefresh covers a bad/expired refresh token and a device id
	// that does not match the one the token was issued for.
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// ErrInvalidPIN covers an unknown email, a user without a PIN, and a
	// wrong PIN; callers get one answer for all three.
	ErrInvalidPIN = errors.New("invalid pin")
)
