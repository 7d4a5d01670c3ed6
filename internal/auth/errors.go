package auth

import "errors"

var (
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	ErrExpired          = errors.New("auth: token expired")
	ErrMalformedToken   = errors.New("auth: malformed token")
	ErrMissingSecret    = errors.New("auth: signing secret is empty")
	ErrPasswordTooLong  = errors.New("auth: password exceeds 72 bytes")
)
