package identity

import (
	"errors"
	"fmt"

	"github.com/Geek-Mradul/mintern/internal/auth"
)

var (
	ErrValidation         = errors.New("email, password and name are required")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingEmail       = errors.New("no email found in identity provider profile")
	ErrDomainRejected     = errors.New("email domain is not allowed")

	ErrPasswordTooLong error = &validationError{
		msg: fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordLength),
	}
)

// validationError is a more specific ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

// DependencyError reports that the credential store could not serve a call.
// It is the only identity error that points at the server rather than the
// caller's input.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("identity: %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
