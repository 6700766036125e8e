package app

import (
	"context"
	"errors"
)

// Sentinels used by the HTTP layer for status mapping.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrDependency        = errors.New("external dependency failed")
	ErrTimeout           = errors.New("external dependency timed out")
)

// asDependencyFailure classifies an external-call error so handlers can map
// it to 502 or 504 without leaking internals.
func asDependencyFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return errors.Join(ErrDependency, err)
}
