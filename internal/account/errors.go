package account

import "errors"

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrHandleTaken      = errors.New("handle is already taken")
	ErrInvalidHandle    = errors.New("handle must not be empty")

	// ErrBadCredentials is returned for an unknown handle, a wrong password
	// and a corrupt keystore alike.
	ErrBadCredentials = errors.New("incorrect handle or password")

	ErrNotLoggedIn     = errors.New("not logged in")
	ErrDBWriteFailed   = errors.New("database write failed")
	ErrInvalidKeystore = errors.New("invalid keystore document")
	ErrNoPersisted     = errors.New("no persisted session")
)
