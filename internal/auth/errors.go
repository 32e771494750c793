package auth

import "errors"

var (
	// ErrWrongCredentials is returned when a login fails. It never tells whether the username or the
	// password was wrong, nor whether the account is deactivated.
	ErrWrongCredentials = errors.New("wrong username or password")

	// ErrUnknownIdentity is returned when a session user id does not resolve to an active user.
	// Unknown and deactivated users are the same case.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
)
