package service

import "errors"

var (
	// ErrInvalidDataProvided is returned when the caller supplies a request
	// object that fails basic structural or semantic validation (e.g.
	// missing required fields, malformed values).
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrWrongPassword is returned by the authentication service when the
	// supplied auth hash does not match the stored credential for the
	// given user.
	ErrWrongPassword = errors.New("wrong password")

	// ErrTokenCreationFailed is returned when signing a new JWT fails.
	ErrTokenCreationFailed = errors.New("token creation failed")

	// ErrTokenIsExpired is returned when a JWT has passed its expiration
	// time (exp claim) but is otherwise structurally valid.
	ErrTokenIsExpired = errors.New("token is expired")

	// ErrTokenIsExpiredOrInvalid is returned when a JWT cannot be trusted —
	// either because it has expired or because its signature / claims are
	// invalid.
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired/invalid")

	// ErrVersionIsNotSpecified is returned at startup when the application
	// version is missing from configuration.
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// client errors
var (
	// ErrRegisterOnServer wraps any failure of the registration round-trip
	// with the relay.
	ErrRegisterOnServer = errors.New("register user on server")

	// ErrLoginOnServer wraps any failure of the login round-trip with the
	// relay.
	ErrLoginOnServer = errors.New("login on server")

	// ErrNoEncryptionKey is returned by the client crypto service when a
	// seal or open is attempted before a successful login has installed
	// the KEK.
	ErrNoEncryptionKey = errors.New("no encryption key set")

	// ErrServerTooOld is returned by the startup version check when the
	// relay reports a version below the configured minimum.
	ErrServerTooOld = errors.New("server version below configured minimum")
)
