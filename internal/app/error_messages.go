// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or fails basic validation (e.g. missing required fields).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is returned when the supplied login/credential
	// combination does not match any existing user record.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpired is returned when a JWT bearer token is syntactically
	// valid but its expiry time has passed.
	MsgTokenIsExpired = "token is expired"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired/invalid"

	// MsgLoginAlreadyExists is returned when registration is attempted with
	// a login that is already taken.
	MsgLoginAlreadyExists = "login already exists"

	// MsgIndexConflict is returned when a pushed record targets a
	// (host, tag, idx) slot already held by a different record. The batch
	// is rejected unchanged; the condition needs operator attention.
	MsgIndexConflict = "index conflict: slot already holds a different record"

	// MsgIntegrityCheckFailed is returned when the transport integrity
	// hash of a pushed batch does not match the payload.
	MsgIntegrityCheckFailed = "integrity check failed"
)
