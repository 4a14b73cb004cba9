// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/hostlog/hostlog/internal/adapter"
	"github.com/hostlog/hostlog/internal/store"
)

// mapAdapterError translates the adapter's transport error into a service
// business error, so callers above the client services can match with
// errors.Is against one vocabulary regardless of transport.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, adapter.ErrBadRequest):
		return ErrInvalidDataProvided

	case errors.Is(err, adapter.ErrUnauthorized):
		return ErrWrongPassword

	case errors.Is(err, adapter.ErrConflict):
		return store.ErrLoginAlreadyExists

	case errors.Is(err, adapter.ErrBadGateway),
		errors.Is(err, adapter.ErrInternalServerError):
		return ErrLoginOnServer
	}

	return err
}
