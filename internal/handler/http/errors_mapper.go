// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/hostlog/hostlog/internal/app"
	"github.com/hostlog/hostlog/internal/service"
	"github.com/hostlog/hostlog/internal/store"
)

type errorResponse struct {
	message string
	status  int
}

var errorStatusMap = map[error]errorResponse{
	service.ErrInvalidDataProvided:     {message: app.MsgInvalidDataProvided, status: http.StatusBadRequest},
	service.ErrWrongPassword:           {message: app.MsgInvalidLoginPassword, status: http.StatusUnauthorized},
	service.ErrTokenCreationFailed:     {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	service.ErrTokenIsExpired:          {message: app.MsgTokenIsExpired, status: http.StatusUnauthorized},
	service.ErrTokenIsExpiredOrInvalid: {message: app.MsgTokenIsExpiredOrInvalid, status: http.StatusUnauthorized},

	store.ErrLoginAlreadyExists: {message: app.MsgLoginAlreadyExists, status: http.StatusConflict},
	store.ErrNoUserWasFound:     {message: app.MsgInvalidLoginPassword, status: http.StatusUnauthorized},

	// A different record already occupies the (host, tag, idx) slot: a
	// data-integrity problem the client must not mask or retry.
	store.ErrIndexConflict: {message: app.MsgIndexConflict, status: http.StatusConflict},

	store.ErrIoFailure:       {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrProtocolFailure: {message: app.MsgInvalidDataProvided, status: http.StatusBadRequest},

	store.ErrBuildingSQLQuery:     {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrExecutingQuery:       {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrBeginningTransaction: {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrCommitingTransaction: {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrPreparingStatement:   {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrExecutingStatement:   {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrScanningRow:          {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
	store.ErrScanningRows:         {message: app.MsgInternalServerError, status: http.StatusInternalServerError},
}

func responseFromError(err error) errorResponse {
	for target, resp := range errorStatusMap {
		if errors.Is(err, target) {
			return resp
		}
	}
	return errorResponse{message: app.MsgInternalServerError, status: http.StatusInternalServerError}
}
