// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/hostlog/hostlog/internal/app"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/utils"
	"github.com/hostlog/hostlog/models"
)

// pushHashing is an HTTP middleware that verifies the transport integrity
// of a pushed record batch before forwarding it to the next handler.
//
// The middleware expects the request body to be a JSON object with the
// following structure:
//
//	{
//	    "records": [ ... ],          // records to insert
//	    "hash": "<hex-encoded HMAC>" // optional integrity checksum
//	}
//
// Integrity verification proceeds as follows:
//  1. The raw request body is read and immediately restored so that
//     downstream handlers can read it again without re-seeking.
//  2. The body is decoded into the expected JSON shape.
//  3. If the "hash" field is absent, the request passes through unchecked —
//     clients without a configured integrity key never send one.
//  4. Otherwise the "records" field is re-serialised to JSON and hashed
//     via [utils.Hash]. If the hex-encoded result differs from the
//     client-supplied value, the request is rejected with HTTP 400.
//
// On success the original request (with the restored body) is passed to
// next. All intermediate errors are logged via the context-scoped logger
// obtained from [logger.FromRequest].
func pushHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		// Read the entire body into memory so it can be decoded and then
		// restored for downstream handlers.
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "pushHashing").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// Restore the body so that the next handler can read it from the start.
		r.Body = io.NopCloser(bytes.NewReader(body))

		var batch models.PushBatch
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&batch); err != nil {
			log.Err(err).Str("func", "pushHashing").Msg("failed to decode JSON")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if batch.Hash == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Re-serialise only the records field to obtain a canonical byte
		// representation that is independent of the surrounding JSON
		// envelope.
		payloadBytes, err := json.Marshal(batch.Records)
		if err != nil {
			log.Err(err).Str("func", "pushHashing").Msg("failed to marshal records")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		hashedBody := hex.EncodeToString(utils.Hash(payloadBytes))
		if hashedBody != batch.Hash {
			log.Error().Str("func", "pushHashing").
				Str("hash from request", batch.Hash).
				Str("hashed body", hashedBody).
				Msg("hashes are not equal")
			http.Error(w, app.MsgIntegrityCheckFailed, http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
