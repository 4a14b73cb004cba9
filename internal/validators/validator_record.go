// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"sort"

	"github.com/hostlog/hostlog/models"
)

// Bounds on the short ASCII strings a record carries. Generous enough for
// any sane stream naming, tight enough to stop a hostile client storing
// arbitrary blobs in indexed columns.
const (
	maxTagLength     = 64
	maxVersionLength = 32
)

// recordValidator validates record batches arriving at the server before
// they reach storage: per-record structural checks plus a per-stream
// density check across the batch.
type recordValidator struct{}

// NewRecordValidator constructs a [Validator] for record batches. It
// accepts []models.Record and models.PushBatch inputs.
func NewRecordValidator() Validator {
	return &recordValidator{}
}

// Validate implements [Validator]. Field scoping is not used by this
// validator; any provided field names are ignored.
func (v *recordValidator) Validate(ctx context.Context, value any, _ ...string) error {
	switch batch := value.(type) {
	case []models.Record:
		return v.validateBatch(batch)
	case models.PushBatch:
		return v.validateBatch(batch.Records)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, value)
	}
}

func (v *recordValidator) validateBatch(records []models.Record) error {
	if len(records) == 0 {
		return ErrEmptyBatch
	}

	for i, rec := range records {
		if err := v.validateRecord(rec); err != nil {
			return fmt.Errorf("record %d of %d: %w", i+1, len(records), err)
		}
	}

	return v.validateStreamDensity(records)
}

func (v *recordValidator) validateRecord(rec models.Record) error {
	if rec.Id.IsZero() {
		return ErrInvalidRecordID
	}
	if rec.Host.IsZero() {
		return ErrInvalidHostID
	}
	if err := validateShortASCII(string(rec.Tag), maxTagLength); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTag, err)
	}
	if err := validateShortASCII(rec.Version, maxVersionLength); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	if len(rec.Data.Ciphertext) == 0 || len(rec.Data.WrappedCEK) == 0 {
		return ErrEmptyPayload
	}
	return nil
}

// validateStreamDensity checks that, per (host, tag), the batch's idx
// values form one dense ascending run. The sync protocol only ever
// produces such batches; anything else indicates a broken or hostile
// client and would tear a hole in the stream if accepted.
func (v *recordValidator) validateStreamDensity(records []models.Record) error {
	streams := make(map[models.Key][]uint64)
	for _, rec := range records {
		k := models.Key{Host: rec.Host, Tag: rec.Tag}
		streams[k] = append(streams[k], rec.Idx)
	}

	for k, idxs := range streams {
		sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
		for i := 1; i < len(idxs); i++ {
			if idxs[i] != idxs[i-1]+1 {
				return fmt.Errorf("%w: stream %s has idx %d after %d", ErrNonContiguousBatch, k, idxs[i], idxs[i-1])
			}
		}
	}

	return nil
}

// validateShortASCII checks that s is non-empty, at most max bytes, and
// printable ASCII.
func validateShortASCII(s string, max int) error {
	if s == "" {
		return fmt.Errorf("empty value")
	}
	if len(s) > max {
		return fmt.Errorf("value longer than %d bytes", max)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return fmt.Errorf("non-printable or non-ascii byte at position %d", i)
		}
	}
	return nil
}
