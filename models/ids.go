// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// HostId is a 128-bit opaque identifier generated once per device and
// persisted across restarts. It never changes for the lifetime of the
// device and is never reused across devices.
type HostId uuid.UUID

// NewHostId generates a fresh, random HostId. Called once, on first run of
// a device, and persisted from then on.
func NewHostId() HostId {
	return HostId(uuid.New())
}

// ParseHostId parses the canonical string form of a HostId.
func ParseHostId(s string) (HostId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return HostId{}, fmt.Errorf("parse host id: %w", err)
	}
	return HostId(id), nil
}

func (h HostId) String() string {
	return uuid.UUID(h).String()
}

// IsZero reports whether h is the zero-value HostId.
func (h HostId) IsZero() bool {
	return h == HostId{}
}

func (h HostId) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *HostId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParseHostId(s)
	if err != nil {
		return err
	}
	*h = id
	return nil
}

// RecordId is a time-ordered 128-bit identifier assigned at record creation.
// Because it is time-ordered (UUIDv7), ids created later on the same host
// compare greater than ids created earlier, without relying on synchronized
// clocks across hosts. It is the idempotency key for inserts.
type RecordId uuid.UUID

// NewRecordId generates a fresh, time-ordered RecordId. Falls back to a
// random (v4) id if the time-ordered generator fails, trading ordering for
// availability; collision resistance is unaffected either way.
func NewRecordId() RecordId {
	id, err := uuid.NewV7()
	if err != nil {
		return RecordId(uuid.New())
	}
	return RecordId(id)
}

// ParseRecordId parses the canonical string form of a RecordId.
func ParseRecordId(s string) (RecordId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RecordId{}, fmt.Errorf("parse record id: %w", err)
	}
	return RecordId(id), nil
}

func (r RecordId) String() string {
	return uuid.UUID(r).String()
}

func (r RecordId) IsZero() bool {
	return r == RecordId{}
}

func (r RecordId) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *RecordId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParseRecordId(s)
	if err != nil {
		return err
	}
	*r = id
	return nil
}

// Tag names a logical stream of records within a host, e.g. one tag per
// kind of record. A host owns multiple tags; tags partition a host's log
// into independent, densely-indexed sequences.
type Tag string

// Key identifies a single (host, tag) stream. It is the unit of comparison
// between a local store's heads and a remote store's heads during sync.
type Key struct {
	Host HostId
	Tag  Tag
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Host, k.Tag)
}
