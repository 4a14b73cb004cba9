// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewHostId_UniqueAndNonZero(t *testing.T) {
	h1, h2 := NewHostId(), NewHostId()

	if h1.IsZero() || h2.IsZero() {
		t.Fatal("fresh host ids must be non-zero")
	}
	if h1 == h2 {
		t.Fatal("two generated host ids must differ")
	}
}

func TestNewRecordId_TimeOrdered(t *testing.T) {
	first := NewRecordId()
	time.Sleep(2 * time.Millisecond)
	second := NewRecordId()

	// UUIDv7 ids created later compare greater as strings, giving the
	// server a natural insertion-ordering column.
	if !(first.String() < second.String()) {
		t.Fatalf("expected %s < %s", first, second)
	}
}

func TestHostId_JSONRoundTrip(t *testing.T) {
	h := NewHostId()

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back HostId
	if err = json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != h {
		t.Fatalf("round trip mismatch: %s != %s", back, h)
	}
}

func TestParseRecordId_Invalid(t *testing.T) {
	if _, err := ParseRecordId("not-a-uuid"); err == nil {
		t.Fatal("expected error for malformed record id")
	}
	if _, err := ParseHostId(""); err == nil {
		t.Fatal("expected error for empty host id")
	}
}

func TestKey_String(t *testing.T) {
	h := NewHostId()
	k := Key{Host: h, Tag: "history"}

	want := h.String() + "/history"
	if k.String() != want {
		t.Fatalf("got %q, want %q", k.String(), want)
	}
}
