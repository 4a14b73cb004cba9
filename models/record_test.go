// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"testing"
)

func TestRecordStatus_HeadDistinguishesMissingFromZero(t *testing.T) {
	h := NewHostId()
	status := RecordStatus{{Host: h, Tag: "h"}: 0}

	if idx, ok := status.Head(Key{Host: h, Tag: "h"}); !ok || idx != 0 {
		t.Fatalf("expected head 0 present, got idx=%d ok=%v", idx, ok)
	}
	if _, ok := status.Head(Key{Host: h, Tag: "other"}); ok {
		t.Fatal("unknown stream must report absent, not idx 0")
	}
}

func TestRecordStatus_CloneIsIndependent(t *testing.T) {
	h := NewHostId()
	k := Key{Host: h, Tag: "h"}

	orig := RecordStatus{k: 3}
	clone := orig.Clone()
	clone[k] = 99

	if orig[k] != 3 {
		t.Fatalf("mutating the clone leaked into the original: %d", orig[k])
	}
}

func TestStatusResponse_RoundTrip(t *testing.T) {
	h1, h2 := NewHostId(), NewHostId()
	status := RecordStatus{
		{Host: h1, Tag: "h"}: 4,
		{Host: h2, Tag: "k"}: 0,
	}

	back := ToStatusResponse(status).ToRecordStatus()

	if len(back) != len(status) {
		t.Fatalf("entry count mismatch: %d != %d", len(back), len(status))
	}
	for k, idx := range status {
		if back[k] != idx {
			t.Fatalf("key %s: got %d, want %d", k, back[k], idx)
		}
	}
}
