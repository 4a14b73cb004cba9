// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EncryptedData is the opaque sealed payload carried by every Record. Both
// fields are byte strings that neither the local nor the remote store ever
// interprets.
type EncryptedData struct {
	// Ciphertext is the AEAD-sealed plaintext, keyed by the record's
	// content-encryption key (CEK).
	Ciphertext []byte `json:"ciphertext"`

	// WrappedCEK is the CEK itself, sealed under the user's key-encryption
	// key (KEK). It travels alongside the ciphertext so that any holder of
	// the KEK can recover the CEK and then the plaintext.
	WrappedCEK []byte `json:"wrapped_cek"`
}

// Record is the immutable unit of replication: a versioned, tagged,
// host-stamped, index-stamped envelope. Records are constructed only by
// LocalRecordRepository.Append; external callers never set Id, Idx, or
// Timestamp.
type Record struct {
	// Id is the record's idempotency key; unique per user on the server.
	Id RecordId `json:"id"`

	// Host identifies the device that authored this record.
	Host HostId `json:"host"`

	// Tag names the stream within Host this record belongs to.
	Tag Tag `json:"tag"`

	// Idx is this record's position in the dense, zero-based, per-(Host,Tag)
	// sequence. Gaps are never produced and are treated as corruption if
	// observed.
	Idx uint64 `json:"idx"`

	// Timestamp is advisory wall-clock time at creation, in nanoseconds
	// since the Unix epoch. It is never used for ordering; Idx is.
	Timestamp int64 `json:"timestamp"`

	// Version identifies the schema of the plaintext payload. Opaque to the
	// store; carried end-to-end for the application layer to interpret.
	Version string `json:"version"`

	// Data is the sealed payload. Opaque to the store.
	Data EncryptedData `json:"data"`
}

// NewRecordTimestamp returns the current wall-clock time in nanoseconds
// since the Unix epoch, the format Record.Timestamp is stamped with.
func NewRecordTimestamp() int64 {
	return time.Now().UnixNano()
}

// RecordStatus is a snapshot mapping each (HostId, Tag) stream to its
// current head idx. Produced by both local and remote stores and consumed
// by the sync engine. Entry order is irrelevant; equality is by the set of
// (host, tag, idx) triples it represents.
type RecordStatus map[Key]uint64

// Head returns the head idx for k and whether an entry exists at all. A
// missing entry is distinct from idx 0: it means the stream is entirely
// unknown to this store, not merely empty at its first index.
func (s RecordStatus) Head(k Key) (uint64, bool) {
	idx, ok := s[k]
	return idx, ok
}

// Clone returns a shallow copy of s safe for independent mutation.
func (s RecordStatus) Clone() RecordStatus {
	out := make(RecordStatus, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
