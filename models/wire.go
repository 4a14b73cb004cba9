// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// StatusEntry is the wire form of a single RecordStatus entry. RecordStatus
// itself is keyed by a struct (Key), which json.Marshal cannot use as a map
// key, so the wire protocol flattens it to a slice of entries instead.
type StatusEntry struct {
	Host HostId `json:"host"`
	Tag  Tag    `json:"tag"`
	Idx  uint64 `json:"idx"`
}

// StatusResponse is the body of `GET status`: the authoritative remote (or
// local) head per (host, tag).
type StatusResponse struct {
	Entries []StatusEntry `json:"entries"`
}

// ToStatusResponse flattens a RecordStatus into its wire representation.
func ToStatusResponse(s RecordStatus) StatusResponse {
	resp := StatusResponse{Entries: make([]StatusEntry, 0, len(s))}
	for k, idx := range s {
		resp.Entries = append(resp.Entries, StatusEntry{Host: k.Host, Tag: k.Tag, Idx: idx})
	}
	return resp
}

// ToRecordStatus reassembles a RecordStatus from its wire representation.
func (r StatusResponse) ToRecordStatus() RecordStatus {
	s := make(RecordStatus, len(r.Entries))
	for _, e := range r.Entries {
		s[Key{Host: e.Host, Tag: e.Tag}] = e.Idx
	}
	return s
}

// RecordsPage is the body of `GET records`: an ordered, contiguous run of
// records from a single (host, tag) stream, ascending by idx.
type RecordsPage struct {
	Records []Record `json:"records"`
}

// PushBatch is the body of `POST records`: an atomic, idempotent-by-id
// batch of records to insert on the remote store.
type PushBatch struct {
	Records []Record `json:"records"`

	// Hash is an optional hex-encoded HMAC-SHA256 over the serialized
	// Records, computed with the shared transport integrity key. Verified
	// by the server when present.
	Hash string `json:"hash,omitempty"`
}

// AuthRequest is the body of the register/login/params calls. Credentials
// on the wire are always derived values: AuthHash is hex-encoded
// SHA-256(KEK ‖ authSalt), never a password.
type AuthRequest struct {
	Login          string `json:"login"`
	AuthHash       string `json:"auth_hash,omitempty"`
	EncryptionSalt []byte `json:"encryption_salt,omitempty"`
	Name           string `json:"name,omitempty"`
}

// AuthParams is the body of the params response: the public key-derivation
// inputs a device needs to reconstruct the account KEK before it can log
// in.
type AuthParams struct {
	Login          string `json:"login"`
	EncryptionSalt []byte `json:"encryption_salt"`
}
