// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package sync

import "errors"

var (
	// ErrProtocolFailure is returned for a stream whose source handed the
	// engine a non-contiguous or out-of-range batch: the first record of a
	// batch must sit exactly at the requested start and each following
	// record must extend it by one. Fatal for the stream, like an index
	// conflict; never papered over.
	ErrProtocolFailure = errors.New("sync: non-contiguous or out-of-range batch")

	// ErrStatusExchange is returned by Engine.Sync when one of the two
	// status snapshots cannot be obtained at all; without both there is
	// nothing to diff and the run aborts before transferring anything.
	ErrStatusExchange = errors.New("sync: status exchange failed")
)
