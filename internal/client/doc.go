// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the headless client application runtime.
//
// It wires the login flow, client services, and background synchronization
// into a single process lifecycle: authenticate, verify server
// compatibility, sync, keep syncing until the process is told to stop.
package client
