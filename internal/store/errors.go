// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package store

import "errors"

// Sentinel errors returned by store operations. Callers map these to
// API error codes; anything else is treated as an internal store failure.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrMarkerNotFound = errors.New("marker not found")
)
