// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package models

import "time"

// DefaultMarkerColor is applied when a marker is created without a color.
const DefaultMarkerColor = "#ff0000"

// Marker is a persisted geo-tagged annotation with optional media
// attachments. Photos and Videos hold ordered /uploads/<name> paths and are
// append-only: edits may add paths but never remove or reorder existing
// ones. UserID is a weak reference to the creating user; it is stored as
// given and never validated to resolve.
type Marker struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Color     string    `json:"color"`
	Photos    []string  `json:"photos"`
	Videos    []string  `json:"videos"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarkerUpdate describes a partial marker edit. Nil pointer fields were not
// sent by the client and leave the stored value untouched; non-nil fields
// overwrite, including with the empty string. Photos and Videos are appended
// to the existing lists.
type MarkerUpdate struct {
	Title   *string
	Comment *string
	Color   *string
	Photos  []string
	Videos  []string
}

// PositionUpdate is the push-channel position message, both inbound
// (updatePosition, without Name) and outbound (positionsUpdate, with Name).
type PositionUpdate struct {
	UserID    string  `json:"userId"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
