// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package models defines the Waymark data model: users, markers and the
// request/response payloads exchanged over the HTTP API and push channel.
package models

import "time"

// User is a registered account as persisted in the users collection.
// PasswordHash holds the bcrypt digest; it is stored but never serialized
// back to clients — PublicUser is the outward-facing view.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the client-visible projection of a User.
// The password digest is omitted entirely rather than blanked.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the client-visible projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		CreatedAt: u.CreatedAt,
	}
}

// UserSummary is the minimal user reference returned by register and login.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary returns the id/name reference for u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}

// RegisterRequest is the POST /register payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the POST /login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse wraps the user reference returned by register and login.
type AuthResponse struct {
	User UserSummary `json:"user"`
}
