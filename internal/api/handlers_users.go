// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"errors"
	"net/http"

	"github.com/waymark-app/waymark/internal/auth"
	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/models"
	"github.com/waymark-app/waymark/internal/store"
)

// invalidCredentialsMessage is returned for both unknown emails and wrong
// passwords so responses do not reveal which accounts exist.
const invalidCredentialsMessage = "invalid email or password"

// Users lists all registered users with their last known positions.
// Password hashes are never included.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to list users", err)
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	respondJSON(w, http.StatusOK, public)
}

// Register creates a new account. The password is stored only as a bcrypt
// hash. Duplicate emails respond 400 with DUPLICATE_EMAIL.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to create user", err)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, "DUPLICATE_EMAIL", "email already registered", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to create user", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("user registered")
	respondJSON(w, http.StatusCreated, &models.AuthResponse{User: user.Summary()})
}

// Login checks credentials and returns the user's id and name. Unknown
// email and wrong password produce the identical response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", invalidCredentialsMessage, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to look up user", err)
		return
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", invalidCredentialsMessage, nil)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("user logged in")
	respondJSON(w, http.StatusOK, &models.AuthResponse{User: user.Summary()})
}
