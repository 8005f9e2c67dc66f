// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/models"
	"github.com/waymark-app/waymark/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent
// log injection. Newlines and other control bytes become escaped hex.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes a payload as the raw response body. Success responses
// are the bare document, not wrapped in an envelope.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError writes an error body of the form {"error":{"code","message"}}.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	respondJSON(w, status, &models.ErrorResponse{
		Error: models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// decodeJSONBody decodes a JSON request body into dst. Unknown fields are
// tolerated; malformed JSON is reported to the caller.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err)
		return false
	}
	return true
}

// validateRequest validates a struct and writes the failure response itself.
// Returns true when the request is valid.
func validateRequest(w http.ResponseWriter, v interface{}) bool {
	if err := validation.ValidateStruct(v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return false
	}
	return true
}
