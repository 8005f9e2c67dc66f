// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"net/http"

	"github.com/waymark-app/waymark/internal/logging"
)

// Root answers a plain liveness probe at GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Waymark server is running")); err != nil {
		logging.Error().Err(err).Msg("failed to write health response")
	}
}
