// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/models"
	"github.com/waymark-app/waymark/internal/store"
	ws "github.com/waymark-app/waymark/internal/websocket"
)

// parseCoordinate converts a form field to a float. Parse failures yield
// NaN rather than an immediate error; the store rejects NaN documents,
// which surfaces as STORE_ERROR.
func parseCoordinate(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// saveUploads persists one multipart file list and returns the public URL
// paths, enforcing the configured count cap.
func (h *Handler) saveUploads(files []*multipart.FileHeader, kind string, limit int) ([]string, string, error) {
	if len(files) > limit {
		return nil, "VALIDATION_ERROR", fmt.Errorf("at most %d %s files allowed, got %d", limit, kind, len(files))
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := h.media.Save(fh, kind)
		if err != nil {
			return nil, "IO_ERROR", err
		}
		paths = append(paths, path)
	}
	return paths, "", nil
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	maxBytes := int64(h.config.Media.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form", err)
		return false
	}
	return true
}

// CreateMarker creates a marker from a multipart form and broadcasts it
// as a newMarker event. Uploaded photos and videos are written to the
// media directory first so the stored document references them by URL.
func (h *Handler) CreateMarker(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}
	form := r.MultipartForm

	photos, code, err := h.saveUploads(form.File["photos"], "photo", h.config.Media.MaxPhotos)
	if err != nil {
		h.respondUploadError(w, code, err)
		return
	}
	videos, code, err := h.saveUploads(form.File["videos"], "video", h.config.Media.MaxVideos)
	if err != nil {
		h.respondUploadError(w, code, err)
		return
	}

	marker := &models.Marker{
		Latitude:  parseCoordinate(r.FormValue("latitude")),
		Longitude: parseCoordinate(r.FormValue("longitude")),
		Title:     r.FormValue("title"),
		Comment:   r.FormValue("comment"),
		Color:     r.FormValue("color"),
		UserID:    r.FormValue("userId"),
		Photos:    photos,
		Videos:    videos,
	}

	if err := h.store.CreateMarker(r.Context(), marker); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to create marker", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("marker_id", marker.ID).Msg("marker created")
	h.broadcast(ws.EventNewMarker, marker)
	respondJSON(w, http.StatusCreated, marker)
}

// EditMarker applies a partial update from a multipart form. Text fields
// are only changed when present in the form, so an absent field and an
// empty field are distinguishable. Uploads are appended to the existing
// media lists. Broadcasts the updated document as updatedMarker.
func (h *Handler) EditMarker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !h.parseMultipart(w, r) {
		return
	}
	form := r.MultipartForm

	photos, code, err := h.saveUploads(form.File["photos"], "photo", h.config.Media.MaxPhotos)
	if err != nil {
		h.respondUploadError(w, code, err)
		return
	}
	videos, code, err := h.saveUploads(form.File["videos"], "video", h.config.Media.MaxVideos)
	if err != nil {
		h.respondUploadError(w, code, err)
		return
	}

	update := &models.MarkerUpdate{
		Photos: photos,
		Videos: videos,
	}
	if vals, ok := form.Value["title"]; ok && len(vals) > 0 {
		update.Title = &vals[0]
	}
	if vals, ok := form.Value["comment"]; ok && len(vals) > 0 {
		update.Comment = &vals[0]
	}
	if vals, ok := form.Value["color"]; ok && len(vals) > 0 {
		update.Color = &vals[0]
	}

	marker, err := h.store.UpdateMarker(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, store.ErrMarkerNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "marker not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to update marker", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("marker_id", marker.ID).Msg("marker updated")
	h.broadcast(ws.EventUpdatedMarker, marker)
	respondJSON(w, http.StatusOK, marker)
}

func (h *Handler) respondUploadError(w http.ResponseWriter, code string, err error) {
	switch code {
	case "VALIDATION_ERROR":
		respondError(w, http.StatusBadRequest, code, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, code, "failed to save upload", err)
	}
}
