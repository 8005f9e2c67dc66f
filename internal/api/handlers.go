// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package api implements Waymark's HTTP surface: account registration and
// login, marker CRUD with media uploads, and the push-channel upgrade
// endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/media"
	"github.com/waymark-app/waymark/internal/models"
	"github.com/waymark-app/waymark/internal/store"
	ws "github.com/waymark-app/waymark/internal/websocket"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store  *store.Store
	config *config.Config
	wsHub  *ws.Hub
	media  *media.Storage
}

// NewHandler creates a Handler. The hub may be nil, in which case the
// push-channel endpoint responds 503 and broadcasts are skipped.
func NewHandler(st *store.Store, cfg *config.Config, hub *ws.Hub, mediaStorage *media.Storage) *Handler {
	return &Handler{
		store:  st,
		config: cfg,
		wsHub:  hub,
		media:  mediaStorage,
	}
}

// broadcast sends an event to all push-channel subscribers if the hub is up.
func (h *Handler) broadcast(eventType string, data interface{}) {
	if h.wsHub == nil {
		return
	}
	h.wsHub.Broadcast(eventType, data)
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates upgrade requests against the configured
// CORS origins. Requests without an Origin header are allowed since native
// mobile clients do not send one.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("push channel connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and attaches the client to the hub.
// The full marker snapshot is queued on the client before registration so
// allMarkers always arrives before any broadcast event. A failed snapshot
// fetch is logged and the client simply receives no allMarkers; the
// connection stays up and still gets subsequent broadcasts.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("push channel connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "push channel unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	if markers, err := h.store.ListMarkers(r.Context()); err != nil {
		logging.Error().Err(err).Msg("failed to load marker snapshot for new subscriber")
	} else {
		if markers == nil {
			markers = []*models.Marker{}
		}
		client.Queue(ws.Message{Type: ws.EventAllMarkers, Data: markers})
	}
	h.wsHub.Register <- client
	client.Start()
}
