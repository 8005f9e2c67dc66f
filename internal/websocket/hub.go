// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package websocket implements the push channel that fans marker and
// position events out to every connected client. All subscribers receive
// every event; there is no per-client filtering.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/metrics"
	"github.com/waymark-app/waymark/internal/models"
)

// Event types carried in Message.Type.
const (
	// EventAllMarkers is sent once to each client on connect, before any
	// other event, carrying the full marker snapshot.
	EventAllMarkers = "allMarkers"

	// EventNewMarker announces a marker created via the HTTP API.
	EventNewMarker = "newMarker"

	// EventUpdatedMarker announces an edit to an existing marker.
	EventUpdatedMarker = "updatedMarker"

	// EventPositionsUpdate announces a user's new coordinates to all clients.
	EventPositionsUpdate = "positionsUpdate"

	// EventUpdatePosition is the only inbound event: a client reporting
	// its own coordinates.
	EventUpdatePosition = "updatePosition"
)

// Message is the wire envelope for every push-channel event, both
// directions.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// PositionUpdater persists an inbound position report and returns the
// updated user document to broadcast. Implemented by the document store.
type PositionUpdater interface {
	UpdateUserPosition(ctx context.Context, userID string, lat, lng float64) (*models.User, error)
}

// Hub maintains the set of active clients and broadcasts events to them.
// Lifecycle events take priority over broadcasts so the client set is
// consistent before any message is fanned out.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	positions  PositionUpdater
	mu         sync.RWMutex
}

// NewHub creates a hub. The PositionUpdater handles inbound
// updatePosition events; pass nil to drop them.
func NewHub(positions PositionUpdater) *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		positions:  positions,
	}
}

// Broadcast queues an event for delivery to every connected client.
// Drops the event if the hub's queue is full rather than blocking the
// HTTP handler that produced it.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	msg := Message{Type: eventType, Data: data}
	select {
	case h.broadcast <- msg:
		metrics.WSMessagesSent.WithLabelValues(eventType).Inc()
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("event", eventType).Msg("push channel queue full, event dropped")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunWithContext runs the hub event loop until the context is canceled,
// then closes all clients and returns ctx.Err(). Designed for suture
// supervision.
//
// Uses priority-based selection so behavior is predictable when several
// channels are ready: shutdown first, then client lifecycle, then
// broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// Run runs the hub without shutdown support.
//
// Deprecated: Use RunWithContext for supervised operation.
func (h *Hub) Run() {
	_ = h.RunWithContext(context.Background())
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("push channel client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("push channel client disconnected")
}

// broadcastToClients fans a message out in client-ID order. A client whose
// buffer is full is disconnected rather than allowed to stall the rest.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
		logging.Warn().Int("removed", len(toRemove)).Msg("disconnected slow push channel clients")
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}

	metrics.WSConnections.Set(0)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", count).
		Msg("push channel hub stopped")
}

// handlePositionUpdate persists an inbound position report and broadcasts
// the result. Unknown users and store failures are logged and dropped;
// a bad report from one client must not take down the channel.
func (h *Hub) handlePositionUpdate(update models.PositionUpdate) {
	if h.positions == nil {
		return
	}

	user, err := h.positions.UpdateUserPosition(context.Background(), update.UserID, update.Latitude, update.Longitude)
	if err != nil {
		logging.Warn().Err(err).Str("user_id", update.UserID).Msg("position update rejected")
		return
	}

	h.Broadcast(EventPositionsUpdate, models.PositionUpdate{
		UserID:    user.ID,
		Name:      user.Name,
		Latitude:  user.Latitude,
		Longitude: user.Longitude,
	})
}
