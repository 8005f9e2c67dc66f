// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gws "github.com/gorilla/websocket"

	"github.com/waymark-app/waymark/internal/models"
	ws "github.com/waymark-app/waymark/internal/websocket"
)

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialPushChannel(t *testing.T, server *httptest.Server) *gws.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *gws.Conn) wireMessage {
	t.Helper()

	var msg wireMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestPushChannelSnapshotFirst(t *testing.T) {
	env := setupEnv(t)

	existing := env.createMarker(t, map[string]string{
		"latitude": "10", "longitude": "20", "title": "existing",
	}, nil)

	server := httptest.NewServer(env.router)
	defer server.Close()

	conn := dialPushChannel(t, server)

	first := readMessage(t, conn)
	if first.Type != ws.EventAllMarkers {
		t.Fatalf("first event = %q, want %q", first.Type, ws.EventAllMarkers)
	}

	var snapshot []models.Marker
	if err := json.Unmarshal(first.Data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != existing.ID {
		t.Fatalf("snapshot = %+v, want the one existing marker", snapshot)
	}

	// A marker created after connect arrives as newMarker.
	created := env.createMarker(t, map[string]string{
		"latitude": "1", "longitude": "2", "title": "fresh",
	}, nil)

	second := readMessage(t, conn)
	if second.Type != ws.EventNewMarker {
		t.Fatalf("second event = %q, want %q", second.Type, ws.EventNewMarker)
	}
	var received models.Marker
	if err := json.Unmarshal(second.Data, &received); err != nil {
		t.Fatalf("decode marker: %v", err)
	}
	if received.ID != created.ID {
		t.Errorf("marker id = %q, want %q", received.ID, created.ID)
	}
}

func TestPushChannelEmptySnapshotIsArray(t *testing.T) {
	env := setupEnv(t)

	server := httptest.NewServer(env.router)
	defer server.Close()

	conn := dialPushChannel(t, server)

	first := readMessage(t, conn)
	if first.Type != ws.EventAllMarkers {
		t.Fatalf("first event = %q, want %q", first.Type, ws.EventAllMarkers)
	}
	if strings.TrimSpace(string(first.Data)) != "[]" {
		t.Errorf("empty snapshot data = %s, want []", first.Data)
	}
}

func TestPushChannelSurvivesSnapshotFailure(t *testing.T) {
	env := setupEnv(t)

	server := httptest.NewServer(env.router)
	defer server.Close()

	// With the store closed the snapshot fetch fails; the connection must
	// still be upgraded and receive later broadcasts, just no allMarkers.
	if err := env.store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	conn := dialPushChannel(t, server)
	time.Sleep(100 * time.Millisecond)

	env.hub.Broadcast(ws.EventNewMarker, &models.Marker{ID: "m-1", Title: "late"})

	msg := readMessage(t, conn)
	if msg.Type != ws.EventNewMarker {
		t.Fatalf("first event = %q, want %q with no preceding snapshot", msg.Type, ws.EventNewMarker)
	}
}

func TestPushChannelPositionUpdate(t *testing.T) {
	env := setupEnv(t)

	rec := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})
	var auth models.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &auth); err != nil {
		t.Fatalf("decode auth: %v", err)
	}

	server := httptest.NewServer(env.router)
	defer server.Close()

	conn := dialPushChannel(t, server)
	readMessage(t, conn) // discard snapshot

	report := map[string]interface{}{
		"type": ws.EventUpdatePosition,
		"data": map[string]interface{}{
			"userId":    auth.User.ID,
			"latitude":  51.5,
			"longitude": -0.12,
		},
	}
	if err := conn.WriteJSON(report); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != ws.EventPositionsUpdate {
		t.Fatalf("event = %q, want %q", msg.Type, ws.EventPositionsUpdate)
	}
	var update models.PositionUpdate
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if update.UserID != auth.User.ID || update.Name != "Alice" {
		t.Errorf("update = %+v, want user id and name", update)
	}
	if update.Latitude != 51.5 || update.Longitude != -0.12 {
		t.Errorf("coords = (%v, %v), want (51.5, -0.12)", update.Latitude, update.Longitude)
	}
}

func TestPushChannelNonNumericPositionDropped(t *testing.T) {
	env := setupEnv(t)

	rec := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})
	var auth models.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &auth); err != nil {
		t.Fatalf("decode auth: %v", err)
	}

	server := httptest.NewServer(env.router)
	defer server.Close()

	conn := dialPushChannel(t, server)
	readMessage(t, conn) // discard snapshot

	bad := map[string]interface{}{
		"type": ws.EventUpdatePosition,
		"data": map[string]interface{}{
			"userId":    auth.User.ID,
			"latitude":  "abc",
			"longitude": 0,
		},
	}
	if err := conn.WriteJSON(bad); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	// No broadcast should follow and the user must be unmutated.
	if err := conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	var msg wireMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("unexpected event %q after malformed report", msg.Type)
	}

	usersRec := httptest.NewRecorder()
	env.router.ServeHTTP(usersRec, httptest.NewRequest(http.MethodGet, "/users", nil))
	var users []models.PublicUser
	if err := json.Unmarshal(usersRec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if users[0].Latitude != 0 || users[0].Longitude != 0 {
		t.Errorf("position = (%v, %v), want unchanged (0, 0)", users[0].Latitude, users[0].Longitude)
	}
}
