// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/waymark-app/waymark/internal/metrics"
	"github.com/waymark-app/waymark/internal/models"
)

// CreateMarker stores a new marker, assigning an ID, default color, and
// creation timestamp where missing. Non-finite coordinates fail JSON
// encoding and nothing is written.
func (s *Store) CreateMarker(ctx context.Context, marker *models.Marker) (err error) {
	defer func() { metrics.RecordStoreOperation("create", "markers", err) }()

	if marker.ID == "" {
		marker.ID = uuid.New().String()
	}
	if marker.Color == "" {
		marker.Color = models.DefaultMarkerColor
	}
	if marker.Photos == nil {
		marker.Photos = []string{}
	}
	if marker.Videos == nil {
		marker.Videos = []string{}
	}
	if marker.CreatedAt.IsZero() {
		marker.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(markerKeyPrefix+marker.ID), data)
	})
}

// GetMarker retrieves a marker by ID. Returns ErrMarkerNotFound if absent.
func (s *Store) GetMarker(ctx context.Context, id string) (*models.Marker, error) {
	var marker models.Marker

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(markerKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMarkerNotFound
		}
		if err != nil {
			return fmt.Errorf("get marker: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &marker)
		})
	})
	if err != nil {
		return nil, err
	}

	return &marker, nil
}

// ListMarkers returns every stored marker.
func (s *Store) ListMarkers(ctx context.Context) ([]*models.Marker, error) {
	var markers []*models.Marker

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(markerKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var marker models.Marker
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &marker)
			}); err != nil {
				return fmt.Errorf("decode marker: %w", err)
			}
			markers = append(markers, &marker)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return markers, nil
}

// UpdateMarker applies a partial update to a marker and returns the updated
// document. Nil pointer fields are left untouched; media lists only ever
// grow. Returns ErrMarkerNotFound for unknown IDs.
func (s *Store) UpdateMarker(ctx context.Context, id string, update *models.MarkerUpdate) (marker *models.Marker, err error) {
	defer func() { metrics.RecordStoreOperation("update", "markers", err) }()

	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(markerKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMarkerNotFound
		}
		if err != nil {
			return fmt.Errorf("get marker: %w", err)
		}

		var m models.Marker
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		}); err != nil {
			return err
		}

		if update.Title != nil {
			m.Title = *update.Title
		}
		if update.Comment != nil {
			m.Comment = *update.Comment
		}
		if update.Color != nil {
			m.Color = *update.Color
		}
		m.Photos = append(m.Photos, update.Photos...)
		m.Videos = append(m.Videos, update.Videos...)

		data, err := json.Marshal(&m)
		if err != nil {
			return fmt.Errorf("marshal marker: %w", err)
		}
		if err := txn.Set([]byte(markerKeyPrefix+id), data); err != nil {
			return fmt.Errorf("set marker: %w", err)
		}

		marker = &m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return marker, nil
}
