// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package store provides the BadgerDB-backed document store for Waymark.
// Users and markers are stored as JSON documents under typed key prefixes,
// with a secondary email index enforcing account uniqueness.
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/waymark-app/waymark/internal/logging"
)

// Key prefixes for BadgerDB storage
const (
	userKeyPrefix   = "user:"
	emailKeyPrefix  = "user_email:"
	markerKeyPrefix = "marker:"
)

// Store is the durable document store backing all Waymark state.
type Store struct {
	db *badger.DB
}

// Open opens or creates the document store at the given directory path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = newBadgerLogger()

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open BadgerDB handle. Used by tests.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// badgerLogger adapts BadgerDB's internal logging to zerolog.
type badgerLogger struct{}

func newBadgerLogger() badgerLogger { return badgerLogger{} }

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Str("component", "badger").Msgf(format, args...)
}
