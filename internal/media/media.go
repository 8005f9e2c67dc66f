// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package media persists uploaded marker photos and videos to local disk.
// Files are written under a single uploads directory and served back at
// the /uploads/ URL prefix.
package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/waymark-app/waymark/internal/metrics"
)

// URLPrefix is the public path prefix under which saved files are served.
const URLPrefix = "/uploads/"

// Storage writes uploaded files into a local directory.
type Storage struct {
	dir string
}

// NewStorage creates the uploads directory if needed and returns a Storage
// rooted there.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes one multipart upload to disk and returns its public URL path.
// The stored name is the upload time in unix milliseconds joined to the
// sanitized original filename, so repeated uploads of the same file do not
// collide.
func (s *Storage) Save(fh *multipart.FileHeader, kind string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	name := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + sanitizeFilename(fh.Filename)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create media file %s: %w", name, err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return "", fmt.Errorf("write media file %s: %w", name, err)
	}

	metrics.RecordMediaSaved(kind, n)
	return URLPrefix + name, nil
}

// sanitizeFilename strips any path components and characters that could
// escape the uploads directory or break URLs.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "upload"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := b.String()
	if strings.Trim(out, "._") == "" {
		return "upload"
	}
	return out
}
