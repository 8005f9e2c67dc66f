// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waymark-app/waymark/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler form for use with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers into the Chi route tree.
type Router struct {
	handler *Handler
}

// NewRouter creates a Router for the given handler set.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.handler.config.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", router.handler.Root)
		r.Get("/users", router.handler.Users)
		r.Post("/register", router.handler.Register)
		r.Post("/login", router.handler.Login)
		r.Post("/markers", router.handler.CreateMarker)
		r.Patch("/markers/{id}", router.handler.EditMarker)
	})

	// The upgrade endpoint skips the metrics wrapper, which does not
	// implement http.Hijacker.
	r.Get("/ws", router.handler.WebSocket)

	r.Handle("/metrics", promhttp.Handler())

	// Uploaded media is served directly from the media directory.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(router.handler.media.Dir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	return r
}
