package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chatbook/chatbook-backend/env"
	"github.com/chatbook/chatbook-backend/middleware"
)

func SetupMiddlewares(r *chi.Mux) {
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Expo-Push-Token"},
		AllowCredentials: true,
	}))
	r.Use(middleware.WithDeviceInfo)
}

func New(h http.Handler) *http.Server {
	return &http.Server{
		Addr:        ":" + env.APP_PORT,
		Handler:     h,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
}
