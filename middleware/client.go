package middleware

import (
	"context"
	"net/http"
)

// WithExpoPushToken copies the device's push token into the context. Browser
// clients send no token; signin then creates a push-less session.
func WithExpoPushToken(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("X-Expo-Push-Token")
		ctx := context.WithValue(r.Context(), "expoPushToken", t)
		h.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}
