package middleware

import "net/http"

// NoCache marks per-user reads (notifications, unread badge) as
// non-cacheable so proxies never serve another account's payload.
func NoCache(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		h.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
