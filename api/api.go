package api

import (
	"encoding/json"
	"net/http"
)

// Error is the wire shape of every failure: a stable machine-readable reason
// plus a human-readable message.
type Error struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, reason, message string) {
	WriteJSON(w, status, Error{Reason: reason, Message: message})
}
