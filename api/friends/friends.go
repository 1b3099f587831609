package friends

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/api"
	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/fanout"
	friendsvc "github.com/chatbook/chatbook-backend/friends"
	"github.com/chatbook/chatbook-backend/middleware"
)

type Handlers struct {
	logger *logrus.Logger
	svc    *friendsvc.Service
	fanout *fanout.Coordinator
}

func NewHandlers(logger *logrus.Logger, svc *friendsvc.Service, coordinator *fanout.Coordinator) *Handlers {
	return &Handlers{logger: logger, svc: svc, fanout: coordinator}
}

func (h *Handlers) sendRequest(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	var body struct {
		RecipientID *uint `json:"recipient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RecipientID == nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "recipient_id is required")
		return
	}
	ev, err := h.svc.SendRequest(r.Context(), u.ID, *body.RecipientID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	n, err := h.fanout.Dispatch(r.Context(), ev)
	if err != nil {
		h.logger.WithError(err).Error("dispatch friend request")
		api.WriteError(w, http.StatusInternalServerError, "internal", "could not record notification")
		return
	}
	api.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handlers) handleRequest(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	senderID, err := strconv.ParseUint(chi.URLParam(r, "senderID"), 10, 64)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "malformed sender id")
		return
	}
	var body struct {
		Action *string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Action == nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "action is required")
		return
	}
	ev, err := h.svc.HandleRequest(r.Context(), u.ID, uint(senderID), *body.Action)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if ev != nil {
		if _, err := h.fanout.Dispatch(r.Context(), ev); err != nil {
			h.logger.WithError(err).Error("dispatch accept")
			api.WriteError(w, http.StatusInternalServerError, "internal", "could not record notification")
			return
		}
	}
	msg := "friend request declined"
	if ev != nil {
		msg = "friend request accepted"
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *Handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	sugs, err := h.svc.Suggestions(r.Context(), u.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]OutSuggestion, 0, len(sugs))
	for _, s := range sugs {
		out = append(out, NewOutSuggestion(s))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, friendsvc.ErrInvalidTarget):
		api.WriteError(w, http.StatusBadRequest, "invalid_target", "cannot send a friend request to yourself")
	case errors.Is(err, friendsvc.ErrInvalidAction):
		api.WriteError(w, http.StatusBadRequest, "bad_request", "action must be accept or decline")
	case errors.Is(err, friendsvc.ErrDuplicateRequest):
		api.WriteError(w, http.StatusBadRequest, "duplicate_request", "friend request already pending")
	case errors.Is(err, friendsvc.ErrAlreadyFriends):
		api.WriteError(w, http.StatusBadRequest, "already_friends", "you are already friends")
	case errors.Is(err, friendsvc.ErrNoSuchRequest):
		api.WriteError(w, http.StatusBadRequest, "no_such_request", "no pending friend request from that user")
	case errors.Is(err, friendsvc.ErrUserNotFound):
		api.WriteError(w, http.StatusNotFound, "not_found", "user not found")
	default:
		h.logger.WithError(err).Error("friend request failed")
		api.WriteError(w, http.StatusInternalServerError, "internal", "temporary failure, try again")
	}
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/friends", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Post("/requests", h.sendRequest)
		r.Post("/requests/{senderID}", h.handleRequest)
		r.With(middleware.NoCache).Get("/suggestions", h.suggestions)
	})
}
