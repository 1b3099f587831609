package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/api"
	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/middleware"
	notifsvc "github.com/chatbook/chatbook-backend/notifications"
)

type Handlers struct {
	logger *logrus.Logger
	svc    *notifsvc.Service
}

func NewHandlers(logger *logrus.Logger, svc *notifsvc.Service) *Handlers {
	return &Handlers{logger: logger, svc: svc}
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ns, err := h.svc.List(r.Context(), u.ID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ns)
}

func (h *Handlers) markRead(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	id, err := strconv.ParseUint(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "malformed notification id")
		return
	}
	n, err := h.svc.MarkRead(r.Context(), uint(id), u.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, n)
}

func (h *Handlers) markAllRead(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	count, err := h.svc.MarkAllRead(r.Context(), u.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	id, err := strconv.ParseUint(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "malformed notification id")
		return
	}
	if err := h.svc.Delete(r.Context(), uint(id), u.ID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}

func (h *Handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	count, err := h.svc.UnreadCount(r.Context(), u.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, notifsvc.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, "not_found", "notification not found")
		return
	}
	h.logger.WithError(err).Error("notification operation failed")
	api.WriteError(w, http.StatusInternalServerError, "internal", "temporary failure, try again")
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger), middleware.NoCache)
		r.Get("/", h.list)
		r.Get("/unread-count", h.unreadCount)
		r.Patch("/read-all", h.markAllRead)
		r.Patch("/{notificationID}/read", h.markRead)
		r.Delete("/{notificationID}", h.delete)
	})
}
