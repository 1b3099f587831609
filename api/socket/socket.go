package socket

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/middleware"
	"github.com/chatbook/chatbook-backend/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handlers struct {
	logger *logrus.Logger
	hub    *ws.Hub
}

func NewHandlers(logger *logrus.Logger, hub *ws.Hub) *Handlers {
	return &Handlers{logger: logger, hub: hub}
}

// connect upgrades the transport and binds the connection to the
// authenticated account. The binding comes from the verified session only;
// there is no client-supplied join.
func (h *Handlers) connect(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade")
		return
	}
	c := ws.NewClient(h.logger, h.hub, conn, u.ID)
	h.hub.Join(c)
	go c.WritePump()
	go c.ReadPump()
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Get("/ws", h.connect)
	})
}
