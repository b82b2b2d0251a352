// Package server exposes the chat over HTTP: account and captcha endpoints,
// and the authenticated WebSocket upgrade that admits connections to the hub.
package server

import (
	"log/slog"
	"net/http"

	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/config"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Server routes HTTP requests to the backends and the hub.
type Server struct {
	log            *slog.Logger
	hub            *chat.Hub
	backends       Backends
	origins        *originPolicy
	upgrader       websocket.Upgrader
	maxMessageSize int64
	router         *httprouter.Router
}

// New builds a Server for hub. The hub's policy must already match backends.
func New(cfg config.Config, hub *chat.Hub, backends Backends, log *slog.Logger) *Server {
	s := &Server{
		log:            log,
		hub:            hub,
		backends:       backends,
		origins:        newOriginPolicy(cfg.Origins(), log),
		maxMessageSize: cfg.MaxMessageSize,
		router:         httprouter.New(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.check,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
