package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/connection"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

type sessionHandler interface {
	Serve(ctx context.Context, conn usecase.Client) error
}

// Server upgrades HTTP requests and runs a line protocol session on each socket.
type Server struct {
	logger   *slog.Logger
	sessions sessionHandler
	options  connection.Options

	upgrader       websocket.Upgrader
	allowedOrigins []string
}

func New(logger *slog.Logger, sessions sessionHandler, allowedOrigins []string, options connection.Options) *Server {
	server := &Server{
		logger:         logger.With("component", "websocket"),
		sessions:       sessions,
		options:        options,
		allowedOrigins: allowedOrigins,
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	return server
}

// Handler returns the upgrade handler. Sessions end when ctx is canceled.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	}
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	wsConn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		log.Debug("failed to upgrade connection", "error", err)
		return
	}

	transport, err := NewTransport(wsConn, that.options.WriteTimeout)
	if err != nil {
		log.Error("failed to prepare connection", "error", err)

		if closeErr := wsConn.Close(); closeErr != nil {
			log.Debug("failed to close connection", "error", closeErr)
		}

		return
	}

	conn := connection.New(transport, that.logger, that.options.OutboundBuffer)

	log = conn.Logger().With("method", "upgradeToWebSocket")
	log.Info("WebSocket connection established")

	if err = conn.Run(ctx, that.serve); err != nil {
		log.Error("session failed", "error", err)
	}

	log.Info("WebSocket connection closed")
}

func (that *Server) serve(ctx context.Context, conn *connection.Conn) error {
	return that.sessions.Serve(ctx, conn)
}

func (that *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(that.allowedOrigins, "*") {
		return true
	}

	if slices.Contains(that.allowedOrigins, origin) {
		return true
	}

	// same-origin requests are always fine
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}

	that.logger.Warn("blocked WebSocket connection from disallowed origin", "origin", origin)

	return false
}
