package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/connection"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

type sessionHandler interface {
	Serve(ctx context.Context, conn usecase.Client) error
}

// Server accepts line protocol clients over TCP.
type Server struct {
	logger   *slog.Logger
	sessions sessionHandler
	options  connection.Options
}

func New(logger *slog.Logger, sessions sessionHandler, options connection.Options) *Server {
	return &Server{
		logger:   logger.With("component", "tcp"),
		sessions: sessions,
		options:  options,
	}
}

// Start - listens on port and serves clients until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return that.Serve(ctx, listener)
}

// Serve accepts connections on listener. It closes the listener and waits
// for all sessions to end once ctx is canceled.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve")

	stop := context.AfterFunc(ctx, func() {
		if err := listener.Close(); err != nil {
			log.Debug("failed to close listener", "error", err)
		}
	})
	defer stop()

	log.Info("accepting connections", "addr", listener.Addr().String())

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			return fmt.Errorf("failed to accept connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			that.handleConnection(ctx, netConn)
		}()
	}
}

func (that *Server) handleConnection(ctx context.Context, netConn net.Conn) {
	transport := connection.NewLineTransport(netConn, that.options.WriteTimeout)
	conn := connection.New(transport, that.logger, that.options.OutboundBuffer)

	log := conn.Logger().With("method", "handleConnection")
	log.Info("client connected")

	if err := conn.Run(ctx, that.serve); err != nil {
		log.Error("session failed", "error", err)
	}

	log.Info("client disconnected")
}

func (that *Server) serve(ctx context.Context, conn *connection.Conn) error {
	return that.sessions.Serve(ctx, conn)
}
