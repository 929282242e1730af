package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/connection"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/tcp"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/websocket"
)

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	var registry *tictactoe.RoomRegistry
	if conf.Redis.Enabled {
		redisClient, err := redis.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		publisher := redis.NewPublisher(logger, redisClient, conf.Redis.Channel, redis.DefaultPublisherBuffer)
		group.Go(func() error {
			log.Info("Starting event publisher", "channel", conf.Redis.Channel)
			return publisher.Run(ctx)
		})

		registry = tictactoe.NewRoomRegistry(logger, publisher)
	} else {
		registry = tictactoe.NewRoomRegistry(logger, nil)
	}

	sessions := usecase.NewSessionHandler(logger, registry, usecase.Limits{
		CommandsPerSecond: conf.Session.CommandsPerSecond,
		CommandBurst:      conf.Session.CommandBurst,
	})

	options := connection.Options{
		OutboundBuffer: conf.Session.OutboundBuffer,
		WriteTimeout:   conf.Session.WriteTimeout,
	}

	// run TCP line server
	group.Go(func() error {
		log.Info("Starting TCP server", "port", conf.TCPPort)
		if err := tcp.New(logger, sessions, options).Start(ctx, conf.TCPPort); err != nil {
			return fmt.Errorf("TCP server error: %w", err)
		}

		return nil
	})

	// run HTTP server with the WebSocket endpoint
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)

		wsServer := websocket.New(logger, sessions, conf.AllowedOrigins, options)
		router := rest.NewRouter(logger, registry, wsServer.Handler(ctx), conf.AllowedOrigins)

		if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
