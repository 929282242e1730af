package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net"
	"slices"

	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type roomRegistry interface {
	CreateRoom(name string, owner *tictactoe.Participant) (*tictactoe.Room, error)
	Get(name string) (*tictactoe.Room, error)
	Names() iter.Seq[string]
}

// Client is the connection a session talks to.
type Client interface {
	tictactoe.Sender

	ID() string
	ReadLine() (string, error)
}

// Limits throttles commands per session. A non-positive rate disables throttling.
type Limits struct {
	CommandsPerSecond float64
	CommandBurst      int
}

// SessionHandler drives one client through name registration and room commands.
type SessionHandler struct {
	logger *slog.Logger
	rooms  roomRegistry
	limits Limits

	handlers map[string]func(sess *session, args []string) error
}

type session struct {
	conn    Client
	log     *slog.Logger
	limiter *rate.Limiter

	player *tictactoe.Participant
	room   *tictactoe.Room
}

func NewSessionHandler(logger *slog.Logger, rooms roomRegistry, limits Limits) *SessionHandler {
	handler := &SessionHandler{
		logger: logger.With("component", "session"),
		rooms:  rooms,
		limits: limits,
	}

	handler.handlers = map[string]func(*session, []string) error{
		protocol.VerbCreate: handler.handleCreate,
		protocol.VerbList:   handler.handleList,
		protocol.VerbJoin:   handler.handleJoin,
		protocol.VerbMove:   handler.handleMove,
	}

	return handler
}

// Serve runs the session until the client disconnects or ctx is canceled.
// Closing the connection is left to the caller.
func (that *SessionHandler) Serve(ctx context.Context, conn Client) error {
	sess := &session{
		conn: conn,
		log:  that.logger.With("session", conn.ID()),
	}

	if that.limits.CommandsPerSecond > 0 {
		burst := max(that.limits.CommandBurst, 1)
		sess.limiter = rate.NewLimiter(rate.Limit(that.limits.CommandsPerSecond), burst)
	}

	sess.log.Debug("session started")
	sess.send(protocol.MsgEnterName)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := conn.ReadLine()
		if err != nil {
			sess.log.Debug("session ended", "player", sess.playerName(), "error", err)

			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("failed to read command: %w", err)
		}

		if sess.limiter != nil && !sess.limiter.Allow() {
			sess.reject(apperror.ErrTooManyCommands)
			continue
		}

		if sess.player == nil {
			that.register(sess, line)
			continue
		}

		that.dispatch(sess, line)
	}
}

func (that *SessionHandler) register(sess *session, line string) {
	name, err := protocol.ParseName(line)
	if err != nil {
		sess.reject(err)
		return
	}

	sess.player = tictactoe.NewParticipant(name, sess.conn)
	sess.log = sess.log.With("player", name)
	sess.log.Info("player registered")

	sess.send(protocol.NameSet(name))
}

func (that *SessionHandler) dispatch(sess *session, line string) {
	cmd, err := protocol.Parse(line)
	if err != nil {
		sess.reject(err)
		return
	}

	handler, ok := that.handlers[cmd.Verb]
	if !ok {
		sess.reject(fmt.Errorf("%w: %q", apperror.ErrInvalidCommand, cmd.Verb))
		return
	}

	if err = handler(sess, cmd.Args); err != nil {
		sess.reject(err)
	}
}

func (that *SessionHandler) handleCreate(sess *session, args []string) error {
	if len(args) != 1 {
		return apperror.ErrInvalidArguments
	}

	if sess.room != nil {
		return apperror.ErrAlreadyInRoom
	}

	room, err := that.rooms.CreateRoom(args[0], sess.player)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	sess.room = room

	return nil
}

func (that *SessionHandler) handleList(sess *session, args []string) error {
	if len(args) != 0 {
		return apperror.ErrInvalidArguments
	}

	sess.send(protocol.RoomList(slices.Collect(that.rooms.Names()))...)

	return nil
}

func (that *SessionHandler) handleJoin(sess *session, args []string) error {
	if len(args) != 1 {
		return apperror.ErrInvalidArguments
	}

	if sess.room != nil {
		return apperror.ErrAlreadyInRoom
	}

	room, err := that.rooms.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to find room: %w", err)
	}

	if err = room.Join(sess.player); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	sess.room = room

	return nil
}

func (that *SessionHandler) handleMove(sess *session, args []string) error {
	if sess.room == nil {
		return apperror.ErrNotInRoom
	}

	if len(args) != 1 {
		return apperror.ErrInvalidArguments
	}

	cell, err := protocol.ParseCell(args[0])
	if err != nil {
		return err
	}

	outcome, err := sess.room.ApplyMove(sess.player, cell)
	if err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	sess.log.Debug("move applied", "room", sess.room.Name(), "cell", cell, "outcome", outcome.String())

	return nil
}

func (that *session) send(lines ...string) {
	if err := that.conn.Send(lines...); err != nil {
		that.log.Debug("failed to send message", "error", err)
	}
}

func (that *session) reject(err error) {
	that.log.Debug("command rejected", "error", err)
	that.send(protocol.Error(protocol.ErrorText(err)))
}

func (that *session) playerName() string {
	if that.player == nil {
		return ""
	}

	return that.player.Name
}
