package tictactoe

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/protocol"
)

// Sender delivers protocol lines to one client. Implementations must not block:
// rooms call Send while holding their lock. All lines of one call arrive together.
type Sender interface {
	Send(lines ...string) error
}

type eventPublisher interface {
	Publish(event entity.RoomEvent)
}

// Participant is one connected player. Identity is the pointer, not the name.
type Participant struct {
	entity.Player

	conn Sender
}

func NewParticipant(name string, conn Sender) *Participant {
	return &Participant{
		Player: entity.Player{Name: name},
		conn:   conn,
	}
}

// Room runs a single two-player game. Join and ApplyMove are serialized by mu,
// including the broadcasts they trigger.
type Room struct {
	name   string
	logger *slog.Logger
	events eventPublisher

	mu      sync.Mutex
	players []*Participant
	board   entity.Board
	turn    int
	status  entity.RoomStatus
}

func newRoom(name string, logger *slog.Logger, events eventPublisher) *Room {
	return &Room{
		name:    name,
		logger:  logger.With("room", name),
		events:  events,
		players: make([]*Participant, 0, entity.MaxPlayers),
		status:  entity.StatusWaiting,
	}
}

func (that *Room) Name() string {
	return that.name
}

// Join seats player in the next free slot. The second join starts the game.
func (that *Room) Join(player *Participant) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.join(player)
}

// ApplyMove places the mark of player at cell and advances the game.
// On error nothing in the room changes.
func (that *Room) ApplyMove(player *Participant, cell int) (entity.Outcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmOngoingState(); err != nil {
		return entity.InProgress, err
	}

	seat := that.seatOf(player)
	if seat != that.turn {
		return entity.InProgress, apperror.ErrNotYourTurn
	}

	if err := that.board.Set(cell, player.Mark); err != nil {
		return entity.InProgress, fmt.Errorf("invalid turn: %w", err)
	}

	that.broadcast(protocol.Board(&that.board)...)

	outcome, winner := that.board.Evaluate()
	switch outcome {
	case entity.Win:
		that.finish(outcome, that.playerByMark(winner))
	case entity.Draw:
		that.finish(outcome, nil)
	default:
		that.turn = 1 - that.turn
		that.broadcast(protocol.Turn(that.players[that.turn].Name))
	}

	return outcome, nil
}

// Info returns a snapshot of the room for listings.
func (that *Room) Info() entity.RoomInfo {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.RoomInfo{
		Name:    that.name,
		Status:  that.status,
		Players: that.playerList(),
		Moves:   that.board.Moves(),
	}
}

func (that *Room) join(player *Participant) error {
	if that.seatOf(player) >= 0 {
		return apperror.ErrAlreadyInRoom
	}

	if len(that.players) >= entity.MaxPlayers {
		return fmt.Errorf("%w: %s", apperror.ErrRoomFull, that.name)
	}

	player.Mark = entity.PlayerMarks[len(that.players)]
	that.players = append(that.players, player)

	that.send(player, protocol.Joined(that.name))

	if len(that.players) < entity.MaxPlayers {
		that.send(player, protocol.MsgWaiting)
		return nil
	}

	that.start()

	return nil
}

func (that *Room) start() {
	that.status = entity.StatusOngoing
	that.turn = 0

	that.broadcast(protocol.GameStart(that.players[0].Player, that.players[1].Player))
	that.broadcast(protocol.Board(&that.board)...)
	that.broadcast(protocol.Turn(that.players[that.turn].Name))

	that.logger.Info("game started", "players", that.playerList())
	that.publish(entity.RoomEvent{Type: entity.EventGameStarted, Players: that.playerList()})
}

func (that *Room) finish(outcome entity.Outcome, winner *Participant) {
	that.status = entity.StatusFinished

	event := entity.RoomEvent{
		Type:    entity.EventGameOver,
		Players: that.playerList(),
		Outcome: outcome.String(),
	}

	if winner != nil {
		that.broadcast(protocol.GameOverWin(winner.Name))
		event.Winner = winner.Name
	} else {
		that.broadcast(protocol.GameOverDraw())
	}

	that.logger.Info("game finished", "outcome", outcome.String(), "winner", event.Winner)
	that.publish(event)
}

func (that *Room) confirmOngoingState() error {
	switch that.status {
	case entity.StatusWaiting:
		return apperror.ErrGameIsNotStarted
	case entity.StatusFinished:
		return apperror.ErrGameFinished
	default:
		return nil
	}
}

func (that *Room) seatOf(player *Participant) int {
	for i, p := range that.players {
		if p == player {
			return i
		}
	}

	return -1
}

func (that *Room) playerByMark(mark entity.Mark) *Participant {
	for _, p := range that.players {
		if p.Mark == mark {
			return p
		}
	}

	return nil
}

func (that *Room) playerList() []entity.Player {
	players := make([]entity.Player, 0, len(that.players))
	for _, p := range that.players {
		players = append(players, p.Player)
	}

	return players
}

func (that *Room) broadcast(lines ...string) {
	for _, p := range that.players {
		that.send(p, lines...)
	}
}

func (that *Room) send(player *Participant, lines ...string) {
	if err := player.conn.Send(lines...); err != nil {
		that.logger.Warn("failed to deliver message", "player", player.Name, "error", err)
	}
}

func (that *Room) publish(event entity.RoomEvent) {
	if that.events == nil {
		return
	}

	event.Room = that.name
	event.At = time.Now().UTC()
	that.events.Publish(event)
}
