package tictactoe

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/protocol"
)

// RoomRegistry maps room names to rooms for the lifetime of the process.
// Names are never released, finished rooms stay addressable.
//
// mu guards only the map and the creation order; it is never held while a room lock is
// being acquired, so listing and lookup never wait on a game in progress.
type RoomRegistry struct {
	logger *slog.Logger
	events eventPublisher

	mu    sync.RWMutex
	rooms map[string]*Room
	order []string
}

func NewRoomRegistry(logger *slog.Logger, events eventPublisher) *RoomRegistry {
	return &RoomRegistry{
		logger: logger.With("component", "rooms"),
		events: events,
		rooms:  make(map[string]*Room),
	}
}

// CreateRoom registers a new open room. When owner is set it is seated in the
// first slot before any other caller can reach the room, and receives
// ROOM_CREATED, JOINED and WAITING in that order.
func (that *RoomRegistry) CreateRoom(name string, owner *Participant) (*Room, error) {
	room := newRoom(name, that.logger, that.events)

	// the room is locked before it becomes visible, so a concurrent JOIN waits
	// until the owner holds slot one
	room.mu.Lock()
	defer room.mu.Unlock()

	if err := that.insert(room); err != nil {
		return nil, err
	}

	that.logger.Info("room created", "room", name)
	room.publish(entity.RoomEvent{Type: entity.EventRoomCreated})

	if owner == nil {
		return room, nil
	}

	room.send(owner, protocol.RoomCreated(name))
	if err := room.join(owner); err != nil {
		return nil, fmt.Errorf("failed to seat room owner: %w", err)
	}

	return room, nil
}

func (that *RoomRegistry) Get(name string) (*Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, name)
	}

	return room, nil
}

// Names yields room names in creation order. Every iteration works on the
// names registered when it started, so it is safe alongside CreateRoom.
func (that *RoomRegistry) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		that.mu.RLock()
		names := that.order[:len(that.order):len(that.order)]
		that.mu.RUnlock()

		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}
}

// Rooms returns a snapshot of every room in creation order.
func (that *RoomRegistry) Rooms() []entity.RoomInfo {
	infos := make([]entity.RoomInfo, 0)
	for name := range that.Names() {
		room, err := that.Get(name)
		if err != nil {
			continue
		}

		infos = append(infos, room.Info())
	}

	return infos
}

func (that *RoomRegistry) insert(room *Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, exists := that.rooms[room.name]; exists {
		return fmt.Errorf("%w: %s", apperror.ErrNameTaken, room.name)
	}

	that.rooms[room.name] = room
	that.order = append(that.order, room.name)

	return nil
}
