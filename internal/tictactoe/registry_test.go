package tictactoe

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/protocol"
)

func TestRoomRegistry_CreateRoom(t *testing.T) {
	t.Run("Owner is seated and notified in order", func(t *testing.T) {
		// Given: an empty registry
		events := &eventRecorder{}
		registry := NewRoomRegistry(testLogger(), events)
		alice, out := newPlayer("alice")

		// When: alice creates a room
		room, err := registry.CreateRoom("r1", alice)

		// Then: alice holds slot one and the room is open
		require.NoError(t, err)
		assert.Equal(t, "r1", room.Name())
		assert.Equal(t, []string{"ROOM_CREATED r1", "JOINED r1", protocol.MsgWaiting}, out.Lines())
		assert.Equal(t, entity.MarkO, alice.Mark)
		assert.Equal(t, []entity.EventType{entity.EventRoomCreated}, events.Types())
	})

	t.Run("Room without owner", func(t *testing.T) {
		registry := NewRoomRegistry(testLogger(), nil)

		room, err := registry.CreateRoom("r1", nil)

		require.NoError(t, err)
		info := room.Info()
		assert.Equal(t, entity.StatusWaiting, info.Status)
		assert.Empty(t, info.Players)
	})

	t.Run("Duplicate name is rejected", func(t *testing.T) {
		registry := NewRoomRegistry(testLogger(), nil)
		_, err := registry.CreateRoom("r1", nil)
		require.NoError(t, err)
		bob, out := newPlayer("bob")

		_, err = registry.CreateRoom("r1", bob)

		require.ErrorIs(t, err, apperror.ErrNameTaken)
		assert.Empty(t, out.Lines())
		assert.Equal(t, []string{"r1"}, slices.Collect(registry.Names()))
	})

	t.Run("Concurrent creates of one name have one winner", func(t *testing.T) {
		// Given: many clients racing to create the same room
		registry := NewRoomRegistry(testLogger(), nil)

		const racers = 32
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			taken   int
		)

		// When: they all create it at once
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()

				player, _ := newPlayer("p")
				_, err := registry.CreateRoom("r1", player)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					created++
				} else if assert.ErrorIs(t, err, apperror.ErrNameTaken) {
					taken++
				}
			}()
		}
		wg.Wait()

		// Then: exactly one succeeded and the name is listed once
		assert.Equal(t, 1, created)
		assert.Equal(t, racers-1, taken)
		assert.Equal(t, []string{"r1"}, slices.Collect(registry.Names()))
	})

	t.Run("Creator always gets the first slot under a racing join", func(t *testing.T) {
		for i := range 50 {
			registry := NewRoomRegistry(testLogger(), nil)
			owner, _ := newPlayer("owner")
			joiner, _ := newPlayer("joiner")
			name := fmt.Sprintf("r%d", i)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					room, err := registry.Get(name)
					if err == nil {
						assert.NoError(t, room.Join(joiner))
						return
					}
				}
			}()

			_, err := registry.CreateRoom(name, owner)
			require.NoError(t, err)
			<-done

			assert.Equal(t, entity.MarkO, owner.Mark)
			assert.Equal(t, entity.MarkX, joiner.Mark)
		}
	})
}

func TestRoomRegistry_Get(t *testing.T) {
	registry := NewRoomRegistry(testLogger(), nil)
	created, err := registry.CreateRoom("r1", nil)
	require.NoError(t, err)

	room, err := registry.Get("r1")
	require.NoError(t, err)
	assert.Same(t, created, room)

	_, err = registry.Get("nope")
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRoomRegistry_Names(t *testing.T) {
	t.Run("Empty registry yields nothing", func(t *testing.T) {
		registry := NewRoomRegistry(testLogger(), nil)

		assert.Empty(t, slices.Collect(registry.Names()))
	})

	t.Run("Creation order and restartable", func(t *testing.T) {
		// Given: three rooms created in order
		registry := NewRoomRegistry(testLogger(), nil)
		for _, name := range []string{"b", "a", "c"} {
			_, err := registry.CreateRoom(name, nil)
			require.NoError(t, err)
		}

		names := registry.Names()

		// Then: every pass yields the same order
		assert.Equal(t, []string{"b", "a", "c"}, slices.Collect(names))
		assert.Equal(t, []string{"b", "a", "c"}, slices.Collect(names))
	})

	t.Run("Finished rooms stay listed", func(t *testing.T) {
		registry := NewRoomRegistry(testLogger(), nil)
		alice, _ := newPlayer("alice")
		bob, _ := newPlayer("bob")
		room, err := registry.CreateRoom("r1", alice)
		require.NoError(t, err)
		require.NoError(t, room.Join(bob))
		for _, move := range []struct {
			player *Participant
			cell   int
		}{{alice, 0}, {bob, 3}, {alice, 1}, {bob, 4}, {alice, 2}} {
			_, err = room.ApplyMove(move.player, move.cell)
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"r1"}, slices.Collect(registry.Names()))
		assert.Equal(t, entity.StatusFinished, registry.Rooms()[0].Status)
	})

	t.Run("Listing while rooms are created", func(t *testing.T) {
		registry := NewRoomRegistry(testLogger(), nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 100 {
				_, err := registry.CreateRoom(fmt.Sprintf("r%d", i), nil)
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				names := slices.Collect(registry.Names())
				// every snapshot is a prefix of the creation order
				for i, name := range names {
					assert.Equal(t, fmt.Sprintf("r%d", i), name)
				}
			}
		}()
		wg.Wait()

		assert.Len(t, slices.Collect(registry.Names()), 100)
	})
}

func TestRoomRegistry_Rooms(t *testing.T) {
	registry := NewRoomRegistry(testLogger(), nil)
	alice, _ := newPlayer("alice")
	_, err := registry.CreateRoom("r1", alice)
	require.NoError(t, err)
	_, err = registry.CreateRoom("r2", nil)
	require.NoError(t, err)

	infos := registry.Rooms()

	require.Len(t, infos, 2)
	assert.Equal(t, entity.RoomInfo{
		Name:    "r1",
		Status:  entity.StatusWaiting,
		Players: []entity.Player{{Name: "alice", Mark: entity.MarkO}},
	}, infos[0])
	assert.Equal(t, "r2", infos[1].Name)
	assert.Empty(t, infos[1].Players)
}
