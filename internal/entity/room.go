package entity

import "time"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusOngoing  RoomStatus = "ongoing"
	StatusFinished RoomStatus = "finished"
)

const MaxPlayers = 2

// PlayerMarks fixes symbol assignment by seat: first joiner is O, second is X.
var PlayerMarks = [MaxPlayers]Mark{MarkO, MarkX}

// RoomInfo is a point-in-time view of a room.
type RoomInfo struct {
	Name    string     `json:"name"`
	Status  RoomStatus `json:"status"`
	Players []Player   `json:"players"`
	Moves   int        `json:"moves"`
}

type EventType string

const (
	EventRoomCreated EventType = "room_created"
	EventGameStarted EventType = "game_started"
	EventGameOver    EventType = "game_over"
)

// RoomEvent describes a room lifecycle transition.
type RoomEvent struct {
	Type    EventType `json:"type"`
	Room    string    `json:"room"`
	Players []Player  `json:"players,omitempty"`
	Outcome string    `json:"outcome,omitempty"`
	Winner  string    `json:"winner,omitempty"`
	At      time.Time `json:"at"`
}
