package entity

// Player is a named participant of a room. Names are not unique across connections.
type Player struct {
	Name string `json:"name"`
	Mark Mark   `json:"mark,omitempty"`
}
