package apperror

import (
	"errors"
	"fmt"
)

// Parent errors, one per failure class. Every concrete error below matches
// exactly one of them with errors.Is.
var (
	ErrProtocol = errors.New("protocol error")
	ErrRoom     = errors.New("room error")
	ErrGame     = errors.New("game error")
)

var (
	ErrInvalidCommand   = fmt.Errorf("%w: invalid command", ErrProtocol)
	ErrInvalidArguments = fmt.Errorf("%w: invalid number of arguments", ErrProtocol)
	ErrInvalidMove      = fmt.Errorf("%w: move must be a number 0-8", ErrProtocol)
	ErrNameRequired     = fmt.Errorf("%w: name is not set", ErrProtocol)
	ErrNotInRoom        = fmt.Errorf("%w: not in a room", ErrProtocol)
	ErrAlreadyInRoom    = fmt.Errorf("%w: already in a room", ErrProtocol)
	ErrTooManyCommands  = fmt.Errorf("%w: too many commands", ErrProtocol)
)

var (
	ErrNameTaken    = fmt.Errorf("%w: room already exists", ErrRoom)
	ErrRoomNotFound = fmt.Errorf("%w: room does not exist", ErrRoom)
	ErrRoomFull     = fmt.Errorf("%w: room is full", ErrRoom)
)

var (
	ErrNotYourTurn      = fmt.Errorf("%w: it's not your turn", ErrGame)
	ErrWrongPhase       = fmt.Errorf("%w: wrong game phase", ErrGame)
	ErrGameIsNotStarted = fmt.Errorf("%w: game is not started", ErrWrongPhase)
	ErrGameFinished     = fmt.Errorf("%w: game is already finished", ErrWrongPhase)
	ErrPositionOccupied = fmt.Errorf("%w: cell is already occupied", ErrGame)
	ErrOutOfRange       = fmt.Errorf("%w: invalid cell index", ErrGame)
)
