package protocol

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	MsgEnterName = "ENTER_NAME"
	MsgWaiting   = "WAITING"
	MsgRoomList  = "ROOMLIST"
	MsgBoard     = "BOARD"
)

func NameSet(name string) string {
	return "NAME_SET " + name
}

func RoomCreated(room string) string {
	return "ROOM_CREATED " + room
}

func Joined(room string) string {
	return "JOINED " + room
}

func GameStart(first, second entity.Player) string {
	return fmt.Sprintf("GAME_START %s %s %s %s", first.Name, first.Mark, second.Name, second.Mark)
}

func Turn(name string) string {
	return "TURN " + name
}

func GameOverDraw() string {
	return "GAME_OVER DRAW"
}

func GameOverWin(name string) string {
	return "GAME_OVER WIN " + name
}

func Error(text string) string {
	return "ERROR " + text
}

// Board returns the BOARD header followed by the five rendered rows.
func Board(board *entity.Board) []string {
	return append([]string{MsgBoard}, board.Render()...)
}

// RoomList returns the ROOMLIST header followed by one line per name.
func RoomList(names []string) []string {
	return append([]string{MsgRoomList}, names...)
}

// ErrorText maps an error to the text of its ERROR reply.
func ErrorText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidArguments):
		return "Invalid # of arguments."
	case errors.Is(err, apperror.ErrInvalidMove), errors.Is(err, apperror.ErrOutOfRange):
		return "Invalid Move. Please use a number 0-8."
	case errors.Is(err, apperror.ErrNameRequired):
		return "Enter your name first."
	case errors.Is(err, apperror.ErrNotInRoom):
		return "Not in a room."
	case errors.Is(err, apperror.ErrAlreadyInRoom):
		return "Already in a room."
	case errors.Is(err, apperror.ErrTooManyCommands):
		return "Too many commands."
	case errors.Is(err, apperror.ErrNameTaken):
		return "Room already exists."
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "Room does not exist."
	case errors.Is(err, apperror.ErrRoomFull):
		return "Room is full."
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "Not your turn."
	case errors.Is(err, apperror.ErrGameIsNotStarted):
		return "Game hasn't started."
	case errors.Is(err, apperror.ErrGameFinished):
		return "Game is over."
	case errors.Is(err, apperror.ErrPositionOccupied):
		return "Position already taken."
	default:
		return "Invalid Command."
	}
}
