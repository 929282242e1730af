package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	ListRooms(w http.ResponseWriter, r *http.Request)
	GetRoom(w http.ResponseWriter, r *http.Request)
}

type roomRegistry interface {
	Get(name string) (*tictactoe.Room, error)
	Rooms() []entity.RoomInfo
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger *slog.Logger
	rooms  roomRegistry
}

func NewHandlers(logger *slog.Logger, rooms roomRegistry) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// ListRooms - returns every room in creation order.
func (that *handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, that.rooms.Rooms())
}

func (that *handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetRoom")

	name := chi.URLParam(r, "name")

	room, err := that.rooms.Get(name)
	if err != nil {
		if errors.Is(err, apperror.ErrRoomNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{Error: "room does not exist"})
			return
		}

		log.Error("failed to get room", "room", name, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "internal server error"})
		return
	}

	render.JSON(w, r, room.Info())
}
