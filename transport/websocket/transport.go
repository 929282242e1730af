package websocket

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const maxFrameSize = 4096

// close codes that end a session without an error
var closeCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
	websocket.CloseAbnormalClosure,
}

// Transport carries the line protocol over a WebSocket. Every text frame from the
// client holds one command line; every outbound message unit is one text frame.
type Transport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	pending []string
}

func NewTransport(conn *websocket.Conn, writeTimeout time.Duration) (*Transport, error) {
	conn.SetReadLimit(maxFrameSize)

	// the HTTP server's request deadline survives the upgrade
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to reset read deadline: %w", err)
	}

	return &Transport{
		conn:         conn,
		writeTimeout: writeTimeout,
	}, nil
}

// ReadLine returns the next command line. A frame holding several lines is split.
func (that *Transport) ReadLine() (string, error) {
	for len(that.pending) == 0 {
		messageType, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, closeCodes...) {
				return "", io.EOF
			}

			return "", fmt.Errorf("failed to read frame: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		that.pending = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}

	line := that.pending[0]
	that.pending = that.pending[1:]

	return strings.TrimSuffix(line, "\r"), nil
}

func (that *Transport) WriteMessage(message string) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Transport) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	return that.conn.Close()
}

func (that *Transport) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
