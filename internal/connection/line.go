package connection

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const maxLineLength = 4096

// LineTransport speaks newline-terminated text over a stream connection.
type LineTransport struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
}

func NewLineTransport(conn net.Conn, writeTimeout time.Duration) *LineTransport {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), maxLineLength)

	return &LineTransport{
		conn:         conn,
		scanner:      scanner,
		writeTimeout: writeTimeout,
	}
}

// ReadLine returns the next line without its terminator. A trailing '\r' is removed.
func (that *LineTransport) ReadLine() (string, error) {
	if !that.scanner.Scan() {
		if err := that.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read line: %w", err)
		}

		return "", io.EOF
	}

	return strings.TrimSuffix(that.scanner.Text(), "\r"), nil
}

func (that *LineTransport) WriteMessage(message string) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if _, err := that.conn.Write([]byte(message + "\n")); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *LineTransport) Close() error {
	return that.conn.Close()
}

func (that *LineTransport) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
