package connection

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrClosed       = errors.New("connection is closed")
	ErrSlowConsumer = errors.New("outbound queue is full")
)

const DefaultOutboundBuffer = 64

// Options tune every connection accepted by a server.
type Options struct {
	OutboundBuffer int
	WriteTimeout   time.Duration
}

// Transport moves protocol lines over one client connection.
// WriteMessage receives one message unit: lines joined by '\n', without a trailing newline.
type Transport interface {
	ReadLine() (string, error)
	WriteMessage(message string) error
	Close() error
	RemoteAddr() string
}

// Conn is a client connection with a bounded outbound queue.
// Send never blocks; a single writer goroutine (WritePump) drains the queue.
type Conn struct {
	id        string
	transport Transport
	logger    *slog.Logger

	outbound chan string
	done     chan struct{}

	mu     sync.Mutex
	closed bool

	closeTransport sync.Once
}

func New(transport Transport, logger *slog.Logger, outboundBuffer int) *Conn {
	if outboundBuffer <= 0 {
		outboundBuffer = DefaultOutboundBuffer
	}

	id := ulid.MustNew(ulid.Now(), rand.Reader).String()

	return &Conn{
		id:        id,
		transport: transport,
		logger:    logger.With("session", id, "remote", transport.RemoteAddr()),
		outbound:  make(chan string, outboundBuffer),
		done:      make(chan struct{}),
	}
}

func (that *Conn) ID() string {
	return that.id
}

func (that *Conn) Logger() *slog.Logger {
	return that.logger
}

// Send queues lines as one message unit.
// When the queue is full the connection is dropped and ErrSlowConsumer is returned.
func (that *Conn) Send(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return ErrClosed
	}

	select {
	case that.outbound <- strings.Join(lines, "\n"):
		return nil
	default:
		that.logger.Warn("dropping slow consumer", "queued", len(that.outbound))
		that.closeLocked()
		that.abort()

		return ErrSlowConsumer
	}
}

func (that *Conn) ReadLine() (string, error) {
	return that.transport.ReadLine()
}

// Close stops accepting messages. Queued messages are still written
// before the transport is closed by WritePump.
func (that *Conn) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closeLocked()
}

// Abort closes the transport immediately, dropping queued messages.
func (that *Conn) Abort() {
	that.Close()
	that.abort()
}

// Done is closed once WritePump has returned.
func (that *Conn) Done() <-chan struct{} {
	return that.done
}

// Run starts the writer, calls serve and then flushes and closes the connection.
// Canceling ctx closes the transport so a blocked read returns.
func (that *Conn) Run(ctx context.Context, serve func(ctx context.Context, conn *Conn) error) error {
	go that.WritePump()

	stop := context.AfterFunc(ctx, that.Abort)
	defer stop()

	err := serve(ctx, that)

	that.Close()
	<-that.Done()

	return err
}

// WritePump writes queued messages until the connection is closed or a write fails.
func (that *Conn) WritePump() {
	log := that.logger.With("method", "WritePump")

	defer func() {
		that.abort()
		close(that.done)
	}()

	for message := range that.outbound {
		if err := that.transport.WriteMessage(message); err != nil {
			log.Debug("failed to write message", "error", err)
			that.Close()

			return
		}
	}
}

func (that *Conn) closeLocked() {
	if that.closed {
		return
	}

	that.closed = true
	close(that.outbound)
}

func (that *Conn) abort() {
	that.closeTransport.Do(func() {
		if err := that.transport.Close(); err != nil {
			that.logger.Debug("failed to close transport", "error", err)
		}
	})
}
