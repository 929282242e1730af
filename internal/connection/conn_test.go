package connection

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipe(t *testing.T, outboundBuffer int) (*Conn, net.Conn) {
	t.Helper()

	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(NewLineTransport(server, time.Second), logger, outboundBuffer), client
}

func TestConn_Send(t *testing.T) {
	t.Run("Message units are written in order", func(t *testing.T) {
		// Given: a connection with a running writer
		conn, client := newPipe(t, 8)
		go conn.WritePump()
		reader := bufio.NewReader(client)

		// When: a single line and a multi-line unit are sent
		require.NoError(t, conn.Send("WAITING"))
		require.NoError(t, conn.Send("ROOMLIST", "a", "b"))

		// Then: the client reads every line in order
		for _, expected := range []string{"WAITING", "ROOMLIST", "a", "b"} {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			assert.Equal(t, expected+"\n", line)
		}
	})

	t.Run("Full queue drops the slow consumer", func(t *testing.T) {
		// Given: a connection nobody drains
		conn, client := newPipe(t, 2)
		require.NoError(t, conn.Send("one"))
		require.NoError(t, conn.Send("two"))

		// When: the queue overflows
		err := conn.Send("three")

		// Then: the sender is not blocked and the connection is gone
		require.ErrorIs(t, err, ErrSlowConsumer)
		require.ErrorIs(t, conn.Send("four"), ErrClosed)

		_, err = client.Read(make([]byte, 1))
		assert.Error(t, err)
	})

	t.Run("Close flushes queued messages", func(t *testing.T) {
		conn, client := newPipe(t, 8)
		require.NoError(t, conn.Send("GAME_OVER DRAW"))
		conn.Close()

		go conn.WritePump()

		reader := bufio.NewReader(client)
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "GAME_OVER DRAW\n", line)

		_, err = reader.ReadString('\n')
		require.ErrorIs(t, err, io.EOF)

		<-conn.Done()
		assert.ErrorIs(t, conn.Send("late"), ErrClosed)
	})

	t.Run("Empty send is a no-op", func(t *testing.T) {
		conn, _ := newPipe(t, 1)

		require.NoError(t, conn.Send())
		require.NoError(t, conn.Send("only"))
	})
}

func TestConn_ReadLine(t *testing.T) {
	t.Run("Strips carriage returns", func(t *testing.T) {
		conn, client := newPipe(t, 1)

		go func() {
			_, _ = client.Write([]byte("alice\r\nLIST\n"))
		}()

		line, err := conn.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "alice", line)

		line, err = conn.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "LIST", line)
	})

	t.Run("Peer hang-up ends reading", func(t *testing.T) {
		conn, client := newPipe(t, 1)
		require.NoError(t, client.Close())

		_, err := conn.ReadLine()

		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("Abort unblocks a pending read", func(t *testing.T) {
		conn, _ := newPipe(t, 1)

		errCh := make(chan error, 1)
		go func() {
			_, err := conn.ReadLine()
			errCh <- err
		}()

		conn.Abort()

		select {
		case err := <-errCh:
			assert.Error(t, err)
		case <-time.After(time.Second):
			t.Fatal("read was not unblocked")
		}
	})

	t.Run("Every connection gets its own id", func(t *testing.T) {
		first, _ := newPipe(t, 1)
		second, _ := newPipe(t, 1)

		assert.Len(t, first.ID(), 26)
		assert.NotEqual(t, first.ID(), second.ID())
	})
}

func TestConn_Run(t *testing.T) {
	t.Run("Queued messages are flushed after serve returns", func(t *testing.T) {
		conn, client := newPipe(t, 4)
		reader := bufio.NewReader(client)

		errCh := make(chan error, 1)
		go func() {
			errCh <- conn.Run(context.Background(), func(_ context.Context, conn *Conn) error {
				return conn.Send("bye")
			})
		}()

		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "bye\n", line)
		require.NoError(t, <-errCh)
	})

	t.Run("Canceled context unblocks serve", func(t *testing.T) {
		conn, _ := newPipe(t, 4)
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- conn.Run(ctx, func(_ context.Context, conn *Conn) error {
				_, err := conn.ReadLine()
				return err
			})
		}()

		cancel()

		select {
		case err := <-errCh:
			assert.Error(t, err)
		case <-time.After(time.Second):
			t.Fatal("Run did not return")
		}
	})
}

func TestConn_Done(t *testing.T) {
	// Given: a connection whose writer is running
	conn, client := newPipe(t, 4)
	go conn.WritePump()

	// When: the peer goes away and a message cannot be written
	require.NoError(t, client.Close())
	_ = conn.Send("TURN alice")

	// Then: Done is closed and later sends are refused
	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("writer did not stop")
	}

	assert.ErrorIs(t, conn.Send("TURN bob"), ErrClosed)
}
