package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/luma/ircconn/client"
	"github.com/luma/ircconn/protocol"
)

// Keys of the connection status document.
const (
	KeyState          = "state"
	KeyAddress        = "address"
	KeyPort           = "port"
	KeySession        = "session"
	KeyConnectedAt    = "connected_at"
	KeyDisconnectedAt = "disconnected_at"
	KeyLagMillis      = "lag_ms"
	KeyLinesRead      = "lines.read"
	KeyLinesWritten   = "lines.written"
	KeyErrors         = "errors.connection"
	KeyConnectErrors  = "errors.connect"
	KeyLastError      = "errors.last"
)

// Record keeps store up to date with the state of conn. The returned
// function stops recording.
func Record(conn *client.Conn, store Store, log *zap.Logger) (stop func()) {
	ctx := context.Background()
	log = log.Named("recorder")

	set := func(key string, value interface{}) {
		if err := store.Set(ctx, key, value); err != nil {
			log.Warn("Failed to record status", zap.String("key", key), zap.Error(err))
		}
	}

	incr := func(key string) {
		if _, err := store.Incr(ctx, key); err != nil {
			log.Warn("Failed to record status", zap.String("key", key), zap.Error(err))
		}
	}

	state := func() {
		set(KeyState, conn.State().String())
	}

	state()

	ids := []client.HandlerID{
		conn.OnConnecting(func(e client.ConnectionEvent) {
			state()
			set(KeyAddress, e.Address)
			set(KeyPort, e.Port)
		}),

		conn.OnConnected(func(e client.ConnectionEvent) {
			state()
			set(KeyAddress, e.Address)
			set(KeySession, conn.SessionID().String())
			set(KeyConnectedAt, time.Now().UTC().Format(time.RFC3339))
		}),

		conn.OnDisconnected(func(client.ConnectionEvent) {
			state()
			set(KeySession, "")
			set(KeyDisconnectedAt, time.Now().UTC().Format(time.RFC3339))
		}),

		conn.OnConnectionError(func(e client.ConnectionErrorEvent) {
			state()
			incr(KeyErrors)
			set(KeyLastError, e.Err.Error())
		}),

		conn.OnAutoConnectError(func(e client.AutoConnectErrorEvent) {
			incr(KeyConnectErrors)
			set(KeyLastError, e.Err.Error())
		}),

		conn.OnReadLine(func(e client.ReadLineEvent) {
			incr(KeyLinesRead)

			switch protocol.Classify(e.Line) {
			case protocol.KindWelcome:
				state()
			case protocol.KindPong:
				set(KeyLagMillis, conn.Lag().Milliseconds())
			}
		}),

		conn.OnWriteLine(func(e client.WriteLineEvent) {
			incr(KeyLinesWritten + "." + e.Priority.String())
		}),
	}

	return func() {
		for _, id := range ids {
			conn.RemoveHandler(id)
		}
	}
}
