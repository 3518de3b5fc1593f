package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/luma/ircconn/protocol"
	"go.uber.org/zap"
)

// lineReader pulls lines off the stream and hands them to ReadLine through
// a bounded channel. The channel is closed when the reader stops.
type lineReader struct {
	conn    net.Conn
	codec   *protocol.Codec
	timeout time.Duration
	lines   chan string
	failed  func(error)
	log     *zap.Logger
}

func newLineReader(conn net.Conn, codec *protocol.Codec, timeout time.Duration, buffer int, failed func(error), log *zap.Logger) *lineReader {
	return &lineReader{
		conn:    conn,
		codec:   codec,
		timeout: timeout,
		lines:   make(chan string, buffer),
		failed:  failed,
		log:     log,
	}
}

func (r *lineReader) run(ctx context.Context) {
	defer close(r.lines)

	br := bufio.NewReader(r.conn)

	for {
		if r.timeout > 0 {
			_ = r.conn.SetReadDeadline(time.Now().Add(r.timeout))
		}

		raw, err := br.ReadBytes('\n')

		if trimmed := protocol.TrimTerminal(raw); len(trimmed) > 0 {
			select {
			case r.lines <- r.codec.Decode(trimmed):
			case <-ctx.Done():
				return
			}
		}

		if err == nil {
			continue
		}

		if ctx.Err() != nil {
			r.log.Debug("Reader stopped")
			return
		}

		var netErr net.Error
		switch {
		case errors.Is(err, io.EOF):
			err = fmt.Errorf("server closed the connection: %w", err)
		case errors.As(err, &netErr) && netErr.Timeout():
			err = fmt.Errorf("nothing received within %s: %w", r.timeout, err)
		}

		r.log.Warn("Reader failed", zap.Error(err))
		r.failed(err)

		return
	}
}
