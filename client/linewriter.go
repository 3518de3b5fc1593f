package client

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/luma/ircconn/protocol"
)

// lineWriter serialises writes from the scheduler and from critical sends
// so lines never interleave on the stream.
type lineWriter struct {
	mu      sync.Mutex
	conn    net.Conn
	codec   *protocol.Codec
	timeout time.Duration

	failed  func(error)
	written func(line string, priority Priority)
}

func (w *lineWriter) writeLine(line string, priority Priority) error {
	w.mu.Lock()
	if w.timeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.timeout))
	}

	err := protocol.WriteLine(w.conn, w.codec, line)
	w.mu.Unlock()

	if err != nil {
		if !errors.Is(err, protocol.ErrEmbeddedNewline) {
			w.failed(err)
		}

		return err
	}

	w.written(line, priority)

	return nil
}
