package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/luma/ircconn/metrics"
	"github.com/luma/ircconn/protocol"
	"github.com/luma/ircconn/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the connection lifecycle state as seen by callers.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Registered
	ErrorFlagged
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Registered:
		return "registered"
	case ErrorFlagged:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type phase int32

const (
	phaseDisconnected phase = iota
	phaseConnecting
	phaseConnected
)

// Conn is a line oriented connection engine for IRC servers. It owns the
// stream and its worker goroutines, schedules outbound lines by priority,
// keeps the connection alive with PING probes and recovers from connection
// errors.
//
// The outbound queues belong to the Conn, not to a connection, so lines
// queued while disconnected are sent after the next registration.
type Conn struct {
	opts     Options
	provider transport.Provider
	codec    *protocol.Codec
	log      *zap.Logger
	metrics  *metrics.Metrics

	// connectMu guards phase transitions. It is never held while dialing
	// or emitting events. Only its holder changes the fields below mu.
	connectMu sync.Mutex

	mu        sync.RWMutex
	sess      *session
	addresses *addressList
	address   string
	port      int

	phase        atomic.Int32
	registered   atomic.Bool
	reconnecting atomic.Bool
	closed       atomic.Bool
	errFlag      errorFlag

	queues *queueSet
	events events

	// lifetime is cancelled by Close and stops pending recovery.
	lifetime     context.Context
	stopLifetime context.CancelFunc
}

// session is everything that lives exactly as long as one established
// stream.
type session struct {
	id        uuid.UUID
	conn      net.Conn
	ctx       context.Context
	cancel    context.CancelFunc
	workers   sync.WaitGroup
	reader    *lineReader
	writer    *lineWriter
	keepalive *heartbeat
}

func New(options Options) (*Conn, error) {
	if options.Provider == nil {
		return nil, errors.New("a transport provider is required")
	}

	options = options.withDefaults()

	codec, err := protocol.NewCodec(options.Encoding, options.UTF8Recode)
	if err != nil {
		return nil, err
	}

	lifetime, stop := context.WithCancel(context.Background())

	c := &Conn{
		opts:         options,
		provider:     options.Provider,
		codec:        codec,
		log:          options.Log,
		metrics:      options.Metrics,
		queues:       newQueueSet(options.Metrics),
		lifetime:     lifetime,
		stopLifetime: stop,
	}

	c.errFlag.onRaise = func() {
		go c.issueConnectionError()
	}

	// Registered before anything a caller adds, so registration and
	// heartbeat state are current by the time user handlers run.
	c.OnReadLine(c.track)
	c.OnConnectionError(c.recoverFrom)

	return c, nil
}

func (c *Conn) State() State {
	switch phase(c.phase.Load()) {
	case phaseConnected:
		if c.errFlag.isSet() {
			return ErrorFlagged
		}

		if c.registered.Load() {
			return Registered
		}

		return Connected

	case phaseConnecting:
		return Connecting

	default:
		return Disconnected
	}
}

func (c *Conn) IsConnected() bool {
	return phase(c.phase.Load()) == phaseConnected
}

func (c *Conn) IsRegistered() bool {
	return c.IsConnected() && c.registered.Load()
}

// Address is the address of the current connection, or of the last
// attempt.
func (c *Conn) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.address
}

func (c *Conn) Addresses() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.addresses == nil {
		return nil
	}

	return c.addresses.all()
}

func (c *Conn) Port() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.port
}

// Lag is the round trip time of the last heartbeat probe.
func (c *Conn) Lag() time.Duration {
	sess := c.session()
	if sess == nil {
		return 0
	}

	return sess.keepalive.lag()
}

// SessionID identifies the current connection. It is uuid.Nil while
// disconnected.
func (c *Conn) SessionID() uuid.UUID {
	sess := c.session()
	if sess == nil {
		return uuid.Nil
	}

	return sess.id
}

// QueueLen is the number of lines waiting at priority p.
func (c *Conn) QueueLen(p Priority) int {
	if !p.scheduled() {
		return 0
	}

	return c.queues.len(p)
}

// WriteLine sends line to the server. Critical lines are written before
// WriteLine returns and fail with ErrNotConnected when there is no
// connection; every other priority is queued and sent by the scheduler
// once the connection is registered.
func (c *Conn) WriteLine(line string, priority Priority) error {
	if c.closed.Load() {
		return ErrClosed
	}

	if err := protocol.ValidateLine(line); err != nil {
		return err
	}

	switch {
	case priority == Critical:
		sess := c.session()
		if sess == nil || !c.IsConnected() {
			return ErrNotConnected
		}

		return sess.writer.writeLine(line, Critical)

	case priority.scheduled():
		c.queues.enqueue(priority, line)
		return nil

	default:
		return fmt.Errorf("%w: %d", ErrInvalidPriority, int(priority))
	}
}

// Write queues line at Medium priority.
func (c *Conn) Write(line string) error {
	return c.WriteLine(line, Medium)
}

// ReadLine returns the next inbound line. Without blocking it only returns
// a line that has already arrived. When blocking it waits until a line
// arrives or the connection is gone or in error.
//
// ReadLine is also where a pending connection error gets reported.
func (c *Conn) ReadLine(blocking bool) (string, bool) {
	sess := c.session()
	if sess == nil {
		return "", false
	}

	var (
		line string
		ok   bool
	)

	if blocking {
		timer := time.NewTimer(readPollInterval)
		defer timer.Stop()

	poll:
		for {
			select {
			case line, ok = <-sess.reader.lines:
				break poll

			case <-timer.C:
				if !c.IsConnected() || c.errFlag.isSet() {
					break poll
				}

				timer.Reset(readPollInterval)
			}
		}
	} else {
		select {
		case line, ok = <-sess.reader.lines:
		default:
		}
	}

	if ok {
		c.metrics.LineRead()
		c.log.Debug("<", zap.String("line", line))
		c.events.readLine.emit(ReadLineEvent{Line: line})
	}

	c.issueConnectionError()

	return line, ok
}

// Listen reads lines until there are none left. When blocking it keeps
// reading for as long as the connection is up.
func (c *Conn) Listen(blocking bool) {
	if !blocking {
		for {
			if _, ok := c.ReadLine(false); !ok {
				return
			}
		}
	}

	for c.IsConnected() {
		if _, ok := c.ReadLine(true); ok {
			continue
		}

		select {
		case <-c.lifetime.Done():
			return
		case <-time.After(readPollInterval):
		}
	}
}

// ListenOnce reads a single line.
func (c *Conn) ListenOnce(blocking bool) {
	c.ReadLine(blocking)
}

// Close disconnects and drops all queued lines. A closed Conn cannot be
// used again.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.stopLifetime()

	err := c.Disconnect()
	if errors.Is(err, ErrNotConnected) {
		err = nil
	}

	c.queues.clear()

	return err
}

func (c *Conn) session() *session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sess
}

func (c *Conn) setPhase(p phase) {
	c.phase.Store(int32(p))
	c.metrics.State(int(c.State()))
}

// track keeps registration and heartbeat state current. It runs before any
// other read handler.
func (c *Conn) track(e ReadLineEvent) {
	switch c.opts.Classifier(e.Line) {
	case protocol.KindWelcome:
		if c.registered.CompareAndSwap(false, true) {
			c.metrics.State(int(c.State()))
			c.log.Info("Registered", zap.String("address", c.Address()))
		}

	case protocol.KindPong:
		sess := c.session()
		if sess == nil {
			return
		}

		sess.keepalive.pong()
		lag := sess.keepalive.lag()
		c.metrics.Lag(lag.Seconds())
		c.log.Debug("Heartbeat reply", zap.Duration("lag", lag))
	}
}

// issueConnectionError reports a raised error flag, once per episode and
// only while connected.
func (c *Conn) issueConnectionError() {
	if !c.IsConnected() || !c.errFlag.issue() {
		return
	}

	event := ConnectionErrorEvent{
		Address: c.Address(),
		Port:    c.Port(),
		Err:     fmt.Errorf("%w: %v", ErrConnection, c.errFlag.lastError()),
	}

	c.metrics.ConnectionError()
	c.metrics.State(int(c.State()))
	c.log.Warn("Connection error",
		zap.String("address", event.Address),
		zap.Int("port", event.Port),
		zap.Error(event.Err),
	)

	c.events.connectionError.emit(event)
}

// recoverFrom either reconnects, after AutoRetryDelay, or disconnects.
func (c *Conn) recoverFrom(e ConnectionErrorEvent) {
	failed := c.SessionID()
	if failed == uuid.Nil {
		return
	}

	go func() {
		if !c.opts.AutoReconnect {
			if err := c.Disconnect(); err != nil && !errors.Is(err, ErrNotConnected) {
				c.log.Warn("Failed to disconnect after connection error", zap.Error(err))
			}

			return
		}

		select {
		case <-c.lifetime.Done():
			return
		case <-time.After(c.opts.AutoRetryDelay):
		}

		// The caller may have disconnected or reconnected in the meantime
		if c.SessionID() != failed {
			return
		}

		c.log.Info("Reconnecting", zap.String("address", e.Address), zap.Int("port", e.Port))

		if err := c.Reconnect(c.lifetime); err != nil {
			c.log.Error("Reconnect failed", zap.Error(err))
		}
	}()
}

func (c *Conn) newSession(conn net.Conn, address string) *session {
	ctx, cancel := context.WithCancel(context.Background())

	sess := &session{
		id:     uuid.New(),
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
	}

	log := c.log.With(
		zap.String("address", address),
		zap.String("session", sess.id.String()),
	)

	failed := func(err error) {
		if ctx.Err() != nil {
			return
		}

		c.errFlag.raise(err)
	}

	sess.writer = &lineWriter{
		conn:    conn,
		codec:   c.codec,
		timeout: c.opts.SendTimeout,
		failed:  failed,
		written: func(line string, priority Priority) {
			c.metrics.LineWritten(priority.String())
			log.Debug(">", zap.String("line", line), zap.Stringer("priority", priority))
			c.events.writeLine.emit(WriteLineEvent{Line: line, Priority: priority})
		},
	}

	sess.reader = newLineReader(conn, c.codec, c.opts.ReceiveTimeout, c.opts.ReadBuffer, failed, log.Named("reader"))

	sess.keepalive = newHeartbeat(heartbeatConfig{
		interval:     c.opts.IdleInterval,
		pingInterval: c.opts.PingInterval,
		pingTimeout:  c.opts.PingTimeout,
		registered:   c.IsRegistered,
		probe: func() error {
			return sess.writer.writeLine(protocol.Ping(address), Critical)
		},
		failed: failed,
		log:    log.Named("keepalive"),
	})

	return sess
}

func (s *session) start(sched *scheduler) {
	ctx := s.ctx

	s.workers.Add(3)

	go func() {
		defer s.workers.Done()
		s.reader.run(ctx)
	}()

	go func() {
		defer s.workers.Done()
		sched.run(ctx)
	}()

	go func() {
		defer s.workers.Done()
		s.keepalive.run(ctx)
	}()
}

// stop closes the stream and waits up to grace for the workers to exit.
func (s *session) stop(grace time.Duration) error {
	s.cancel()

	err := s.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		err = multierr.Append(err, ErrShutdownTimeout)
	}

	return err
}
