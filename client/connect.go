package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luma/ircconn/transport"
	"go.uber.org/zap"
)

// Connect opens a connection to the first of addresses that accepts one.
// With AutoRetry a failed attempt moves on to the next address after
// AutoRetryDelay, up to AutoRetryLimit retries. Certificate errors are
// never retried.
//
// Event handlers may call back into the Conn, including Connect and
// Disconnect.
func (c *Conn) Connect(ctx context.Context, addresses []string, port int) error {
	if err := c.claim(addresses, port); err != nil {
		return err
	}

	return c.dial(ctx)
}

// Disconnect stops the workers and closes the stream.
func (c *Conn) Disconnect() error {
	sess, event, err := c.detach()
	if err != nil {
		return err
	}

	c.teardown(sess, event)

	return nil
}

// Reconnect disconnects, if needed, and connects again starting with the
// last address used. Calls made while a reconnect is already running
// return immediately.
func (c *Conn) Reconnect(ctx context.Context) error {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return nil
	}
	defer c.reconnecting.Store(false)

	addresses, port, err := c.lastTarget()
	if err != nil {
		return err
	}

	if err := c.Disconnect(); err != nil && !errors.Is(err, ErrNotConnected) {
		return err
	}

	return c.Connect(ctx, addresses, port)
}

// claim moves the Conn into the connecting phase. Only one connection
// attempt runs at a time.
func (c *Conn) claim(addresses []string, port int) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}

	switch phase(c.phase.Load()) {
	case phaseConnected:
		return fmt.Errorf("%w to %s:%d", ErrAlreadyConnected, c.Address(), c.Port())
	case phaseConnecting:
		return fmt.Errorf("%w: a connection attempt is in progress", ErrAlreadyConnected)
	}

	if len(addresses) == 0 {
		return ErrNoAddresses
	}

	c.mu.Lock()
	c.addresses = newAddressList(addresses)
	c.port = port
	c.mu.Unlock()

	c.setPhase(phaseConnecting)

	return nil
}

func (c *Conn) lastTarget() ([]string, int, error) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if phase(c.phase.Load()) == phaseConnecting {
		return nil, 0, fmt.Errorf("%w: a connection attempt is in progress", ErrAlreadyConnected)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.addresses == nil {
		return nil, 0, ErrNotConnected
	}

	return c.addresses.fromCurrent(), c.port, nil
}

// dial runs the connection attempts of a claimed Connect. Close aborts it.
func (c *Conn) dial(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(c.lifetime, cancel)
	defer stop()

	c.mu.RLock()
	addresses, port := c.addresses, c.port
	c.mu.RUnlock()

	attempt := 0

	open := func() error {
		attempt++

		address := addresses.current()
		c.setAddress(address)

		c.log.Info("Connecting",
			zap.String("address", address),
			zap.Int("port", port),
			zap.Int("attempt", attempt),
		)
		c.events.connecting.emit(ConnectionEvent{Address: address, Port: port})

		conn, err := c.provider.Open(ctx, address, port)
		if err != nil {
			c.metrics.ConnectAttempt(false)
			c.errFlag.raise(err)

			if !c.opts.AutoRetry || errors.Is(err, transport.ErrCertificate) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}

			return err
		}

		c.metrics.ConnectAttempt(true)

		if err := c.established(conn, address, port); err != nil {
			return backoff.Permanent(err)
		}

		c.events.connected.emit(ConnectionEvent{Address: address, Port: port})

		return nil
	}

	notify := func(err error, wait time.Duration) {
		address := addresses.current()

		c.log.Warn("Connection attempt failed, retrying",
			zap.String("address", address),
			zap.Int("port", port),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		c.events.autoConnectError.emit(AutoConnectErrorEvent{
			Address: address,
			Port:    port,
			Attempt: attempt,
			Err:     err,
		})

		addresses.advance()
	}

	if err := backoff.RetryNotify(open, c.retryPolicy(ctx), notify); err != nil {
		c.connectMu.Lock()
		if phase(c.phase.Load()) == phaseConnecting {
			c.setPhase(phaseDisconnected)
		}
		c.connectMu.Unlock()

		return fmt.Errorf("%w to %s:%d: %w", ErrCouldNotConnect, c.Address(), port, err)
	}

	return nil
}

func (c *Conn) retryPolicy(ctx context.Context) backoff.BackOff {
	var policy backoff.BackOff = backoff.NewConstantBackOff(c.opts.AutoRetryDelay)

	if c.opts.AutoRetryLimit > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.opts.AutoRetryLimit))
	}

	return backoff.WithContext(policy, ctx)
}

// established installs a fresh session for conn and starts its workers.
func (c *Conn) established(conn net.Conn, address string, port int) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if c.closed.Load() {
		_ = conn.Close()
		return ErrClosed
	}

	sess := c.newSession(conn, address)

	sched := &scheduler{
		queues:  c.queues,
		delay:   c.opts.SendDelay,
		ready:   c.IsRegistered,
		send:    sess.writer.writeLine,
		log:     c.log.Named("scheduler"),
		metrics: c.metrics,
	}

	// Raises from failed attempts must not count against this connection
	c.errFlag.clear()
	c.registered.Store(false)

	c.mu.Lock()
	c.sess = sess
	c.address = address
	c.mu.Unlock()

	c.setPhase(phaseConnected)
	sess.start(sched)

	c.log.Info("Connected",
		zap.String("address", address),
		zap.Int("port", port),
		zap.String("session", sess.id.String()),
	)

	return nil
}

// detach takes the session away from the Conn and stops its workers from
// reporting errors. The stream is closed later by teardown.
func (c *Conn) detach() (*session, ConnectionEvent, error) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if !c.IsConnected() {
		return nil, ConnectionEvent{}, ErrNotConnected
	}

	event := ConnectionEvent{Address: c.Address(), Port: c.Port()}

	c.mu.Lock()
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()

	sess.cancel()
	c.registered.Store(false)
	c.setPhase(phaseDisconnected)

	return sess, event, nil
}

func (c *Conn) teardown(sess *session, event ConnectionEvent) {
	c.log.Info("Disconnecting", zap.String("address", event.Address), zap.Int("port", event.Port))
	c.events.disconnecting.emit(event)

	if err := sess.stop(c.opts.ShutdownGrace); err != nil {
		c.log.Warn("Unclean shutdown", zap.Error(err))
	}

	c.log.Info("Disconnected", zap.String("address", event.Address), zap.Int("port", event.Port))
	c.events.disconnected.emit(event)
}

func (c *Conn) setAddress(address string) {
	c.mu.Lock()
	c.address = address
	c.mu.Unlock()
}
