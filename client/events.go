package client

import (
	"sync"
	"sync/atomic"
)

// HandlerID identifies a registered event handler so it can be removed.
type HandlerID uint64

type ReadLineEvent struct {
	Line string
}

type WriteLineEvent struct {
	Line     string
	Priority Priority
}

// ConnectionEvent is passed to the connecting, connected, disconnecting and
// disconnected handlers.
type ConnectionEvent struct {
	Address string
	Port    int
}

type ConnectionErrorEvent struct {
	Address string
	Port    int
	Err     error
}

type AutoConnectErrorEvent struct {
	Address string
	Port    int
	Attempt int
	Err     error
}

// handlerList calls its handlers in registration order. Emit works on a
// snapshot, so handlers may add or remove handlers while being called.
type handlerList[E any] struct {
	mu       sync.RWMutex
	handlers []handler[E]
}

type handler[E any] struct {
	id HandlerID
	fn func(E)
}

func (l *handlerList[E]) add(id HandlerID, fn func(E)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Always copy, emit may be ranging over the old slice
	handlers := make([]handler[E], len(l.handlers), len(l.handlers)+1)
	copy(handlers, l.handlers)
	l.handlers = append(handlers, handler[E]{id: id, fn: fn})
}

func (l *handlerList[E]) remove(id HandlerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, h := range l.handlers {
		if h.id != id {
			continue
		}

		handlers := make([]handler[E], 0, len(l.handlers)-1)
		handlers = append(handlers, l.handlers[:i]...)
		l.handlers = append(handlers, l.handlers[i+1:]...)

		return true
	}

	return false
}

func (l *handlerList[E]) emit(e E) {
	l.mu.RLock()
	handlers := l.handlers
	l.mu.RUnlock()

	for _, h := range handlers {
		h.fn(e)
	}
}

type events struct {
	nextID atomic.Uint64

	readLine         handlerList[ReadLineEvent]
	writeLine        handlerList[WriteLineEvent]
	connecting       handlerList[ConnectionEvent]
	connected        handlerList[ConnectionEvent]
	disconnecting    handlerList[ConnectionEvent]
	disconnected     handlerList[ConnectionEvent]
	connectionError  handlerList[ConnectionErrorEvent]
	autoConnectError handlerList[AutoConnectErrorEvent]
}

func (e *events) id() HandlerID {
	return HandlerID(e.nextID.Add(1))
}

// OnReadLine registers fn to be called with every line ReadLine returns.
func (c *Conn) OnReadLine(fn func(ReadLineEvent)) HandlerID {
	id := c.events.id()
	c.events.readLine.add(id, fn)
	return id
}

// OnWriteLine registers fn to be called after every line written to the
// server, queued or critical.
func (c *Conn) OnWriteLine(fn func(WriteLineEvent)) HandlerID {
	id := c.events.id()
	c.events.writeLine.add(id, fn)
	return id
}

// OnConnecting registers fn to be called before every connection attempt.
func (c *Conn) OnConnecting(fn func(ConnectionEvent)) HandlerID {
	id := c.events.id()
	c.events.connecting.add(id, fn)
	return id
}

func (c *Conn) OnConnected(fn func(ConnectionEvent)) HandlerID {
	id := c.events.id()
	c.events.connected.add(id, fn)
	return id
}

func (c *Conn) OnDisconnecting(fn func(ConnectionEvent)) HandlerID {
	id := c.events.id()
	c.events.disconnecting.add(id, fn)
	return id
}

func (c *Conn) OnDisconnected(fn func(ConnectionEvent)) HandlerID {
	id := c.events.id()
	c.events.disconnected.add(id, fn)
	return id
}

// OnConnectionError registers fn to be called once per connection error
// episode.
func (c *Conn) OnConnectionError(fn func(ConnectionErrorEvent)) HandlerID {
	id := c.events.id()
	c.events.connectionError.add(id, fn)
	return id
}

// OnAutoConnectError registers fn to be called for every failed connection
// attempt that will be retried.
func (c *Conn) OnAutoConnectError(fn func(AutoConnectErrorEvent)) HandlerID {
	id := c.events.id()
	c.events.autoConnectError.add(id, fn)
	return id
}

// RemoveHandler unregisters a handler. It reports whether id was found.
func (c *Conn) RemoveHandler(id HandlerID) bool {
	return c.events.readLine.remove(id) ||
		c.events.writeLine.remove(id) ||
		c.events.connecting.remove(id) ||
		c.events.connected.remove(id) ||
		c.events.disconnecting.remove(id) ||
		c.events.disconnected.remove(id) ||
		c.events.connectionError.remove(id) ||
		c.events.autoConnectError.remove(id)
}
