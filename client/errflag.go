package client

import (
	"sync"
	"sync/atomic"
)

// errorFlag is raised by any worker that hits a fatal condition. Only the
// engine clears it, when a new connection has been established.
//
// issued latches once the connection error has been reported so an error
// episode is reported exactly once.
type errorFlag struct {
	count  atomic.Int64
	issued atomic.Bool

	mu   sync.Mutex
	last error

	onRaise func()
}

func (f *errorFlag) raise(err error) {
	f.mu.Lock()
	if err != nil {
		f.last = err
	}
	f.mu.Unlock()

	f.count.Add(1)

	if f.onRaise != nil {
		f.onRaise()
	}
}

func (f *errorFlag) isSet() bool {
	return f.count.Load() > 0
}

// issue reports whether the caller should announce the error. It returns
// true at most once between two calls to clear.
func (f *errorFlag) issue() bool {
	return f.isSet() && f.issued.CompareAndSwap(false, true)
}

func (f *errorFlag) clear() {
	f.count.Store(0)
	f.issued.Store(false)

	f.mu.Lock()
	f.last = nil
	f.mu.Unlock()
}

func (f *errorFlag) lastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.last
}
