package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	ErrInvalidDocument = errors.New("not a valid JSON document")
	ErrClosed          = errors.New("store is closed")
)

type InmemoryStore struct {
	mu     sync.RWMutex
	values []byte

	listenersMu sync.Mutex
	listeners   []chan *Update

	// stop will be closed when Close() is called
	stop     chan struct{}
	stopOnce sync.Once
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values: []byte("{}"),
		stop:   make(chan struct{}),
	}
}

func (i *InmemoryStore) Close() error {
	i.stopOnce.Do(func() {
		close(i.stop)

		i.listenersMu.Lock()
		defer i.listenersMu.Unlock()

		for _, listener := range i.listeners {
			close(listener)
		}

		i.listeners = nil
	})

	return nil
}

func (i *InmemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	if !i.isRunning() {
		return ErrClosed
	}

	i.mu.Lock()
	values, err := sjson.SetBytes(i.values, key, value)
	if err != nil {
		i.mu.Unlock()
		return err
	}

	i.values = values
	raw := []byte(gjson.GetBytes(values, key).Raw)
	i.mu.Unlock()

	i.publish(key, raw)

	return nil
}

// Incr adds one to the number stored at key, treating a missing key as 0.
func (i *InmemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	if !i.isRunning() {
		return 0, ErrClosed
	}

	i.mu.Lock()
	next := gjson.GetBytes(i.values, key).Int() + 1

	values, err := sjson.SetBytes(i.values, key, next)
	if err != nil {
		i.mu.Unlock()
		return 0, err
	}

	i.values = values
	raw := []byte(gjson.GetBytes(values, key).Raw)
	i.mu.Unlock()

	i.publish(key, raw)

	return next, nil
}

func (i *InmemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := gjson.GetBytes(i.values, key)

	return []byte(result.Raw), nil
}

func (i *InmemoryStore) ListenToUpdates() <-chan *Update {
	i.listenersMu.Lock()
	defer i.listenersMu.Unlock()

	listener := make(chan *Update, 255)

	if !i.isRunning() {
		close(listener)
		return listener
	}

	i.listeners = append(i.listeners, listener)

	return listener
}

func (i *InmemoryStore) StopListening(updates <-chan *Update) {
	i.listenersMu.Lock()
	defer i.listenersMu.Unlock()

	for n, listener := range i.listeners {
		if listener == updates {
			i.listeners = append(i.listeners[:n], i.listeners[n+1:]...)
			close(listener)
			return
		}
	}
}

func (i *InmemoryStore) Restore(values []byte) error {
	if !gjson.ValidBytes(values) {
		return ErrInvalidDocument
	}

	i.mu.Lock()
	i.values = append([]byte(nil), values...)
	i.mu.Unlock()

	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return append([]byte(nil), i.values...), nil
}

// publish never blocks; a listener that has fallen behind misses updates.
func (i *InmemoryStore) publish(key string, value []byte) {
	i.listenersMu.Lock()
	defer i.listenersMu.Unlock()

	for _, listener := range i.listeners {
		select {
		case listener <- &Update{Key: key, Value: value}:
		default:
		}
	}
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
