package storage

import "context"

// Update is sent to listeners whenever a key of the document changes.
type Update struct {
	Key   string
	Value []byte
}

// Store is a JSON status document addressed by gjson/sjson paths.
type Store interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string) ([]byte, error)
	Incr(ctx context.Context, key string) (int64, error)

	Restore(values []byte) error
	Backup() ([]byte, error)

	ListenToUpdates() <-chan *Update
	StopListening(updates <-chan *Update)

	Close() error
}
