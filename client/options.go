package client

import (
	"time"

	"github.com/luma/ircconn/metrics"
	"github.com/luma/ircconn/protocol"
	"github.com/luma/ircconn/transport"
	"go.uber.org/zap"
)

const (
	DefaultReceiveTimeout = 600 * time.Second
	DefaultSendTimeout    = 600 * time.Second
	DefaultIdleInterval   = 60 * time.Second
	DefaultPingInterval   = 60 * time.Second
	DefaultPingTimeout    = 300 * time.Second
	DefaultSendDelay      = 200 * time.Millisecond
	DefaultAutoRetryDelay = 30 * time.Second
	DefaultAutoRetryLimit = 3
	DefaultReadBuffer     = 1024
	DefaultShutdownGrace  = 5 * time.Second

	// readPollInterval bounds how long a blocking ReadLine waits before
	// re-checking the connection state.
	readPollInterval = time.Second
)

// Options configures a Conn. Zero durations fall back to the defaults
// above.
type Options struct {
	// Provider opens the byte stream. Required.
	Provider transport.Provider

	// Encoding is the charset used on the wire. Defaults to UTF-8.
	Encoding string

	// UTF8Recode decodes inbound lines as UTF-8 when they are valid UTF-8,
	// whatever Encoding says.
	UTF8Recode bool

	ReceiveTimeout time.Duration
	SendTimeout    time.Duration

	// IdleInterval is how often the heartbeat wakes up.
	IdleInterval time.Duration
	PingInterval time.Duration
	PingTimeout  time.Duration

	// SendDelay is the pause between two scheduler passes.
	SendDelay time.Duration

	// AutoReconnect reconnects after a connection error instead of
	// disconnecting.
	AutoReconnect bool

	// AutoRetry retries failed connection attempts, rotating through the
	// address list.
	AutoRetry      bool
	AutoRetryDelay time.Duration

	// AutoRetryLimit is the maximum number of retries. Zero means unbounded.
	AutoRetryLimit int

	// ReadBuffer is the capacity of the inbound line hand-off.
	ReadBuffer int

	ShutdownGrace time.Duration

	// Classifier recognises registration and heartbeat replies. Defaults to
	// protocol.Classify.
	Classifier func(line string) protocol.LineKind

	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	setDuration(&o.ReceiveTimeout, DefaultReceiveTimeout)
	setDuration(&o.SendTimeout, DefaultSendTimeout)
	setDuration(&o.IdleInterval, DefaultIdleInterval)
	setDuration(&o.PingInterval, DefaultPingInterval)
	setDuration(&o.PingTimeout, DefaultPingTimeout)
	setDuration(&o.SendDelay, DefaultSendDelay)
	setDuration(&o.AutoRetryDelay, DefaultAutoRetryDelay)
	setDuration(&o.ShutdownGrace, DefaultShutdownGrace)

	if o.Encoding == "" {
		o.Encoding = protocol.DefaultEncoding
	}

	if o.ReadBuffer <= 0 {
		o.ReadBuffer = DefaultReadBuffer
	}

	if o.AutoRetryLimit < 0 {
		o.AutoRetryLimit = 0
	}

	if o.Classifier == nil {
		o.Classifier = protocol.Classify
	}

	if o.Log == nil {
		o.Log = zap.NewNop()
	}

	return o
}

func setDuration(d *time.Duration, fallback time.Duration) {
	if *d <= 0 {
		*d = fallback
	}
}
