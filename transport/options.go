package transport

import (
	"time"

	"go.uber.org/zap"
)

type ProxyType string

const (
	ProxyNone   ProxyType = ""
	ProxySocks5 ProxyType = "socks5"
	ProxyHTTP   ProxyType = "http"
)

type Options struct {
	// ConnectTimeout bounds the TCP connect, proxy handshake and TLS
	// handshake together. Zero means 30 seconds.
	ConnectTimeout time.Duration

	// KeepAlive is the TCP keep-alive period. Zero uses the OS default,
	// negative disables keep-alives.
	KeepAlive time.Duration

	TLS TLSOptions

	Proxy ProxyOptions

	Log *zap.Logger
}

type TLSOptions struct {
	Enabled bool

	// SkipVerify disables server certificate validation
	SkipVerify bool

	// ClientCertFile and ClientKeyFile name a PEM encoded client
	// certificate. Both or neither must be set.
	ClientCertFile string
	ClientKeyFile  string

	// ServerName overrides the name used for SNI and verification. It
	// defaults to the address being dialled.
	ServerName string
}

type ProxyOptions struct {
	Type     ProxyType
	Host     string
	Port     int
	Username string
	Password string
}
