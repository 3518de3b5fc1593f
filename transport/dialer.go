package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultConnectTimeout = 30 * time.Second

var (
	ErrCertificate      = errors.New("server certificate rejected")
	ErrUnsupportedProxy = errors.New("unsupported proxy type")
)

// Provider opens the byte stream a connection runs over. The returned
// net.Conn is fully negotiated: any proxy tunnel and TLS handshake have
// completed.
type Provider interface {
	Open(ctx context.Context, address string, port int) (net.Conn, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, address string, port int) (net.Conn, error)

func (f ProviderFunc) Open(ctx context.Context, address string, port int) (net.Conn, error) {
	return f(ctx, address, port)
}

// Dialer is the TCP Provider, optionally through a proxy and optionally
// upgraded to TLS.
type Dialer struct {
	opts      Options
	tlsConfig *tls.Config
	log       *zap.Logger
}

func NewDialer(options Options) (*Dialer, error) {
	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	if options.ConnectTimeout <= 0 {
		options.ConnectTimeout = defaultConnectTimeout
	}

	switch options.Proxy.Type {
	case ProxyNone, ProxySocks5, ProxyHTTP:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, options.Proxy.Type)
	}

	d := &Dialer{
		opts: options,
		log:  options.Log,
	}

	if options.TLS.Enabled {
		conf, err := makeTLSConfig(options.TLS)
		if err != nil {
			return nil, err
		}

		d.tlsConfig = conf
	}

	return d, nil
}

func (d *Dialer) Open(ctx context.Context, address string, port int) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.ConnectTimeout)
	defer cancel()

	target := net.JoinHostPort(address, strconv.Itoa(port))
	log := d.log.With(zap.String("target", target))

	var (
		conn net.Conn
		err  error
	)

	if d.opts.Proxy.Type == ProxyNone {
		conn, err = d.netDialer().DialContext(ctx, "tcp", target)
	} else {
		log = log.With(zap.String("proxy", string(d.opts.Proxy.Type)))
		conn, err = d.dialProxy(ctx, target)
	}

	if err != nil {
		return nil, err
	}

	tuneTCP(conn)

	if d.tlsConfig == nil {
		log.Debug("Stream open")
		return conn, nil
	}

	tlsConn, err := d.handshake(ctx, conn, address)
	if err != nil {
		conn.Close()
		return nil, err
	}

	log.Debug("TLS stream open",
		zap.Uint16("version", tlsConn.ConnectionState().Version))

	return tlsConn, nil
}

func (d *Dialer) netDialer() *net.Dialer {
	return &net.Dialer{KeepAlive: d.opts.KeepAlive}
}

func (d *Dialer) handshake(ctx context.Context, conn net.Conn, address string) (*tls.Conn, error) {
	conf := d.tlsConfig.Clone()
	if conf.ServerName == "" {
		conf.ServerName = address
	}

	tlsConn := tls.Client(conn, conf)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		var certErr *tls.CertificateVerificationError
		if errors.As(err, &certErr) {
			return nil, fmt.Errorf("%w: %w", ErrCertificate, err)
		}

		return nil, fmt.Errorf("TLS handshake with %s failed: %w", address, err)
	}

	return tlsConn, nil
}

// tuneTCP sets TCP_NODELAY on plain TCP connections; small protocol lines
// should not wait for Nagle.
func tuneTCP(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
}
