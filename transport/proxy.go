package transport

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

func (d *Dialer) dialProxy(ctx context.Context, target string) (net.Conn, error) {
	proxyAddr := net.JoinHostPort(d.opts.Proxy.Host, strconv.Itoa(d.opts.Proxy.Port))

	switch d.opts.Proxy.Type {
	case ProxySocks5:
		return d.dialSocks5(ctx, proxyAddr, target)
	case ProxyHTTP:
		return d.dialHTTPConnect(ctx, proxyAddr, target)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, d.opts.Proxy.Type)
	}
}

func (d *Dialer) dialSocks5(ctx context.Context, proxyAddr, target string) (net.Conn, error) {
	var auth *proxy.Auth
	if d.opts.Proxy.Username != "" || d.opts.Proxy.Password != "" {
		auth = &proxy.Auth{
			User:     d.opts.Proxy.Username,
			Password: d.opts.Proxy.Password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddr, auth, d.netDialer())
	if err != nil {
		return nil, err
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", target)
	}

	return dialer.Dial("tcp", target)
}

// dialHTTPConnect tunnels through an HTTP proxy with the CONNECT method.
func (d *Dialer) dialHTTPConnect(ctx context.Context, proxyAddr, target string) (net.Conn, error) {
	conn, err := d.netDialer().DialContext(ctx, "tcp", proxyAddr)
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	req := &http.Request{
		Method: http.MethodConnect,
		Host:   target,
		URL:    &url.URL{Opaque: target},
		Header: make(http.Header),
	}

	if d.opts.Proxy.Username != "" {
		creds := d.opts.Proxy.Username + ":" + d.opts.Proxy.Password
		req.Header.Set("Proxy-Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	}

	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("Failed to send CONNECT to proxy: %w", err)
	}

	br := bufio.NewReader(conn)

	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("Failed to read CONNECT response: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("Proxy refused CONNECT to %s: %s", target, resp.Status)
	}

	_ = conn.SetDeadline(time.Time{})

	if br.Buffered() > 0 {
		// The server spoke first and part of its greeting is already in
		// our buffer.
		return &bufferedConn{Conn: conn, r: br}, nil
	}

	return conn, nil
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
