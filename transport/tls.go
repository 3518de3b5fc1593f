package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
)

func makeTLSConfig(options TLSOptions) (*tls.Config, error) {
	conf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: options.SkipVerify, //nolint:gosec // opt-in via config
		ServerName:         options.ServerName,
	}

	if options.ClientCertFile == "" && options.ClientKeyFile == "" {
		return conf, nil
	}

	if options.ClientCertFile == "" || options.ClientKeyFile == "" {
		return nil, errors.New("Client certificate and key must be configured together")
	}

	cert, err := tls.LoadX509KeyPair(options.ClientCertFile, options.ClientKeyFile)
	if err != nil {
		return nil, fmt.Errorf("Failed to load client certificate: %w", err)
	}

	conf.Certificates = []tls.Certificate{cert}

	return conf, nil
}
