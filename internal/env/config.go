package env

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"

	"github.com/luma/ircconn/client"
	"github.com/luma/ircconn/metrics"
	"github.com/luma/ircconn/transport"
)

type Config struct {
	LogLevel  string `env:"IRC_LOG_LEVEL,default=info"`
	DebugHTTP bool   `env:"IRC_DEBUG_HTTP"`

	Addresses []string `env:"IRC_ADDRESSES,default=irc.libera.chat"`
	Port      int      `env:"IRC_PORT,default=6667"`

	// StatusAddr is where the status and metrics endpoints listen. Empty
	// disables them.
	StatusAddr string `env:"IRC_STATUS_ADDR"`

	Encoding   string `env:"IRC_ENCODING,default=utf-8"`
	UTF8Recode bool   `env:"IRC_UTF8_RECODE"`

	ConnectTimeout time.Duration `env:"IRC_CONNECT_TIMEOUT,default=30s"`
	ReceiveTimeout time.Duration `env:"IRC_RECEIVE_TIMEOUT,default=600s"`
	SendTimeout    time.Duration `env:"IRC_SEND_TIMEOUT,default=600s"`
	IdleInterval   time.Duration `env:"IRC_IDLE_INTERVAL,default=60s"`
	PingInterval   time.Duration `env:"IRC_PING_INTERVAL,default=60s"`
	PingTimeout    time.Duration `env:"IRC_PING_TIMEOUT,default=300s"`
	SendDelay      time.Duration `env:"IRC_SEND_DELAY,default=200ms"`

	AutoReconnect  bool          `env:"IRC_AUTO_RECONNECT,default=true"`
	AutoRetry      bool          `env:"IRC_AUTO_RETRY,default=true"`
	AutoRetryDelay time.Duration `env:"IRC_AUTO_RETRY_DELAY,default=30s"`
	AutoRetryLimit int           `env:"IRC_AUTO_RETRY_LIMIT,default=3"`

	TLS   TLSConfig   `env:",prefix=IRC_TLS_"`
	Proxy ProxyConfig `env:",prefix=IRC_PROXY_"`
}

type TLSConfig struct {
	Enabled        bool   `env:"ENABLED"`
	SkipVerify     bool   `env:"SKIP_VERIFY"`
	ClientCertFile string `env:"CLIENT_CERT"`
	ClientKeyFile  string `env:"CLIENT_KEY"`
	ServerName     string `env:"SERVER_NAME"`
}

type ProxyConfig struct {
	Type     string `env:"TYPE"`
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) TransportOptions(log *zap.Logger) transport.Options {
	return transport.Options{
		ConnectTimeout: c.ConnectTimeout,
		TLS: transport.TLSOptions{
			Enabled:        c.TLS.Enabled,
			SkipVerify:     c.TLS.SkipVerify,
			ClientCertFile: c.TLS.ClientCertFile,
			ClientKeyFile:  c.TLS.ClientKeyFile,
			ServerName:     c.TLS.ServerName,
		},
		Proxy: transport.ProxyOptions{
			Type:     transport.ProxyType(c.Proxy.Type),
			Host:     c.Proxy.Host,
			Port:     c.Proxy.Port,
			Username: c.Proxy.Username,
			Password: c.Proxy.Password,
		},
		Log: log,
	}
}

func (c *Config) ClientOptions(provider transport.Provider, m *metrics.Metrics, log *zap.Logger) client.Options {
	return client.Options{
		Provider:       provider,
		Encoding:       c.Encoding,
		UTF8Recode:     c.UTF8Recode,
		ReceiveTimeout: c.ReceiveTimeout,
		SendTimeout:    c.SendTimeout,
		IdleInterval:   c.IdleInterval,
		PingInterval:   c.PingInterval,
		PingTimeout:    c.PingTimeout,
		SendDelay:      c.SendDelay,
		AutoReconnect:  c.AutoReconnect,
		AutoRetry:      c.AutoRetry,
		AutoRetryDelay: c.AutoRetryDelay,
		AutoRetryLimit: c.AutoRetryLimit,
		Log:            log,
		Metrics:        m,
	}
}
