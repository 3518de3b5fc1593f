package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	reuseport "github.com/kavu/go_reuseport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/luma/ircconn/storage"
)

type statusServer struct {
	server   *http.Server
	listener net.Listener
	log      *zap.Logger
}

func startStatusServer(addr string, debugHTTP bool, store storage.Store, gatherer prometheus.Gatherer, log *zap.Logger) (*statusServer, error) {
	listener, err := reuseport.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &statusServer{
		server: &http.Server{
			Handler:           NewStatusRouter(debugHTTP, store, gatherer, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		log:      log,
	}

	// Serve in a goroutine so that it won't block the connection
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Status server errored", zap.Error(err))
		}
	}()

	log.Info("Serving status", zap.String("addr", listener.Addr().String()))

	return s, nil
}

// Shutdown gives in-flight requests 5 seconds to finish. A nil server is
// a no-op.
func (s *statusServer) Shutdown() error {
	if s == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.server.SetKeepAlivesEnabled(false)

	return s.server.Shutdown(ctx)
}

// NewStatusRouter serves the status document, its change feed and the
// Prometheus metrics.
func NewStatusRouter(debugHTTP bool, store storage.Store, gatherer prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	router := setupRouter(debugHTTP, log)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// The whole document, or a single key with ?key=lines.read
	router.GET("/status", func(c *gin.Context) {
		var (
			value []byte
			err   error
		)

		if key := c.Query("key"); key != "" {
			value, err = store.Get(c.Request.Context(), key)
		} else {
			value, err = store.Backup()
		}

		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if len(value) == 0 {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such key"})
			return
		}

		c.Data(http.StatusOK, "application/json", value)
	})

	// Server-sent events, one per changed key
	router.GET("/updates", func(c *gin.Context) {
		updates := store.ListenToUpdates()
		defer store.StopListening(updates)

		c.Stream(func(w io.Writer) bool {
			select {
			case update, ok := <-updates:
				if !ok {
					return false
				}

				c.SSEvent(update.Key, json.RawMessage(update.Value))
				return true

			case <-c.Request.Context().Done():
				return false
			}
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Logs all requests, like a combined access and error log, in RFC3339
	// UTC. Probes are too chatty to log.
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping", "/metrics"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}
