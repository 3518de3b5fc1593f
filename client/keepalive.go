package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type stopwatch struct {
	now     func() time.Time
	running bool
	started time.Time
	elapsed time.Duration
}

func (s *stopwatch) start() {
	if !s.running {
		s.running = true
		s.started = s.now()
	}
}

func (s *stopwatch) stop() {
	if s.running {
		s.elapsed += s.now().Sub(s.started)
		s.running = false
	}
}

func (s *stopwatch) reset() {
	s.running = false
	s.elapsed = 0
}

func (s *stopwatch) restart() {
	s.reset()
	s.start()
}

func (s *stopwatch) value() time.Duration {
	if s.running {
		return s.elapsed + s.now().Sub(s.started)
	}

	return s.elapsed
}

// heartbeat probes the server with PING once nothing has been heard back
// for pingInterval, and declares the connection dead if a probe stays
// unanswered for pingTimeout.
//
// outstanding measures the current probe, sinceReply the time since the
// last reply.
type heartbeat struct {
	mu          sync.Mutex
	outstanding stopwatch
	sinceReply  stopwatch

	interval     time.Duration
	pingInterval time.Duration
	pingTimeout  time.Duration

	registered func() bool
	probe      func() error
	failed     func(error)

	log *zap.Logger
}

type heartbeatConfig struct {
	now          func() time.Time
	interval     time.Duration
	pingInterval time.Duration
	pingTimeout  time.Duration
	registered   func() bool
	probe        func() error
	failed       func(error)
	log          *zap.Logger
}

func newHeartbeat(cfg heartbeatConfig) *heartbeat {
	if cfg.now == nil {
		cfg.now = time.Now
	}

	h := &heartbeat{
		outstanding:  stopwatch{now: cfg.now},
		sinceReply:   stopwatch{now: cfg.now},
		interval:     cfg.interval,
		pingInterval: cfg.pingInterval,
		pingTimeout:  cfg.pingTimeout,
		registered:   cfg.registered,
		probe:        cfg.probe,
		failed:       cfg.failed,
		log:          cfg.log,
	}

	h.sinceReply.start()

	return h
}

func (h *heartbeat) run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if ctx.Err() != nil {
			return
		}

		if !h.tick() {
			return
		}
	}
}

// tick runs one heartbeat check. It returns false once the connection has
// been declared dead.
//
// A reply that arrives after pingTimeout but before the next tick does not
// save the connection: pong stops the probe stopwatch without clearing it,
// so the round trip it recorded is still past the timeout.
func (h *heartbeat) tick() bool {
	if !h.registered() {
		return true
	}

	h.mu.Lock()

	if waited := h.outstanding.value(); waited >= h.pingTimeout {
		h.mu.Unlock()

		err := fmt.Errorf("no reply to heartbeat probe within %s", h.pingTimeout)
		h.log.Warn("Connection is dead", zap.Duration("waited", waited), zap.Error(err))
		h.failed(err)

		return false
	}

	if h.outstanding.running || h.sinceReply.value() <= h.pingInterval {
		h.mu.Unlock()
		return true
	}

	h.sinceReply.stop()
	h.outstanding.restart()
	h.mu.Unlock()

	if err := h.probe(); err != nil {
		h.log.Debug("Heartbeat probe failed", zap.Error(err))
	}

	return true
}

func (h *heartbeat) pong() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.outstanding.stop()
	h.sinceReply.restart()
}

// lag is the round trip of the last answered probe, or the time the
// current probe has been outstanding.
func (h *heartbeat) lag() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.outstanding.value()
}
