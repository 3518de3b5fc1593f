package client

import (
	"context"
	"time"

	"github.com/luma/ircconn/metrics"
	"go.uber.org/zap"
)

// Per-round send limits. A priority without a threshold may send on every
// pass it gets to.
var thresholds = [numScheduled]int{
	BelowMedium: 1,
	Medium:      2,
	AboveMedium: 4,
}

// scheduler drains the priority queues, one pass per tick.
//
// A pass visits High down to Low and stops at the first priority that is
// not idle. When every priority is idle the round is over and all counters
// reset. Within a round a weighted priority sends at most its threshold,
// High always sends, and Low only sends while nothing above it has sent.
type scheduler struct {
	queues   *queueSet
	counters [numScheduled]int

	delay time.Duration
	ready func() bool
	send  func(line string, priority Priority) error

	log     *zap.Logger
	metrics *metrics.Metrics
}

func (s *scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.delay)
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

		if !s.ready() {
			continue
		}

		s.pass()
	}
}

func (s *scheduler) pass() {
	for p := High; p >= Low; p-- {
		if !s.service(p) {
			return
		}
	}

	s.counters = [numScheduled]int{}
}

// service sends at most one line of priority p and reports whether p was
// idle.
func (s *scheduler) service(p Priority) bool {
	limit := thresholds[p]

	switch {
	case p == Low:
		for q := BelowMedium; q <= High; q++ {
			if s.counters[q] > 0 {
				return true
			}
		}

	case limit > 0 && s.counters[p] >= limit:
		return true
	}

	line, ok := s.queues.dequeue(p)
	if !ok {
		return true
	}

	s.counters[p]++

	if err := s.send(line, p); err != nil {
		s.log.Debug("Send failed, requeueing",
			zap.Stringer("priority", p),
			zap.Error(err),
		)

		s.queues.enqueue(p, line)
		s.metrics.Requeued(p.String())

		return p == Low
	}

	return limit > 0 && s.counters[p] >= limit
}
