package client

import (
	"time"

	"go.uber.org/zap"
)

type (
	QueueSet  = queueSet
	Scheduler = scheduler
	Heartbeat = heartbeat
	ErrorFlag = errorFlag
)

func NewQueueSet() *QueueSet {
	return newQueueSet(nil)
}

func (q *queueSet) Enqueue(p Priority, line string)   { q.enqueue(p, line) }
func (q *queueSet) Dequeue(p Priority) (string, bool) { return q.dequeue(p) }
func (q *queueSet) Len(p Priority) int                { return q.len(p) }
func (q *queueSet) Clear()                            { q.clear() }

func NewScheduler(queues *QueueSet, send func(string, Priority) error) *Scheduler {
	return &scheduler{
		queues: queues,
		ready:  func() bool { return true },
		send:   send,
		log:    zap.NewNop(),
	}
}

func (s *scheduler) Pass()                  { s.pass() }
func (s *scheduler) Counter(p Priority) int { return s.counters[p] }

func NewHeartbeat(now func() time.Time, registered func() bool, pingInterval, pingTimeout time.Duration, probe func() error, failed func(error)) *Heartbeat {
	return newHeartbeat(heartbeatConfig{
		now:          now,
		interval:     time.Second,
		pingInterval: pingInterval,
		pingTimeout:  pingTimeout,
		registered:   registered,
		probe:        probe,
		failed:       failed,
		log:          zap.NewNop(),
	})
}

func (h *heartbeat) Tick() bool         { return h.tick() }
func (h *heartbeat) Pong()              { h.pong() }
func (h *heartbeat) Lag() time.Duration { return h.lag() }

func (f *errorFlag) Raise(err error)  { f.raise(err) }
func (f *errorFlag) IsSet() bool      { return f.isSet() }
func (f *errorFlag) Issue() bool      { return f.issue() }
func (f *errorFlag) Clear()           { f.clear() }
func (f *errorFlag) LastError() error { return f.lastError() }
