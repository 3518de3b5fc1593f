package client

import (
	"sync"

	"github.com/luma/ircconn/metrics"
)

// queueSet holds one unbounded FIFO per scheduled priority. Any goroutine
// may enqueue; the scheduler is the only consumer.
type queueSet struct {
	mu      sync.Mutex
	queues  [numScheduled][]string
	metrics *metrics.Metrics
}

func newQueueSet(m *metrics.Metrics) *queueSet {
	return &queueSet{metrics: m}
}

func (q *queueSet) enqueue(p Priority, line string) {
	q.mu.Lock()
	q.queues[p] = append(q.queues[p], line)
	depth := len(q.queues[p])
	q.mu.Unlock()

	q.metrics.QueueDepth(p.String(), depth)
}

func (q *queueSet) dequeue(p Priority) (string, bool) {
	q.mu.Lock()

	queue := q.queues[p]
	if len(queue) == 0 {
		q.mu.Unlock()
		return "", false
	}

	line := queue[0]
	queue[0] = ""
	q.queues[p] = queue[1:]
	depth := len(q.queues[p])
	q.mu.Unlock()

	q.metrics.QueueDepth(p.String(), depth)

	return line, true
}

func (q *queueSet) len(p Priority) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.queues[p])
}

func (q *queueSet) clear() {
	q.mu.Lock()
	for p := range q.queues {
		q.queues[p] = nil
	}
	q.mu.Unlock()

	for p := Low; p <= High; p++ {
		q.metrics.QueueDepth(p.String(), 0)
	}
}
