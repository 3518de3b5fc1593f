package metrics_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luma/ircconn/metrics"
)

var _ = Describe("Metrics", func() {
	It("is safe to use through a nil pointer", func() {
		var m *metrics.Metrics

		Expect(func() {
			m.LineRead()
			m.LineWritten("high")
			m.QueueDepth("low", 3)
			m.ConnectAttempt(true)
			m.ConnectionError()
			m.Requeued("medium")
			m.Lag(0.5)
			m.State(2)
		}).NotTo(Panic())
	})

	It("registers its collectors", func() {
		reg := prometheus.NewRegistry()

		m, err := metrics.New(reg)
		Expect(err).To(Succeed())

		m.LineRead()
		m.LineRead()
		m.ConnectAttempt(false)
		m.QueueDepth("medium", 7)

		count, err := testutil.GatherAndCount(reg, "ircconn_lines_read_total")
		Expect(err).To(Succeed())
		Expect(count).To(Equal(1))

		count, err = testutil.GatherAndCount(reg, "ircconn_connect_attempts_total", "ircconn_queue_depth")
		Expect(err).To(Succeed())
		Expect(count).To(Equal(2))
	})

	It("refuses to register twice with the same registry", func() {
		reg := prometheus.NewRegistry()

		_, err := metrics.New(reg)
		Expect(err).To(Succeed())

		_, err = metrics.New(reg)
		Expect(err).To(HaveOccurred())
	})
})
