package cmd_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/luma/ircconn/cmd"
	"github.com/luma/ircconn/metrics"
	"github.com/luma/ircconn/storage"
)

var _ = Describe("cmd / status router", func() {
	var (
		store    *storage.InmemoryStore
		registry *prometheus.Registry
		server   *httptest.Server
	)

	BeforeEach(func() {
		store = storage.NewInmemoryStore()
		registry = prometheus.NewRegistry()

		m, err := metrics.New(registry)
		Expect(err).To(Succeed())
		m.LineRead()

		server = httptest.NewServer(cmd.NewStatusRouter(false, store, registry, zap.NewNop()))
	})

	AfterEach(func() {
		server.Close()
		store.Close()
	})

	get := func(path string) (int, string) {
		resp, err := http.Get(server.URL + path)
		Expect(err).To(Succeed())
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(Succeed())

		return resp.StatusCode, string(body)
	}

	It("answers pings", func() {
		code, body := get("/ping")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("pong"))
	})

	It("serves the status document and single keys", func() {
		ctx := context.Background()
		Expect(store.Set(ctx, storage.KeyState, "registered")).To(Succeed())
		Expect(store.Set(ctx, storage.KeyLinesRead, 7)).To(Succeed())

		code, body := get("/status")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"state":"registered","lines":{"read":7}}`))

		code, body = get("/status?key=lines.read")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("7"))

		code, _ = get("/status?key=nope")
		Expect(code).To(Equal(http.StatusNotFound))
	})

	It("exposes metrics", func() {
		code, body := get("/metrics")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring("ircconn_lines_read_total 1"))
	})

	It("streams updates", func() {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/updates", nil)
		Expect(err).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Keep writing until the stream has subscribed
		go func() {
			ticker := time.NewTicker(20 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = store.Set(context.Background(), storage.KeyState, "connected")
				}
			}
		}()

		resp, err := http.DefaultClient.Do(req.WithContext(ctx))
		Expect(err).To(Succeed())
		defer resp.Body.Close()

		buf := make([]byte, 256)
		n, err := resp.Body.Read(buf)
		Expect(err).To(Succeed())
		Expect(string(buf[:n])).To(ContainSubstring("state"))
		Expect(string(buf[:n])).To(ContainSubstring("connected"))
	})
})
