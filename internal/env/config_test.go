package env_test

import (
	"context"
	"os"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/ircconn/client"
	"github.com/luma/ircconn/internal/env"
	"github.com/luma/ircconn/transport"
)

var _ = Describe("env", func() {
	var set []string

	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		set = append(set, key)
	}

	AfterEach(func() {
		for _, key := range set {
			os.Unsetenv(key)
		}

		set = nil
	})

	Describe("LoadConfig()", func() {
		It("falls back to the defaults", func() {
			conf, err := env.LoadConfig(context.Background())
			Expect(err).To(Succeed())

			Expect(conf.Addresses).To(Equal([]string{"irc.libera.chat"}))
			Expect(conf.Port).To(Equal(6667))
			Expect(conf.PingTimeout).To(Equal(300 * time.Second))
			Expect(conf.SendDelay).To(Equal(200 * time.Millisecond))
			Expect(conf.AutoRetryLimit).To(Equal(3))
			Expect(conf.TLS.Enabled).To(BeFalse())
		})

		It("reads IRC_ variables", func() {
			setenv("IRC_ADDRESSES", "irc1.example.net,irc2.example.net")
			setenv("IRC_PORT", "6697")
			setenv("IRC_TLS_ENABLED", "true")
			setenv("IRC_PROXY_TYPE", "socks5")
			setenv("IRC_PROXY_PORT", "1080")
			setenv("IRC_AUTO_RETRY_DELAY", "5s")

			conf, err := env.LoadConfig(context.Background())
			Expect(err).To(Succeed())

			Expect(conf.Addresses).To(Equal([]string{"irc1.example.net", "irc2.example.net"}))
			Expect(conf.Port).To(Equal(6697))
			Expect(conf.TLS.Enabled).To(BeTrue())
			Expect(conf.Proxy.Type).To(Equal("socks5"))
			Expect(conf.Proxy.Port).To(Equal(1080))
			Expect(conf.AutoRetryDelay).To(Equal(5 * time.Second))
		})
	})

	It("converts into transport and client options", func() {
		setenv("IRC_PROXY_TYPE", "http")
		setenv("IRC_PING_INTERVAL", "90s")

		conf, err := env.LoadConfig(context.Background())
		Expect(err).To(Succeed())

		log := zap.NewNop()
		topts := conf.TransportOptions(log)
		Expect(topts.Proxy.Type).To(Equal(transport.ProxyHTTP))

		dialer, err := transport.NewDialer(topts)
		Expect(err).To(Succeed())

		copts := conf.ClientOptions(dialer, nil, log)
		Expect(copts.PingInterval).To(Equal(90 * time.Second))
		Expect(copts.AutoReconnect).To(BeTrue())

		_, err = client.New(copts)
		Expect(err).To(Succeed())
	})

	Describe("MakeLogger()", func() {
		It("accepts zap level names", func() {
			log, err := env.MakeLogger("debug")
			Expect(err).To(Succeed())
			Expect(log.Core().Enabled(zap.DebugLevel)).To(BeTrue())
		})

		It("rejects unknown levels", func() {
			_, err := env.MakeLogger("chatty")
			Expect(err).To(HaveOccurred())
		})
	})
})
