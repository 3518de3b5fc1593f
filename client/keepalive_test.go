package client_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/ircconn/client"
)

var _ = Describe("client / heartbeat", func() {
	var (
		now        time.Time
		registered bool
		probes     int
		failures   []error
		hb         *client.Heartbeat
	)

	advance := func(d time.Duration) {
		now = now.Add(d)
	}

	BeforeEach(func() {
		now = time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
		registered = true
		probes = 0
		failures = nil

		hb = client.NewHeartbeat(
			func() time.Time { return now },
			func() bool { return registered },
			60*time.Second,
			300*time.Second,
			func() error {
				probes++
				return nil
			},
			func(err error) { failures = append(failures, err) },
		)
	})

	It("probes once nothing has been heard for longer than the ping interval", func() {
		advance(60 * time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(probes).To(Equal(0))

		advance(time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(probes).To(Equal(1))

		advance(60 * time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(probes).To(Equal(1))
	})

	It("declares the connection dead when a probe stays unanswered", func() {
		advance(61 * time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(probes).To(Equal(1))

		advance(299 * time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(failures).To(BeEmpty())

		advance(time.Second)
		Expect(hb.Tick()).To(BeFalse())
		Expect(failures).To(HaveLen(1))
		Expect(probes).To(Equal(1))
	})

	It("still declares the connection dead when the reply comes after the timeout", func() {
		advance(61 * time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(probes).To(Equal(1))

		advance(301 * time.Second)
		hb.Pong()
		Expect(hb.Lag()).To(Equal(301 * time.Second))

		Expect(hb.Tick()).To(BeFalse())
		Expect(failures).To(HaveLen(1))
	})

	It("measures lag and waits another interval after a reply", func() {
		advance(61 * time.Second)
		hb.Tick()
		Expect(probes).To(Equal(1))

		advance(2 * time.Second)
		hb.Pong()
		Expect(hb.Lag()).To(Equal(2 * time.Second))

		advance(60 * time.Second)
		hb.Tick()
		Expect(probes).To(Equal(1))

		advance(time.Second)
		hb.Tick()
		Expect(probes).To(Equal(2))
	})

	It("does nothing until registered", func() {
		registered = false

		advance(10 * time.Minute)
		Expect(hb.Tick()).To(BeTrue())
		Expect(probes).To(Equal(0))
		Expect(failures).To(BeEmpty())
	})

	It("keeps going when the probe cannot be written", func() {
		hb = client.NewHeartbeat(
			func() time.Time { return now },
			func() bool { return true },
			60*time.Second,
			300*time.Second,
			func() error { return errors.New("broken pipe") },
			func(err error) { failures = append(failures, err) },
		)

		advance(61 * time.Second)
		Expect(hb.Tick()).To(BeTrue())
		Expect(failures).To(BeEmpty())
	})
})

var _ = Describe("client / errorFlag", func() {
	It("is issued once per episode", func() {
		var flag client.ErrorFlag
		Expect(flag.IsSet()).To(BeFalse())
		Expect(flag.Issue()).To(BeFalse())

		flag.Raise(errors.New("reset by peer"))
		flag.Raise(nil)
		Expect(flag.IsSet()).To(BeTrue())
		Expect(flag.LastError()).To(MatchError("reset by peer"))
		Expect(flag.Issue()).To(BeTrue())
		Expect(flag.Issue()).To(BeFalse())

		flag.Clear()
		Expect(flag.IsSet()).To(BeFalse())
		Expect(flag.LastError()).To(BeNil())

		flag.Raise(errors.New("timeout"))
		Expect(flag.Issue()).To(BeTrue())
	})
})
