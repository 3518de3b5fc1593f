package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/ircconn/protocol"
)

var _ = Describe("Message", func() {
	Describe("ParseMessage()", func() {
		It("returns an error for empty lines", func() {
			_, err := protocol.ParseMessage("   ")
			Expect(err).To(MatchError(protocol.ErrEmptyLine))
		})

		It("parses a prefix, command and trailing parameter", func() {
			msg, err := protocol.ParseMessage(":irc.example.net 001 nick :Welcome to the network")
			Expect(err).To(Succeed())
			Expect(msg.Prefix).To(Equal("irc.example.net"))
			Expect(msg.Command).To(Equal(protocol.RplWelcome))
			Expect(msg.Params).To(Equal([]string{"nick", "Welcome to the network"}))
		})

		It("parses lines without a prefix", func() {
			msg, err := protocol.ParseMessage("PING irc.example.net")
			Expect(err).To(Succeed())
			Expect(msg.Prefix).To(BeEmpty())
			Expect(msg.Command).To(Equal(protocol.PING))
			Expect(msg.Params).To(Equal([]string{"irc.example.net"}))
		})

		It("upper cases commands", func() {
			msg, err := protocol.ParseMessage("pong server")
			Expect(err).To(Succeed())
			Expect(msg.Command).To(Equal(protocol.PONG))
		})
	})

	Describe("Classify()", func() {
		It("recognises the welcome reply", func() {
			Expect(protocol.Classify(":srv 001 me :Welcome")).To(Equal(protocol.KindWelcome))
		})

		It("recognises PONG with and without a prefix", func() {
			Expect(protocol.Classify(":srv PONG srv :srv")).To(Equal(protocol.KindPong))
			Expect(protocol.Classify("PONG srv")).To(Equal(protocol.KindPong))
		})

		It("recognises ERROR", func() {
			Expect(protocol.Classify("ERROR :Closing link")).To(Equal(protocol.KindError))
		})

		It("passes everything else through", func() {
			Expect(protocol.Classify(":nick!u@h PRIVMSG #chan :001")).To(Equal(protocol.KindOther))
			Expect(protocol.Classify("")).To(Equal(protocol.KindOther))
		})
	})

	It("formats PING probes", func() {
		Expect(protocol.Ping("irc.example.net")).To(Equal("PING irc.example.net"))
	})
})
