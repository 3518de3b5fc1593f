package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/ircconn/protocol"
)

var _ = Describe("Codec", func() {
	latin1Line := []byte{'c', 'a', 'f', 0xe9}

	It("rejects unknown encodings", func() {
		_, err := protocol.NewCodec("klingon-8", false)
		Expect(err).To(MatchError(protocol.ErrUnknownEncoding))
	})

	It("defaults to utf-8", func() {
		codec, err := protocol.NewCodec("", false)
		Expect(err).To(Succeed())
		Expect(codec.Name()).To(Equal("utf-8"))
	})

	Describe("without recode", func() {
		It("decodes with the configured encoding", func() {
			codec, err := protocol.NewCodec("iso-8859-1", false)
			Expect(err).To(Succeed())

			Expect(codec.Decode(latin1Line)).To(Equal("café"))
		})

		It("replaces malformed utf-8 instead of failing", func() {
			codec, err := protocol.NewCodec("utf-8", false)
			Expect(err).To(Succeed())

			Expect(codec.Decode(latin1Line)).To(Equal("caf�"))
		})
	})

	Describe("with recode", func() {
		var codec *protocol.Codec

		BeforeEach(func() {
			var err error
			codec, err = protocol.NewCodec("iso-8859-1", true)
			Expect(err).To(Succeed())
		})

		It("reads valid utf-8 as utf-8", func() {
			Expect(codec.Decode([]byte("café"))).To(Equal("café"))
		})

		It("falls back to the configured encoding per line", func() {
			Expect(codec.Decode(latin1Line)).To(Equal("café"))
			Expect(codec.Decode([]byte("naïve"))).To(Equal("naïve"))
		})

		It("always writes utf-8", func() {
			b, err := codec.Encode("café")
			Expect(err).To(Succeed())
			Expect(b).To(Equal([]byte("café")))
		})
	})
})
