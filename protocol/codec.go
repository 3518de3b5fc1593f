package protocol

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

const DefaultEncoding = "utf-8"

var ErrUnknownEncoding = errors.New("unknown text encoding")

// Codec converts between wire bytes and Go strings.
//
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	enc    encoding.Encoding
	name   string
	recode bool
}

// NewCodec returns a Codec for the encoding label. When recode is true the
// codec writes UTF-8 and only uses the labelled encoding as a per line
// fallback for input that is not valid UTF-8.
func NewCodec(label string, recode bool) (*Codec, error) {
	if label == "" {
		label = DefaultEncoding
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}

	return &Codec{enc: enc, name: name, recode: recode}, nil
}

// Name is the canonical name of the configured encoding.
func (c *Codec) Name() string {
	return c.name
}

// Recode reports whether the codec is in UTF-8 recode mode.
func (c *Codec) Recode() bool {
	return c.recode
}

// Decode never fails. Byte sequences that cannot be decoded are replaced
// with U+FFFD rather than aborting the line.
func (c *Codec) Decode(raw []byte) string {
	if c.recode && utf8.Valid(raw) {
		return string(raw)
	}

	b, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}

	return string(b)
}

// Encode converts line to wire bytes. Characters the encoding cannot
// represent are replaced by the encoding's replacement byte.
func (c *Codec) Encode(line string) ([]byte, error) {
	if c.recode {
		return []byte(line), nil
	}

	return encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(line))
}
