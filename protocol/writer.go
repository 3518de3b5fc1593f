package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmbeddedNewline = errors.New("line contains an embedded CR or LF")

	Terminal = []byte("\r\n")
)

// WriteLine encodes line with codec and writes it to w followed by `\r\n`.
// The whole line is handed to w in a single Write call.
func WriteLine(w io.Writer, codec *Codec, line string) error {
	if err := ValidateLine(line); err != nil {
		return err
	}

	b, err := codec.Encode(line)
	if err != nil {
		return fmt.Errorf("Failed to encode line: %w", err)
	}

	_, err = w.Write(append(b, Terminal...))
	return err
}

// ValidateLine returns ErrEmbeddedNewline if writing line would put more
// than one line on the wire.
func ValidateLine(line string) error {
	for i := 0; i < len(line); i++ {
		if line[i] == '\r' || line[i] == '\n' {
			return ErrEmbeddedNewline
		}
	}

	return nil
}

// TrimTerminal strips a trailing `\n` or `\r\n` from raw.
func TrimTerminal(raw []byte) []byte {
	raw = bytes.TrimSuffix(raw, []byte{'\n'})
	return bytes.TrimSuffix(raw, []byte{'\r'})
}
