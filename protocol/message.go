package protocol

import (
	"errors"
	"strings"
)

var ErrEmptyLine = errors.New("Line is empty")

type Command string

const (
	PING  Command = "PING"
	PONG  Command = "PONG"
	ERROR Command = "ERROR"

	// RplWelcome is the numeric reply a server sends once registration
	// succeeded.
	RplWelcome Command = "001"
)

// LineKind is the result of classifying a line for connection bookkeeping.
type LineKind int

const (
	KindOther LineKind = iota
	KindWelcome
	KindPong
	KindError
)

func (k LineKind) String() string {
	switch k {
	case KindWelcome:
		return "welcome"
	case KindPong:
		return "pong"
	case KindError:
		return "error"
	default:
		return "other"
	}
}

// Message is the minimal split of a line into prefix, command and params.
type Message struct {
	Prefix  string
	Command Command
	Params  []string
}

// ParseMessage splits a decoded line. It does not validate commands or
// parameter counts.
func ParseMessage(line string) (*Message, error) {
	line = strings.TrimLeft(line, " ")
	if line == "" {
		return nil, ErrEmptyLine
	}

	msg := &Message{}

	if line[0] == ':' {
		end := strings.IndexByte(line, ' ')
		if end < 0 {
			// A prefix with nothing after it
			msg.Prefix = line[1:]
			return msg, nil
		}

		msg.Prefix = line[1:end]
		line = strings.TrimLeft(line[end+1:], " ")
	}

	for line != "" {
		if line[0] == ':' && msg.Command != "" {
			msg.Params = append(msg.Params, line[1:])
			break
		}

		end := strings.IndexByte(line, ' ')
		token := line
		if end >= 0 {
			token = line[:end]
			line = strings.TrimLeft(line[end+1:], " ")
		} else {
			line = ""
		}

		if msg.Command == "" {
			msg.Command = Command(strings.ToUpper(token))
			continue
		}

		msg.Params = append(msg.Params, token)
	}

	return msg, nil
}

// Classify reports whether line is one of the replies the connection engine
// keeps track of.
func Classify(line string) LineKind {
	msg, err := ParseMessage(line)
	if err != nil {
		return KindOther
	}

	switch msg.Command {
	case RplWelcome:
		return KindWelcome
	case PONG:
		return KindPong
	case ERROR:
		return KindError
	default:
		return KindOther
	}
}

// Ping formats a liveness probe addressed to server.
func Ping(server string) string {
	return string(PING) + " " + server
}
