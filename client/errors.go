package client

import "errors"

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrCouldNotConnect  = errors.New("could not connect")
	ErrConnection       = errors.New("connection error")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrNoAddresses      = errors.New("no addresses to connect to")
	ErrClosed           = errors.New("connection engine closed")
	ErrShutdownTimeout  = errors.New("workers did not stop within the shutdown grace period")
)
