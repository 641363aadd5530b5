// Package radio defines the Port interface the session and agent state
// machines consume; the radio chip driver and SPI transport that satisfy
// it for real LoRa hardware live outside this module. Operations report a
// typed Status rather than a raw error, so callers can distinguish
// timeouts from other failures without sentinel-error comparisons.
package radio

import "context"

// Status distinguishes the outcomes a Port operation can report.
type Status int

const (
	StatusSuccess Status = iota
	StatusTimeout
	StatusBadBufferSize
	StatusBadMessage
	StatusInitializationFailed
	StatusUnspecifiedError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusTimeout:
		return "Timeout"
	case StatusBadBufferSize:
		return "BadBufferSize"
	case StatusBadMessage:
		return "BadMessage"
	case StatusInitializationFailed:
		return "InitializationFailed"
	case StatusUnspecifiedError:
		return "UnspecifiedError"
	default:
		return "Unknown"
	}
}

// Port is the bounded, blocking radio transport the session engine and
// agent drive once per slot. Implementations must be safe for sequential
// use from a single goroutine; no caller in this codebase issues two
// operations concurrently on the same Port.
type Port interface {
	// Transmit blocks until the frame has been sent or the attempt fails.
	// It reports StatusBadBufferSize if frame is empty or exceeds
	// MaxMessageLength().
	Transmit(ctx context.Context, frame []byte) Status

	// Receive blocks, up to an implementation-defined deadline or until
	// ctx is cancelled, for an incoming frame. On StatusSuccess, buf[:n]
	// holds the received frame.
	Receive(ctx context.Context, buf []byte) (n int, status Status)

	// MaxMessageLength returns the largest frame this Port can carry. It
	// must be at least the widest packet variant's wire width.
	MaxMessageLength() int
}
