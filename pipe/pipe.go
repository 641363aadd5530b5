// Package pipe defines the Pipe interface that connects a Session to the
// chat application above it: a source of outgoing payloads and a sink for
// payloads the ARQ layer has durably accepted. It mirrors a Tx/Rx driver
// split, moved up from the radio boundary to the application boundary and
// generalised from bytes to a fixed-size Payload.
package pipe

// Size is the fixed payload capacity a Session hands to or receives from a
// Pipe; shorter logical messages occupy the prefix, with the remainder
// unspecified but still present on the wire.
const Size = 32

// Payload is one message-sized unit exchanged across a Pipe.
type Payload [Size]byte

// Pipe is consumed by exactly one Session, from exactly one goroutine: the
// session calling NextMessage at the start of each TransmitNextMessage,
// and calling Deposit whenever a new sequence number supersedes the
// previously held one.
type Pipe interface {
	// NextMessage returns the next payload to send and true, or false if
	// nothing is queued, in which case the session sends a 0-length
	// Data packet.
	NextMessage() (Payload, bool)

	// Deposit delivers a payload the ARQ layer has durably accepted.
	Deposit(Payload)
}
