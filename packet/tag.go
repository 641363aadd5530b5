// Package packet implements the typed, tag-prefixed wire frames exchanged
// between the two peers of a lora-chat link: session data/NACK, peer
// advertising, connection-request, and connection-accept. Every variant
// encodes to a fixed-size buffer with binary.LittleEndian and a leading
// tag byte, so a receiver can dispatch on Tag before it knows which
// struct to decode into.
package packet

// Tag identifies which packet variant a wire frame carries. It is always
// the first byte of a frame.
type Tag byte

const (
	TagSession           Tag = 0
	TagConnectionRequest Tag = 1
	TagConnectionAccept  Tag = 2
	TagAdvertising       Tag = 3
)

func (t Tag) String() string {
	switch t {
	case TagSession:
		return "Session"
	case TagConnectionRequest:
		return "ConnectionRequest"
	case TagConnectionAccept:
		return "ConnectionAccept"
	case TagAdvertising:
		return "Advertising"
	default:
		return "Unknown"
	}
}

// SessionSubtype discriminates a Session packet's body between a NACK and
// a data transmission.
type SessionSubtype byte

const (
	// SubtypeNack is the wire value for a NACK. It is also, awkwardly,
	// the zero value of SessionSubtype: a bare Session{} reads back as
	// a NACK, not as InvalidSubtype below -- Go gives us no way to make
	// zero-value construction land on a distinguishable sentinel.
	SubtypeNack SessionSubtype = 0
	SubtypeData SessionSubtype = 1

	// InvalidSubtype is a Go-only value (never serialised), reachable
	// only if something explicitly assigns it -- never by leaving the
	// field unset, since SubtypeNack already owns the zero value.
	// Encode panics if asked to serialise it. Nothing in this codebase
	// assigns it; NewSessionData/NewSessionNack always set Subtype
	// explicitly to SubtypeData/SubtypeNack.
	InvalidSubtype SessionSubtype = 0xFF
)

// PayloadSize is the fixed capacity of a Session packet's payload, in
// bytes. Shorter logical messages are stored in the prefix; Length
// carries their actual size.
const PayloadSize = 32

// radioFragmentSize is the radio fragment size this package's frames are
// handed to, 66 bytes, which exceeds the widest variant's wire width (41
// bytes, a Session packet). At init time every variant's wire width is
// checked against it, standing in for the source's static_asserts since
// Go has no compile-time assertion mechanism as expressive as C++'s;
// field overlap within a variant is not checked.
const radioFragmentSize = 66

func init() {
	widths := []int{sessionWireSize, connectionRequestWireSize, connectionAcceptWireSize, advertisingWireSize}
	for _, w := range widths {
		if w > radioFragmentSize {
			panic("packet: a variant's wire width exceeds the assumed radio fragment size")
		}
	}
}
