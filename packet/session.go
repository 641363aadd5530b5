package packet

import "encoding/binary"

// sessionWireSize is the on-wire width of a Session packet including its
// tag byte: session_id(4) + subtype(1) + length(1) + nesn(1) + sn(1) +
// payload(32) = 40 field bytes, plus the 1-byte tag = 41.
const sessionWireSize = 1 + 4 + 1 + 1 + 1 + 1 + PayloadSize

// Session is the data/NACK packet variant that carries the stop-and-wait
// ARQ exchange once a session is established.
type Session struct {
	SessionID uint32
	Subtype   SessionSubtype
	Length    byte
	Nesn      byte
	Sn        byte
	Payload   [PayloadSize]byte
}

// NewSessionData builds a Data-subtype Session packet. payload beyond
// length bytes is zeroed (still serialised, per spec, as padding).
func NewSessionData(sessionID uint32, nesn, sn byte, payload []byte) Session {
	var p Session
	p.SessionID = sessionID
	p.Subtype = SubtypeData
	p.Nesn = nesn
	p.Sn = sn
	n := copy(p.Payload[:], payload)
	p.Length = byte(n)
	return p
}

// NewSessionNack builds a NACK-subtype Session packet. Its length is
// always zero and its payload is unused.
func NewSessionNack(sessionID uint32, nesn, sn byte) Session {
	return Session{
		SessionID: sessionID,
		Subtype:   SubtypeNack,
		Nesn:      nesn,
		Sn:        sn,
	}
}

// Encode serialises p into a fixed-width wire frame. It panics if p.Subtype
// is InvalidSubtype. A zero-valued Session{} is not caught by this check:
// its Subtype is SubtypeNack and it encodes as a NACK.
func (p Session) Encode() []byte {
	if p.Subtype == InvalidSubtype {
		panic("packet: cannot encode a Session packet with InvalidSubtype")
	}
	buf := make([]byte, sessionWireSize)
	buf[0] = byte(TagSession)
	binary.LittleEndian.PutUint32(buf[1:5], p.SessionID)
	buf[5] = byte(p.Subtype)
	buf[6] = p.Length
	buf[7] = p.Nesn
	buf[8] = p.Sn
	copy(buf[9:9+PayloadSize], p.Payload[:])
	return buf
}

// DecodeSession validates and deserialises a Session packet from data.
func DecodeSession(data []byte) (*Session, error) {
	if len(data) < 1 {
		return nil, ErrShortFrame
	}
	if Tag(data[0]) != TagSession {
		return nil, ErrWrongTag
	}
	if len(data) < sessionWireSize {
		return nil, ErrTruncated
	}
	p := &Session{
		SessionID: binary.LittleEndian.Uint32(data[1:5]),
		Subtype:   SessionSubtype(data[5]),
		Length:    data[6],
		Nesn:      data[7],
		Sn:        data[8],
	}
	copy(p.Payload[:], data[9:9+PayloadSize])
	return p, nil
}
