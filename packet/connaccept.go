package packet

import "encoding/binary"

const connectionAcceptWireSize = 1 + 4 + 4 + 8 + 4

// ConnectionAccept is sent by an advertiser back to the requester it has
// chosen to pair with. SessionStartTime is a 64-bit nanosecond wall-clock
// count, always little-endian on the wire regardless of host (see
// wire.LocalStartTime). encoding/binary.LittleEndian already produces
// wire-correct bytes on any host architecture, so no manual byte-reversal
// branch is needed for a big-endian host.
type ConnectionAccept struct {
	SourceAddress    uint32
	TargetAddress    uint32
	SessionStartTime uint64
	SessionID        uint32
}

func (p ConnectionAccept) Encode() []byte {
	buf := make([]byte, connectionAcceptWireSize)
	buf[0] = byte(TagConnectionAccept)
	binary.LittleEndian.PutUint32(buf[1:5], p.SourceAddress)
	binary.LittleEndian.PutUint32(buf[5:9], p.TargetAddress)
	binary.LittleEndian.PutUint64(buf[9:17], p.SessionStartTime)
	binary.LittleEndian.PutUint32(buf[17:21], p.SessionID)
	return buf
}

func DecodeConnectionAccept(data []byte) (*ConnectionAccept, error) {
	if len(data) < 1 {
		return nil, ErrShortFrame
	}
	if Tag(data[0]) != TagConnectionAccept {
		return nil, ErrWrongTag
	}
	if len(data) < connectionAcceptWireSize {
		return nil, ErrTruncated
	}
	return &ConnectionAccept{
		SourceAddress:    binary.LittleEndian.Uint32(data[1:5]),
		TargetAddress:    binary.LittleEndian.Uint32(data[5:9]),
		SessionStartTime: binary.LittleEndian.Uint64(data[9:17]),
		SessionID:        binary.LittleEndian.Uint32(data[17:21]),
	}, nil
}
