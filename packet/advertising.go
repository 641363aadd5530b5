package packet

import "encoding/binary"

const advertisingWireSize = 1 + 4

// Advertising is broadcast by an agent in the Advertise state to announce
// its address to anyone listening.
type Advertising struct {
	SourceAddress uint32
}

func (p Advertising) Encode() []byte {
	buf := make([]byte, advertisingWireSize)
	buf[0] = byte(TagAdvertising)
	binary.LittleEndian.PutUint32(buf[1:5], p.SourceAddress)
	return buf
}

func DecodeAdvertising(data []byte) (*Advertising, error) {
	if len(data) < 1 {
		return nil, ErrShortFrame
	}
	if Tag(data[0]) != TagAdvertising {
		return nil, ErrWrongTag
	}
	if len(data) < advertisingWireSize {
		return nil, ErrTruncated
	}
	return &Advertising{SourceAddress: binary.LittleEndian.Uint32(data[1:5])}, nil
}
