package packet

import "encoding/binary"

const connectionRequestWireSize = 1 + 4 + 4

// ConnectionRequest is sent by a seeker to the advertiser it heard, asking
// to be accepted into a session.
type ConnectionRequest struct {
	SourceAddress uint32
	TargetAddress uint32
}

func (p ConnectionRequest) Encode() []byte {
	buf := make([]byte, connectionRequestWireSize)
	buf[0] = byte(TagConnectionRequest)
	binary.LittleEndian.PutUint32(buf[1:5], p.SourceAddress)
	binary.LittleEndian.PutUint32(buf[5:9], p.TargetAddress)
	return buf
}

func DecodeConnectionRequest(data []byte) (*ConnectionRequest, error) {
	if len(data) < 1 {
		return nil, ErrShortFrame
	}
	if Tag(data[0]) != TagConnectionRequest {
		return nil, ErrWrongTag
	}
	if len(data) < connectionRequestWireSize {
		return nil, ErrTruncated
	}
	return &ConnectionRequest{
		SourceAddress: binary.LittleEndian.Uint32(data[1:5]),
		TargetAddress: binary.LittleEndian.Uint32(data[5:9]),
	}, nil
}
