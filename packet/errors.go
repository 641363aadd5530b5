package packet

import "errors"

// Recoverable deserialisation errors: the frame is dropped, nothing else.
var (
	ErrShortFrame = errors.New("packet: frame shorter than tag")
	ErrWrongTag   = errors.New("packet: tag does not match expected variant")
	ErrTruncated  = errors.New("packet: frame shorter than variant width")
)
