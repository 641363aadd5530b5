// Package channel implements pipe.Pipe over a pair of buffered Go
// channels, the natural host-side stand-in for the application queues a
// real chat client would drive. A Pipe's producer and consumer run on
// different goroutines -- the application vs. the session's agent thread
// -- so channels replace a single mutex-guarded ring, which would assume
// a single caller.
package channel

import "github.com/Achierius/lora-chat/pipe"

// defaultCapacity bounds how many pending payloads a Pipe will buffer
// before Send or the session's own backpressure takes over.
const defaultCapacity = 32

// Pipe is a pipe.Pipe backed by two buffered channels: outgoing payloads
// queued by the application and drained by the session, and incoming
// payloads deposited by the session and drained by the application.
type Pipe struct {
	outgoing chan pipe.Payload
	incoming chan pipe.Payload
}

// New returns a Pipe with the default buffering.
func New() *Pipe {
	return NewSize(defaultCapacity)
}

// NewSize returns a Pipe whose outgoing and incoming channels each buffer
// up to capacity payloads.
func NewSize(capacity int) *Pipe {
	return &Pipe{
		outgoing: make(chan pipe.Payload, capacity),
		incoming: make(chan pipe.Payload, capacity),
	}
}

// Send queues a payload for the session to pick up on its next
// TransmitNextMessage. It reports false without blocking if the outgoing
// buffer is full.
func (p *Pipe) Send(msg pipe.Payload) bool {
	select {
	case p.outgoing <- msg:
		return true
	default:
		return false
	}
}

// Received returns the channel the application reads durably-accepted
// payloads from.
func (p *Pipe) Received() <-chan pipe.Payload {
	return p.incoming
}

// NextMessage implements pipe.Pipe.
func (p *Pipe) NextMessage() (pipe.Payload, bool) {
	select {
	case msg := <-p.outgoing:
		return msg, true
	default:
		return pipe.Payload{}, false
	}
}

// Deposit implements pipe.Pipe. If the incoming buffer is full the oldest
// undelivered payload is dropped to make room, since a session must never
// block on application backpressure mid-slot.
func (p *Pipe) Deposit(msg pipe.Payload) {
	for {
		select {
		case p.incoming <- msg:
			return
		default:
			select {
			case <-p.incoming:
			default:
			}
		}
	}
}
