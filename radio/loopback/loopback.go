// Package loopback implements an in-process radio.Port pair sharing a
// medium, for tests and local simulation without real LoRa hardware: a
// single bidirectional medium with injectable transmit loss, wired
// directly onto context.Context rather than a poll-and-sleep loop.
package loopback

import (
	"context"

	"github.com/Achierius/lora-chat/radio"
)

// capacity is the frame size this Port pair can carry; it is the packet
// layer's 66-byte radio fragment size, larger than the widest wire frame
// the packet layer produces (41 bytes).
const capacity = 66

// Port is one end of a loopback medium.
type Port struct {
	inbox    chan []byte
	peer     *Port
	dropFunc func(txCount int) bool
	txCount  int
}

// NewPair returns two Ports wired to each other: whatever a transmits, b
// receives, and vice versa.
func NewPair() (a, b *Port) {
	a = &Port{inbox: make(chan []byte, 64)}
	b = &Port{inbox: make(chan []byte, 64)}
	a.peer, b.peer = b, a
	return a, b
}

// WithDropEvery causes every nth transmit attempt (1-indexed) on p to
// silently vanish instead of reaching the peer, modelling lossy radio
// conditions.
func (p *Port) WithDropEvery(n int) *Port {
	p.dropFunc = func(txCount int) bool { return n > 0 && txCount%n == 0 }
	return p
}

// WithDropFunc installs an arbitrary predicate over the 1-indexed transmit
// count, for tests that need a specific loss pattern.
func (p *Port) WithDropFunc(f func(txCount int) bool) *Port {
	p.dropFunc = f
	return p
}

func (p *Port) Transmit(ctx context.Context, frame []byte) radio.Status {
	if len(frame) == 0 || len(frame) > capacity {
		return radio.StatusBadBufferSize
	}
	p.txCount++
	if p.dropFunc != nil && p.dropFunc(p.txCount) {
		return radio.StatusSuccess
	}

	cp := make([]byte, len(frame))
	copy(cp, frame)
	select {
	case p.peer.inbox <- cp:
		return radio.StatusSuccess
	case <-ctx.Done():
		return radio.StatusTimeout
	}
}

func (p *Port) Receive(ctx context.Context, buf []byte) (int, radio.Status) {
	select {
	case frame := <-p.inbox:
		if len(buf) < len(frame) {
			return 0, radio.StatusBadBufferSize
		}
		n := copy(buf, frame)
		return n, radio.StatusSuccess
	case <-ctx.Done():
		return 0, radio.StatusTimeout
	}
}

func (p *Port) MaxMessageLength() int { return capacity }
