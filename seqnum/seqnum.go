// Package seqnum implements the 8-bit wrapping sequence numbers used by the
// session engine's stop-and-wait ARQ.
package seqnum

// Number is an 8-bit sequence number. All arithmetic wraps modulo 256;
// Go's uint8 overflow semantics give us this for free. Equality is bit
// equality, exactly as the wire representation requires.
type Number uint8

// Max is the reserved sentinel used to mean "nothing has been
// acknowledged or received yet" during session bootstrap.
const Max Number = 0xFF

// Next returns the wrap-preserving successor of n.
func (n Number) Next() Number { return n + 1 }

// Prev returns the wrap-preserving predecessor of n.
func (n Number) Prev() Number { return n - 1 }

// Add returns n advanced by delta, wrapping modulo 256.
func (n Number) Add(delta uint8) Number { return n + Number(delta) }
