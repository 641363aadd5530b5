// Package wire translates between the session-start wall-clock domain
// exchanged over the radio link and each peer's local monotonic clock.
package wire

import "time"

// WallNow returns the current wall-clock time as nanoseconds since the
// Unix epoch, the form carried in a ConnectionAccept packet's
// SessionStartTime field.
func WallNow() uint64 {
	return uint64(time.Now().UnixNano())
}

// FutureWallTime returns the wall-clock time `delay` from now, in the same
// representation as WallNow, for an advertiser building the
// ConnectionAccept it is about to send.
func FutureWallTime(delay time.Duration) uint64 {
	return uint64(time.Now().Add(delay).UnixNano())
}

// LocalStartTime translates a peer-supplied wire wall-clock time into this
// peer's local monotonic domain: local_start = monotonic_now +
// (wire_time - wallclock_now). The error introduced is bounded by the
// handshake's round-trip time; no further resynchronisation is performed.
func LocalStartTime(monotonicNow time.Time, wireWallTime uint64) time.Time {
	wallNow := WallNow()
	delta := int64(wireWallTime) - int64(wallNow)
	return monotonicNow.Add(time.Duration(delta))
}
