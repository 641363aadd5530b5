// Package clock maps time onto the four-phase transmit/gap/receive/gap
// slot cycle shared by both peers of a session.
package clock

import "time"

// Kind classifies what an agent should be doing at a given instant, from
// the initiator's perspective. Followers localise it via Localise.
type Kind int

const (
	Inactive Kind = iota
	Transmitting
	Receiving
)

func (k Kind) String() string {
	switch k {
	case Inactive:
		return "Inactive"
	case Transmitting:
		return "Transmitting"
	case Receiving:
		return "Receiving"
	default:
		return "Unknown"
	}
}

// Localise swaps Transmitting and Receiving, which is how a follower
// translates the initiator-relative phase the Clock computes into its own
// local action.
func Localise(k Kind) Kind {
	switch k {
	case Transmitting:
		return Receiving
	case Receiving:
		return Transmitting
	default:
		return Inactive
	}
}

// Clock is immutable after construction. It maps any t >= start onto
// (period index, phase) and classifies the phase into Transmitting,
// Inactive, or Receiving, from the initiator's point of view.
type Clock struct {
	start  time.Time
	txDur  time.Duration
	gapDur time.Duration
	period time.Duration
}

// New builds a Clock. gapDur may be zero; the Inactive phases collapse to
// empty intervals and the cycle becomes Transmitting -> Receiving ->
// Transmitting -> ....
func New(start time.Time, txDur, gapDur time.Duration) Clock {
	return Clock{
		start:  start,
		txDur:  txDur,
		gapDur: gapDur,
		period: 2 * (txDur + gapDur),
	}
}

// StartTime returns the time at which this clock's cycle begins.
func (c Clock) StartTime() time.Time { return c.start }

// elapsedInPeriod returns how far into the current period t falls.
// t must not precede StartTime(); callers other than ActionKind and
// TimeOfNextAction should not need this.
func (c Clock) elapsedInPeriod(t time.Time) time.Duration {
	elapsed := t.Sub(c.start)
	if c.period <= 0 {
		return 0
	}
	return elapsed % c.period
}

// ActionKind classifies t >= StartTime() into Transmitting, Inactive, or
// Receiving. Calling it with t < StartTime() is a programming error.
func (c Clock) ActionKind(t time.Time) Kind {
	if t.Before(c.start) {
		panic("clock: ActionKind called before start time")
	}
	elapsed := c.elapsedInPeriod(t)
	switch {
	case elapsed < c.txDur:
		return Transmitting
	case elapsed < c.txDur+c.gapDur:
		return Inactive
	case elapsed < 2*c.txDur+c.gapDur:
		return Receiving
	default:
		return Inactive
	}
}

// TimeOfNextAction returns the earliest t' > t at which ActionKind(t')
// differs from ActionKind(t), aligned to the phase boundary at or after
// t. If t precedes StartTime(), it returns StartTime().
func (c Clock) TimeOfNextAction(t time.Time) time.Time {
	if t.Before(c.start) {
		return c.start
	}
	elapsed := c.elapsedInPeriod(t)
	periodStart := t.Add(-elapsed)

	switch {
	case elapsed < c.txDur:
		return periodStart.Add(c.txDur)
	case elapsed < c.txDur+c.gapDur:
		return periodStart.Add(c.txDur + c.gapDur)
	case elapsed < 2*c.txDur+c.gapDur:
		return periodStart.Add(2*c.txDur + c.gapDur)
	default:
		return periodStart.Add(c.period)
	}
}
