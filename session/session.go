// Package session implements the slot-scheduled stop-and-wait ARQ engine
// that drives one radio.Port and one pipe.Pipe through a single chat
// session: an action selector, four per-slot behaviours (transmit-new,
// retransmit, NACK, receive), and the initiator/follower bootstrap
// asymmetry that lets a follower answer the very first slot without
// having sent anything yet. sleepUntil splits busy-spin from
// time.Timer parking below a 5ms threshold, trading CPU for scheduling
// accuracy on narrow slots.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Achierius/lora-chat/clock"
	"github.com/Achierius/lora-chat/packet"
	"github.com/Achierius/lora-chat/pipe"
	"github.com/Achierius/lora-chat/radio"
	"github.com/Achierius/lora-chat/seqnum"
)

// TimeoutLimit is the largest consecutive-NACK count at which a session
// still sends a NACK: it sends TimeoutLimit+1 NACKs in a row, and the
// transmit slot after that terminates the session.
const TimeoutLimit = 4

// spinThreshold is how close to a wake time the engine busy-spins instead
// of parking on a timer, trading CPU for scheduling accuracy on narrow
// slots.
const spinThreshold = 5 * time.Millisecond

// historyCapacity bounds the ring buffer Session.History() reads from.
const historyCapacity = 64

// Action is what a session decided to do, or did, for one slot.
type Action int

const (
	ActionSleepUntilNextAction Action = iota
	ActionReceive
	ActionTransmitNextMessage
	ActionRetransmitMessage
	ActionTransmitNack
	ActionTerminateSession
	ActionSessionComplete
)

func (a Action) String() string {
	switch a {
	case ActionSleepUntilNextAction:
		return "SleepUntilNextAction"
	case ActionReceive:
		return "Receive"
	case ActionTransmitNextMessage:
		return "TransmitNextMessage"
	case ActionRetransmitMessage:
		return "RetransmitMessage"
	case ActionTransmitNack:
		return "TransmitNack"
	case ActionTerminateSession:
		return "TerminateSession"
	case ActionSessionComplete:
		return "SessionComplete"
	default:
		return "Unknown"
	}
}

// HistoryEntry records one action a Session took, for diagnostics and
// tests; it has no effect on protocol behaviour.
type HistoryEntry struct {
	Time   time.Time
	Action Action
}

// Session owns the ARQ state for one established link between two peers.
// It is created by an agent at connection-accept time and is not safe for
// concurrent use: a single goroutine owns it end to end.
type Session struct {
	ID          uint32
	clock       clock.Clock
	weInitiated bool

	lastRecvSn      seqnum.Number
	lastAckedSentSn seqnum.Number
	lastSentPacket  packet.Session
	lastRecvMessage pipe.Payload

	receivedGoodPacketInLastReceiveSequence bool
	timeoutCounter                          int
	complete                                bool

	history     [historyCapacity]HistoryEntry
	historyHead int
	historyLen  int

	log *logrus.Entry
}

// New constructs a Session. weInitiated must be true for exactly one of
// the two peers sharing clk; the other primes its bootstrap sequence
// numbers so that the very first transmit on each side is a
// TransmitNextMessage rather than a spurious NACK or retransmit.
func New(id uint32, clk clock.Clock, weInitiated bool) *Session {
	s := &Session{
		ID:          id,
		clock:       clk,
		weInitiated: weInitiated,

		lastRecvSn: seqnum.Max,
		// The flag starts true: neither side has failed a receive yet, so
		// there is nothing to NACK about until the first real slot proves
		// otherwise.
		receivedGoodPacketInLastReceiveSequence: true,

		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	if weInitiated {
		s.lastAckedSentSn = seqnum.Max
		s.lastSentPacket.Sn = byte(seqnum.Max)
		s.lastSentPacket.Nesn = byte(seqnum.Max)
	} else {
		s.lastAckedSentSn = seqnum.Max.Prev()
		s.lastSentPacket.Sn = byte(seqnum.Max)
		s.lastSentPacket.Nesn = 0
	}
	return s
}

// SetLogger installs a structured logging sink; without one, Session logs
// to the standard logrus logger.
func (s *Session) SetLogger(log *logrus.Entry) {
	s.log = log
}

// Complete reports whether this session has terminated. No further
// transmits or receives occur once it has.
func (s *Session) Complete() bool { return s.complete }

// History returns this session's most recent actions, oldest first.
func (s *Session) History() []HistoryEntry {
	out := make([]HistoryEntry, s.historyLen)
	start := (s.historyHead - s.historyLen + historyCapacity) % historyCapacity
	for i := 0; i < s.historyLen; i++ {
		out[i] = s.history[(start+i)%historyCapacity]
	}
	return out
}

func (s *Session) recordHistory(t time.Time, a Action) {
	s.history[s.historyHead] = HistoryEntry{Time: t, Action: a}
	s.historyHead = (s.historyHead + 1) % historyCapacity
	if s.historyLen < historyCapacity {
		s.historyLen++
	}
}

// localisedKind maps the clock's initiator-relative classification onto
// this session's own local action at t. Only a follower swaps
// Transmitting and Receiving; an initiator's local kind is the clock's
// kind unchanged.
func (s *Session) localisedKind(t time.Time) clock.Kind {
	kind := s.clock.ActionKind(t)
	if !s.weInitiated {
		kind = clock.Localise(kind)
	}
	return kind
}

// SelectAction decides what this session would do if "now" were t,
// without performing it. It is used both for the live decision at the
// start of ExecuteCurrentAction and to pre-compute the action due after
// the next sleep.
func (s *Session) SelectAction(t time.Time) Action {
	if s.complete {
		return ActionSessionComplete
	}
	return s.actionForKind(s.localisedKind(t))
}

func (s *Session) actionForKind(kind clock.Kind) Action {
	switch kind {
	case clock.Inactive:
		return ActionSleepUntilNextAction
	case clock.Receiving:
		return ActionReceive
	}

	if !s.receivedGoodPacketInLastReceiveSequence {
		if s.timeoutCounter <= TimeoutLimit {
			return ActionTransmitNack
		}
		return ActionTerminateSession
	}

	sentSn := seqnum.Number(s.lastSentPacket.Sn)
	switch {
	case s.lastAckedSentSn == sentSn:
		return ActionTransmitNextMessage
	case s.lastAckedSentSn.Next() == sentSn:
		return ActionRetransmitMessage
	default:
		panic(fmt.Sprintf("session: ARQ state corrupt: lastAckedSentSn=%d lastSentPacket.Sn=%d", s.lastAckedSentSn, sentSn))
	}
}

// ExecuteCurrentAction performs whatever action is due right now, then
// sleeps until the next non-Inactive action boundary (pre-computing that
// action while asleep) and returns it. The slot that terminates a session
// still sleeps through the following boundary before ActionSessionComplete
// is reported, the same as any other action.
func (s *Session) ExecuteCurrentAction(ctx context.Context, port radio.Port, p pipe.Pipe) Action {
	now := time.Now()
	action := s.SelectAction(now)
	s.performAction(ctx, action, port, p)
	s.recordHistory(now, action)

	if action == ActionTerminateSession {
		s.complete = true
	}

	wake := s.nextWakeBoundary(time.Now())
	next := s.SelectAction(wake)
	s.sleepUntil(ctx, wake)
	return next
}

// nextWakeBoundary finds the next action boundary after t whose localised
// kind is not Inactive, skipping the gap phases entirely as a single
// sleep rather than waking once per gap.
func (s *Session) nextWakeBoundary(t time.Time) time.Time {
	wake := s.clock.TimeOfNextAction(t)
	for s.localisedKind(wake) == clock.Inactive {
		wake = s.clock.TimeOfNextAction(wake)
	}
	return wake
}

// SleepUntilStartTime blocks until the session's clock start time.
func (s *Session) SleepUntilStartTime(ctx context.Context) {
	s.sleepUntil(ctx, s.clock.StartTime())
}

func (s *Session) sleepUntil(ctx context.Context, t time.Time) {
	for {
		remaining := time.Until(t)
		if remaining <= 0 {
			return
		}
		if remaining < spinThreshold {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		timer := time.NewTimer(remaining - spinThreshold)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Session) performAction(ctx context.Context, action Action, port radio.Port, p pipe.Pipe) {
	switch action {
	case ActionReceive:
		s.receive(ctx, port, p)
	case ActionTransmitNextMessage:
		s.transmitNextMessage(ctx, port, p)
	case ActionRetransmitMessage:
		s.retransmitMessage(ctx, port)
	case ActionTransmitNack:
		s.transmitNack(ctx, port)
	case ActionTerminateSession:
		s.log.WithField("session_id", s.ID).Info("session terminating after exceeding timeout limit")
	case ActionSleepUntilNextAction, ActionSessionComplete:
		// nothing to do
	}
}

func (s *Session) transmitNextMessage(ctx context.Context, port radio.Port, p pipe.Pipe) {
	nesn := s.lastRecvSn.Next()
	sn := s.lastAckedSentSn.Next()

	var payloadBytes []byte
	if msg, ok := p.NextMessage(); ok {
		payloadBytes = msg[:]
	}

	pkt := packet.NewSessionData(s.ID, byte(nesn), byte(sn), payloadBytes)
	s.lastSentPacket = pkt

	status := port.Transmit(ctx, pkt.Encode())
	s.log.WithFields(logrus.Fields{"session_id": s.ID, "sn": sn, "nesn": nesn, "status": status}).Debug("transmitted data packet")
}

func (s *Session) retransmitMessage(ctx context.Context, port radio.Port) {
	status := port.Transmit(ctx, s.lastSentPacket.Encode())
	s.log.WithFields(logrus.Fields{"session_id": s.ID, "sn": s.lastSentPacket.Sn, "status": status}).Debug("retransmitted data packet")
}

func (s *Session) transmitNack(ctx context.Context, port radio.Port) {
	nesn := s.lastRecvSn.Next()
	pkt := packet.NewSessionNack(s.ID, byte(nesn), s.lastSentPacket.Sn)
	status := port.Transmit(ctx, pkt.Encode())
	s.timeoutCounter++
	s.log.WithFields(logrus.Fields{"session_id": s.ID, "nesn": nesn, "status": status, "timeout_counter": s.timeoutCounter}).Debug("transmitted nack")
}

func (s *Session) receive(ctx context.Context, port radio.Port, p pipe.Pipe) {
	s.receivedGoodPacketInLastReceiveSequence = false

	// Bound the radio call to the remainder of this receiving slot rather
	// than the caller's whole-lifetime context: the slot clock, not the
	// radio, owns how long a Receive is allowed to wait for a frame.
	deadline := s.clock.TimeOfNextAction(time.Now())
	recvCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	buf := make([]byte, port.MaxMessageLength())
	n, status := port.Receive(recvCtx, buf)
	if status != radio.StatusSuccess {
		return
	}

	pkt, err := packet.DecodeSession(buf[:n])
	if err != nil {
		s.log.WithFields(logrus.Fields{"session_id": s.ID, "error": err}).Warn("dropping malformed frame")
		return
	}

	s.receivedGoodPacketInLastReceiveSequence = true
	s.timeoutCounter = 0

	sentSn := seqnum.Number(s.lastSentPacket.Sn)
	recvNesn := seqnum.Number(pkt.Nesn)
	recvSn := seqnum.Number(pkt.Sn)

	switch {
	case recvNesn == sentSn.Next():
		s.lastAckedSentSn = sentSn

		switch recvSn {
		case s.lastRecvSn:
			// The peer retransmitted what it already sent; the new copy
			// logically replaces the held one but is not (yet) delivered.
			s.lastRecvMessage = pipe.Payload(pkt.Payload)
		case s.lastRecvSn.Next():
			p.Deposit(s.lastRecvMessage)
			s.lastRecvMessage = pipe.Payload(pkt.Payload)
		}
		s.lastRecvSn = recvSn

	case pkt.Subtype == packet.SubtypeNack && recvNesn == sentSn:
		// Peer didn't ack; next transmit slot will retransmit.

	default:
		panic(fmt.Sprintf("session: protocol desync: recv nesn=%d sn=%d subtype=%v, our lastSentPacket.sn=%d", pkt.Nesn, pkt.Sn, pkt.Subtype, s.lastSentPacket.Sn))
	}
}
