// Package agent implements the protocol agent state machine that sits
// above a session.Session: peer discovery (advertise/seek), the
// connection handshake that agrees a session start time and id, and
// handing control to the session engine once connected. Session ids are
// generated with github.com/google/uuid rather than derived from the
// local address, since two agents on the same address must still be able
// to tell their sessions apart.
package agent

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Achierius/lora-chat/clock"
	"github.com/Achierius/lora-chat/packet"
	"github.com/Achierius/lora-chat/pipe"
	"github.com/Achierius/lora-chat/radio"
	"github.com/Achierius/lora-chat/session"
	"github.com/Achierius/lora-chat/wire"
)

// Goal is the externally-supplied objective an Agent pursues once it
// reaches Dispatch.
type Goal int32

const (
	GoalDisconnect Goal = iota
	GoalSeek
	GoalAdvertise
	GoalSeekAndAdvertise
)

func (g Goal) String() string {
	switch g {
	case GoalDisconnect:
		return "Disconnect"
	case GoalSeek:
		return "Seek"
	case GoalAdvertise:
		return "Advertise"
	case GoalSeekAndAdvertise:
		return "SeekAndAdvertise"
	default:
		return "Unknown"
	}
}

// State is a node of the agent state machine.
type State int

const (
	StateDispatch State = iota
	StatePend
	StateAdvertise
	StateSeek
	StateHandshakeFromAdvertise
	StateHandshakeFromSeek
	StateExecuteSession
)

func (s State) String() string {
	switch s {
	case StateDispatch:
		return "Dispatch"
	case StatePend:
		return "Pend"
	case StateAdvertise:
		return "Advertise"
	case StateSeek:
		return "Seek"
	case StateHandshakeFromAdvertise:
		return "HandshakeFromAdvertise"
	case StateHandshakeFromSeek:
		return "HandshakeFromSeek"
	case StateExecuteSession:
		return "ExecuteSession"
	default:
		return "Unknown"
	}
}

const (
	kHandshakeLeadTime           = 100 * time.Millisecond
	kBaseAdvertisingInterval     = 550 * time.Millisecond
	kAdvertisingTransmitDuration = 200 * time.Millisecond
	kConnectionRequestInterval   = kBaseAdvertisingInterval - kAdvertisingTransmitDuration
	kHandshakeReceiveDuration    = 400 * time.Millisecond
	kPendSleepTime               = 100 * time.Millisecond

	// seekReceiveDuration bounds Seek's single receive attempt. Not named
	// in the source (which relies on the radio's own implicit timeout);
	// chosen to comfortably cover one advertiser's transmit window.
	seekReceiveDuration = 250 * time.Millisecond
)

// DefaultSlotTransmitDuration and DefaultSlotGapDuration size the session
// clock a handshake creates. The source hard-wires these (pending real
// time-on-air computation); Agent exposes them as fields so a caller can
// override them per deployment instead of patching constants.
const (
	DefaultSlotTransmitDuration = 800 * time.Millisecond
	DefaultSlotGapDuration      = 200 * time.Millisecond
)

// Agent is one peer of the link: its local address, the radio and pipe it
// drives, and the state machine that discovers a counterpart, negotiates
// a session, and runs it. Not safe for concurrent use except SetGoal.
type Agent struct {
	Address uint32

	SlotTransmitDuration time.Duration
	SlotGapDuration      time.Duration

	port radio.Port
	pipe pipe.Pipe

	session *session.Session

	state      State
	priorState State
	goal       int32 // stored atomically: SetGoal may race with dispatchNextState reading it

	advertiserAddress *uint32
	requesterAddress  *uint32

	log *logrus.Entry
}

// New constructs an Agent in StateDispatch with GoalDisconnect.
func New(address uint32, port radio.Port, p pipe.Pipe) *Agent {
	return &Agent{
		Address:              address,
		SlotTransmitDuration: DefaultSlotTransmitDuration,
		SlotGapDuration:      DefaultSlotGapDuration,
		port:                 port,
		pipe:                 p,
		state:                StateDispatch,
		priorState:           StatePend,
		log:                  logrus.NewEntry(logrus.StandardLogger()),
	}
}

// SetLogger installs a structured logging sink.
func (a *Agent) SetLogger(log *logrus.Entry) { a.log = log }

// SetGoal is a thread-safe store; it takes effect at the next Dispatch.
func (a *Agent) SetGoal(g Goal) { atomic.StoreInt32(&a.goal, int32(g)) }

// CurrentGoal is a thread-safe load of the externally-set goal.
func (a *Agent) CurrentGoal() Goal { return Goal(atomic.LoadInt32(&a.goal)) }

// InSession reports whether the agent currently owns a running session.
func (a *Agent) InSession() bool { return a.state == StateExecuteSession }

// State returns the agent's current state, for diagnostics and tests.
func (a *Agent) State() State { return a.state }

// SessionHistory returns the action trace of the agent's current session,
// or nil if no session is running. Intended for a --debug trace dump; see
// cmd/lora-chatd.
func (a *Agent) SessionHistory() []session.HistoryEntry {
	if a.session == nil {
		return nil
	}
	return a.session.History()
}

func (a *Agent) changeState(next State) {
	a.log.WithFields(logrus.Fields{"from": a.state, "to": next}).Debug("agent state transition")
	a.priorState = a.state
	a.state = next
}

// ExecuteAgentAction runs one step of the state machine: if the current
// state is Dispatch it first resolves to a concrete state, then executes
// that state's action, and returns the resulting state.
func (a *Agent) ExecuteAgentAction(ctx context.Context) State {
	if a.state == StateDispatch {
		a.dispatchNextState()
	}

	switch a.state {
	case StatePend:
		a.pend(ctx)
	case StateSeek:
		a.seek(ctx)
	case StateAdvertise:
		a.advertise(ctx)
	case StateHandshakeFromSeek:
		a.requestConnection(ctx)
	case StateHandshakeFromAdvertise:
		a.acceptConnection(ctx)
	case StateExecuteSession:
		a.executeSession(ctx)
	case StateDispatch:
		panic("agent: dispatch dispatched to the dispatch state")
	}
	return a.state
}

func (a *Agent) dispatchNextState() {
	var next State
	switch a.CurrentGoal() {
	case GoalDisconnect:
		next = StatePend
	case GoalSeek:
		next = StateSeek
	case GoalAdvertise:
		next = StateAdvertise
	case GoalSeekAndAdvertise:
		if a.priorState == StateAdvertise {
			next = StateSeek
		} else {
			next = StateAdvertise
		}
	default:
		panic(fmt.Sprintf("agent: unknown goal %v", a.CurrentGoal()))
	}
	a.changeState(next)
}

func (a *Agent) pend(ctx context.Context) {
	sleep(ctx, kPendSleepTime)
	a.changeState(StateDispatch)
}

func (a *Agent) seek(ctx context.Context) {
	data, status := a.receiveBefore(ctx, time.Now().Add(seekReceiveDuration))
	if status == radio.StatusSuccess {
		if ad, err := packet.DecodeAdvertising(data); err == nil {
			addr := ad.SourceAddress
			a.advertiserAddress = &addr
			a.changeState(StateHandshakeFromSeek)
			return
		}
	}
	a.changeState(StateDispatch)
}

func (a *Agent) advertise(ctx context.Context) {
	ad := packet.Advertising{SourceAddress: a.Address}
	if status := a.port.Transmit(ctx, ad.Encode()); status != radio.StatusSuccess {
		a.log.WithField("status", status).Warn("failed to transmit advertisement")
	}

	deadline := time.Now().Add(kConnectionRequestInterval)
	for {
		data, status := a.receiveBefore(ctx, deadline)
		if status != radio.StatusSuccess {
			break
		}
		if req, err := packet.DecodeConnectionRequest(data); err == nil && req.TargetAddress == a.Address {
			addr := req.SourceAddress
			a.requesterAddress = &addr
			a.changeState(StateHandshakeFromAdvertise)
			return
		}
		if !time.Now().Before(deadline) {
			break
		}
	}
	a.changeState(StateDispatch)
}

func (a *Agent) requestConnection(ctx context.Context) {
	if a.advertiserAddress == nil {
		panic("agent: HandshakeFromSeek entered without an advertiser address")
	}
	target := *a.advertiserAddress
	a.advertiserAddress = nil

	req := packet.ConnectionRequest{SourceAddress: a.Address, TargetAddress: target}
	if status := a.port.Transmit(ctx, req.Encode()); status != radio.StatusSuccess {
		a.log.WithField("status", status).Warn("failed to transmit connection request")
		a.changeState(StateDispatch)
		return
	}

	deadline := time.Now().Add(kHandshakeReceiveDuration)
	for {
		data, status := a.receiveBefore(ctx, deadline)
		if status != radio.StatusSuccess {
			break
		}
		accept, err := packet.DecodeConnectionAccept(data)
		if err != nil || accept.TargetAddress != a.Address {
			if !time.Now().Before(deadline) {
				break
			}
			continue
		}

		start := wire.LocalStartTime(time.Now(), accept.SessionStartTime)
		clk := clock.New(start, a.SlotTransmitDuration, a.SlotGapDuration)
		a.session = session.New(accept.SessionID, clk, false)
		a.session.SetLogger(a.log)
		a.changeState(StateExecuteSession)
		a.session.SleepUntilStartTime(ctx)
		return
	}
	a.changeState(StateDispatch)
}

func (a *Agent) acceptConnection(ctx context.Context) {
	if a.requesterAddress == nil {
		panic("agent: HandshakeFromAdvertise entered without a requester address")
	}
	target := *a.requesterAddress
	a.requesterAddress = nil

	wireStart := wire.FutureWallTime(kHandshakeLeadTime)
	sessionID := newSessionID()
	accept := packet.ConnectionAccept{
		SourceAddress:    a.Address,
		TargetAddress:    target,
		SessionStartTime: wireStart,
		SessionID:        sessionID,
	}

	start := wire.LocalStartTime(time.Now(), wireStart)
	clk := clock.New(start, a.SlotTransmitDuration, a.SlotGapDuration)
	a.session = session.New(sessionID, clk, true)
	a.session.SetLogger(a.log)

	if status := a.port.Transmit(ctx, accept.Encode()); status != radio.StatusSuccess {
		a.log.WithField("status", status).Warn("failed to transmit connection accept")
		a.session = nil
		a.changeState(StatePend)
		return
	}

	a.changeState(StateExecuteSession)
	a.session.SleepUntilStartTime(ctx)
}

func (a *Agent) executeSession(ctx context.Context) {
	if a.session == nil {
		panic("agent: invariant violated: ExecuteSession state with no session")
	}
	if a.session.ExecuteCurrentAction(ctx, a.port, a.pipe) == session.ActionSessionComplete {
		a.session = nil
		a.changeState(StatePend)
	}
	if a.CurrentGoal() == GoalDisconnect {
		a.session = nil
		a.changeState(StatePend)
	}
}

func (a *Agent) receiveBefore(ctx context.Context, deadline time.Time) ([]byte, radio.Status) {
	rctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	buf := make([]byte, a.port.MaxMessageLength())
	n, status := a.port.Receive(rctx, buf)
	if status != radio.StatusSuccess {
		return nil, status
	}
	return buf[:n], status
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func newSessionID() uint32 {
	id := uuid.New()
	return binary.LittleEndian.Uint32(id[:4])
}
