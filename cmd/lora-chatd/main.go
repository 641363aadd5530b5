// Command lora-chatd drives a link-layer agent to completion: it seeks
// or advertises a connection, then forwards whatever arrives on its
// message pipe to stdout and whatever arrives on stdin to the pipe.
//
// No register-level radio driver exists in this repo: lora-chatd
// demonstrates the full handshake-and-session loop by pairing its own
// agent against an in-process mirror agent over radio/loopback. Wiring
// a real radio.Port implementation in place of loopback.NewPair is the
// only change a deployment against actual hardware needs to make.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Achierius/lora-chat/agent"
	"github.com/Achierius/lora-chat/internal/logging"
	"github.com/Achierius/lora-chat/pipe"
	"github.com/Achierius/lora-chat/pipe/channel"
	"github.com/Achierius/lora-chat/radio/loopback"
)

func main() {
	cfg := DefaultConfig()

	var goalFlag string
	var address, peerAddress uint
	flag.UintVar(&address, "address", uint(cfg.Address), "local device address")
	flag.StringVar(&goalFlag, "goal", "advertise", "disconnect|seek|advertise|seek-and-advertise")
	flag.UintVar(&peerAddress, "peer-address", 0xBEEF, "address of the in-process mirror agent")
	flag.DurationVar(&cfg.SlotTransmitDuration, "transmit-duration", cfg.SlotTransmitDuration, "per-slot transmit window")
	flag.DurationVar(&cfg.SlotGapDuration, "gap-duration", cfg.SlotGapDuration, "per-slot guard gap")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "panic|fatal|error|warn|info|debug|trace")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "periodically dump the local agent's session action history")
	flag.Parse()

	goal, err := parseGoal(goalFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}
	cfg.Goal = goal
	cfg.Address = uint32(address)

	log := logging.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	localPort, peerPort := loopback.NewPair()

	localPipe := channel.New()
	a := agent.New(cfg.Address, localPort, localPipe)
	a.SlotTransmitDuration = cfg.SlotTransmitDuration
	a.SlotGapDuration = cfg.SlotGapDuration
	a.SetLogger(logging.Component(log, "agent"))
	a.SetGoal(cfg.Goal)

	peerPipe := channel.New()
	peer := agent.New(uint32(peerAddress), peerPort, peerPipe)
	peer.SlotTransmitDuration = cfg.SlotTransmitDuration
	peer.SlotGapDuration = cfg.SlotGapDuration
	peer.SetLogger(logging.Component(log, "peer"))
	peer.SetGoal(mirrorGoal(cfg.Goal))

	go runAgent(ctx, peer)
	go autoRespond(ctx, peerPipe)
	go forwardStdinToPipe(ctx, localPipe)
	go forwardPipeToStdout(ctx, localPipe)
	if cfg.Debug {
		go dumpSessionHistory(ctx, a, logging.Component(log, "history"))
	}

	runAgent(ctx, a)
}

func mirrorGoal(g agent.Goal) agent.Goal {
	switch g {
	case agent.GoalSeek:
		return agent.GoalAdvertise
	case agent.GoalAdvertise:
		return agent.GoalSeek
	default:
		return g
	}
}

func runAgent(ctx context.Context, a *agent.Agent) {
	for ctx.Err() == nil {
		a.ExecuteAgentAction(ctx)
	}
}

// autoRespond echoes a counter onto the mirror agent's outgoing queue,
// the way bcp-agent's GetMessageToSend synthesises "Ping <n>" payloads
// rather than reading from a real peer's stdin.
func autoRespond(ctx context.Context, p *channel.Pipe) {
	n := 0
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.Received():
			_ = msg // drained so the pipe never fills; content is uninteresting here
		case <-ticker.C:
			var payload pipe.Payload
			copy(payload[:], fmt.Sprintf("pong %d", n))
			p.Send(payload)
			n++
		}
	}
}

// dumpSessionHistory logs the local agent's session action trace once per
// second while --debug is set.
func dumpSessionHistory(ctx context.Context, a *agent.Agent, log *logrus.Entry) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, entry := range a.SessionHistory() {
				log.WithFields(logrus.Fields{"time": entry.Time, "action": entry.Action}).Info("session history entry")
			}
		}
	}
}

func forwardStdinToPipe(ctx context.Context, p *channel.Pipe) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		var payload pipe.Payload
		copy(payload[:], scanner.Text())
		if !p.Send(payload) {
			fmt.Fprintln(os.Stderr, "lora-chatd: outgoing queue full, dropping message")
		}
	}
}

func forwardPipeToStdout(ctx context.Context, p *channel.Pipe) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.Received():
			fmt.Println(trimTrailingZeroes(msg))
		}
	}
}

func trimTrailingZeroes(p pipe.Payload) string {
	n := len(p)
	for n > 0 && p[n-1] == 0 {
		n--
	}
	return string(p[:n])
}
