package main

import (
	"time"

	"github.com/Achierius/lora-chat/agent"
)

// Config holds the process's tunables. Grounded on
// g960059/agtmux's internal/config.DefaultConfig() pattern: a plain
// struct with a default constructor, overridable by flags rather than
// a config file.
type Config struct {
	Address uint32

	SlotTransmitDuration time.Duration
	SlotGapDuration      time.Duration

	Goal agent.Goal

	LogLevel string
	Debug    bool
}

// DefaultConfig returns the tunables lora-chatd's flags default to. The
// -goal flag is the exception: it defaults to "advertise", so a bare
// invocation runs with GoalAdvertise rather than the GoalDisconnect here.
func DefaultConfig() Config {
	return Config{
		Address:              0,
		SlotTransmitDuration: agent.DefaultSlotTransmitDuration,
		SlotGapDuration:      agent.DefaultSlotGapDuration,
		Goal:                 agent.GoalDisconnect,
		LogLevel:             "info",
		Debug:                false,
	}
}

func parseGoal(s string) (agent.Goal, error) {
	switch s {
	case "disconnect":
		return agent.GoalDisconnect, nil
	case "seek":
		return agent.GoalSeek, nil
	case "advertise":
		return agent.GoalAdvertise, nil
	case "seek-and-advertise":
		return agent.GoalSeekAndAdvertise, nil
	default:
		return agent.GoalDisconnect, errUnknownGoal(s)
	}
}

type errUnknownGoal string

func (e errUnknownGoal) Error() string {
	return "unknown goal: " + string(e)
}
