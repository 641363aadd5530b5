package main

import (
	"testing"

	"github.com/Achierius/lora-chat/agent"
)

func TestParseGoal(t *testing.T) {
	tests := []struct {
		in      string
		want    agent.Goal
		wantErr bool
	}{
		{"disconnect", agent.GoalDisconnect, false},
		{"seek", agent.GoalSeek, false},
		{"advertise", agent.GoalAdvertise, false},
		{"seek-and-advertise", agent.GoalSeekAndAdvertise, false},
		{"bogus", agent.GoalDisconnect, true},
		{"", agent.GoalDisconnect, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseGoal(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGoal(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseGoal(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Goal != agent.GoalDisconnect {
		t.Errorf("DefaultConfig().Goal = %v, want GoalDisconnect", cfg.Goal)
	}
	if cfg.LogLevel == "" {
		t.Error("DefaultConfig().LogLevel is empty")
	}
}
