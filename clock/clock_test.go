package clock

import (
	"testing"
	"time"
)

func TestActionKindCycle(t *testing.T) {
	start := time.Now()
	tests := []struct {
		name   string
		txDur  time.Duration
		gapDur time.Duration
		offset time.Duration
		want   Kind
	}{
		{"start of tx", 10 * time.Millisecond, 10 * time.Millisecond, 0, Transmitting},
		{"mid tx", 10 * time.Millisecond, 10 * time.Millisecond, 5 * time.Millisecond, Transmitting},
		{"start of gap", 10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond, Inactive},
		{"start of rx", 10 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond, Receiving},
		{"trailing gap", 10 * time.Millisecond, 10 * time.Millisecond, 30 * time.Millisecond, Inactive},
		{"next period tx", 10 * time.Millisecond, 10 * time.Millisecond, 40 * time.Millisecond, Transmitting},
		{"zero gap collapses", 10 * time.Millisecond, 0, 10 * time.Millisecond, Receiving},
		{"zero gap wraps to tx", 10 * time.Millisecond, 0, 20 * time.Millisecond, Transmitting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(start, tt.txDur, tt.gapDur)
			if got := c.ActionKind(start.Add(tt.offset)); got != tt.want {
				t.Errorf("ActionKind(+%v) = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestActionKindIsPeriodic(t *testing.T) {
	start := time.Now()
	c := New(start, 10*time.Millisecond, 5*time.Millisecond)
	period := 2 * (10*time.Millisecond + 5*time.Millisecond)
	for _, offset := range []time.Duration{0, 3 * time.Millisecond, 17 * time.Millisecond, 29 * time.Millisecond} {
		t1 := start.Add(offset)
		t2 := t1.Add(period)
		if got, want := c.ActionKind(t1), c.ActionKind(t2); got != want {
			t.Errorf("ActionKind not periodic at offset %v: %v != %v", offset, got, want)
		}
	}
}

func TestTimeOfNextActionAlignsToBoundary(t *testing.T) {
	start := time.Now()
	c := New(start, 10*time.Millisecond, 10*time.Millisecond)

	tests := []struct {
		name   string
		offset time.Duration
		want   time.Duration
	}{
		{"mid tx", 5 * time.Millisecond, 10 * time.Millisecond},
		{"mid gap", 15 * time.Millisecond, 20 * time.Millisecond},
		{"mid rx", 25 * time.Millisecond, 30 * time.Millisecond},
		{"trailing gap", 35 * time.Millisecond, 40 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.TimeOfNextAction(start.Add(tt.offset))
			want := start.Add(tt.want)
			if !got.Equal(want) {
				t.Errorf("TimeOfNextAction(+%v) = +%v, want +%v", tt.offset, got.Sub(start), tt.want)
			}
		})
	}
}

func TestTimeOfNextActionBeforeStartReturnsStart(t *testing.T) {
	start := time.Now().Add(time.Hour)
	c := New(start, 10*time.Millisecond, 10*time.Millisecond)
	if got := c.TimeOfNextAction(start.Add(-time.Minute)); !got.Equal(start) {
		t.Errorf("TimeOfNextAction before start = %v, want %v", got, start)
	}
}

func TestActionKindPanicsBeforeStart(t *testing.T) {
	start := time.Now().Add(time.Hour)
	c := New(start, 10*time.Millisecond, 10*time.Millisecond)
	defer func() {
		if recover() == nil {
			t.Error("ActionKind before start did not panic")
		}
	}()
	c.ActionKind(start.Add(-time.Second))
}

func TestLocalise(t *testing.T) {
	tests := []struct {
		in, want Kind
	}{
		{Transmitting, Receiving},
		{Receiving, Transmitting},
		{Inactive, Inactive},
	}
	for _, tt := range tests {
		if got := Localise(tt.in); got != tt.want {
			t.Errorf("Localise(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
