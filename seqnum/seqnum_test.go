package seqnum

import "testing"

func TestNextWraps(t *testing.T) {
	tests := []struct {
		name string
		in   Number
		want Number
	}{
		{"ordinary", Number(5), Number(6)},
		{"wraps past max", Max, Number(0)},
		{"254 reaches max without wrapping", Number(254), Number(255)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Next(); got != tt.want {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrevWraps(t *testing.T) {
	tests := []struct {
		name string
		in   Number
		want Number
	}{
		{"ordinary", Number(5), Number(4)},
		{"wraps past zero", Number(0), Max},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Prev(); got != tt.want {
				t.Errorf("Prev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	if got := Number(250).Add(10); got != Number(4) {
		t.Errorf("Add() = %v, want 4", got)
	}
}

func TestEqualityIsBitEquality(t *testing.T) {
	a := Number(0xFE).Next()
	b := Max
	if a != b {
		t.Errorf("%v != %v, want equal", a, b)
	}
}
