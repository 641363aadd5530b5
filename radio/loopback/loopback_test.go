package loopback

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Achierius/lora-chat/radio"
)

func TestTransmitReceiveRoundTrip(t *testing.T) {
	a, b := NewPair()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	frame := []byte("hello over the air")
	if status := a.Transmit(ctx, frame); status != radio.StatusSuccess {
		t.Fatalf("Transmit() status = %v, want Success", status)
	}

	buf := make([]byte, b.MaxMessageLength())
	n, status := b.Receive(ctx, buf)
	if status != radio.StatusSuccess {
		t.Fatalf("Receive() status = %v, want Success", status)
	}
	if !bytes.Equal(buf[:n], frame) {
		t.Errorf("Receive() frame = %q, want %q", buf[:n], frame)
	}
}

func TestTransmitOversizeFrameRejected(t *testing.T) {
	a, _ := NewPair()
	ctx := context.Background()
	big := make([]byte, capacity+1)
	if status := a.Transmit(ctx, big); status != radio.StatusBadBufferSize {
		t.Errorf("Transmit(oversize) status = %v, want BadBufferSize", status)
	}
}

func TestTransmitEmptyFrameRejected(t *testing.T) {
	a, _ := NewPair()
	ctx := context.Background()
	if status := a.Transmit(ctx, nil); status != radio.StatusBadBufferSize {
		t.Errorf("Transmit(nil) status = %v, want BadBufferSize", status)
	}
}

func TestReceiveTimesOutWithoutTransmit(t *testing.T) {
	_, b := NewPair()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	buf := make([]byte, b.MaxMessageLength())
	if _, status := b.Receive(ctx, buf); status != radio.StatusTimeout {
		t.Errorf("Receive() status = %v, want Timeout", status)
	}
}

func TestWithDropEveryDropsEveryNth(t *testing.T) {
	a, b := NewPair()
	a.WithDropEvery(3)
	ctx := context.Background()

	var received int
	for i := 0; i < 6; i++ {
		frame := []byte{byte(i)}
		if status := a.Transmit(ctx, frame); status != radio.StatusSuccess {
			t.Fatalf("Transmit(%d) status = %v, want Success", i, status)
		}
		if (i+1)%3 == 0 {
			continue // this one was dropped, nothing to drain
		}
		recvCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		buf := make([]byte, b.MaxMessageLength())
		if _, status := b.Receive(recvCtx, buf); status == radio.StatusSuccess {
			received++
		}
		cancel()
	}
	if received != 4 {
		t.Errorf("received %d frames, want 4 (6 sent, every 3rd dropped)", received)
	}
}

func TestWithDropFuncCustomPredicate(t *testing.T) {
	a, b := NewPair()
	a.WithDropFunc(func(txCount int) bool { return txCount == 1 })
	ctx := context.Background()

	if status := a.Transmit(ctx, []byte{1}); status != radio.StatusSuccess {
		t.Fatalf("Transmit() status = %v, want Success", status)
	}
	recvCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	buf := make([]byte, b.MaxMessageLength())
	if _, status := b.Receive(recvCtx, buf); status != radio.StatusTimeout {
		t.Errorf("Receive() after dropped transmit status = %v, want Timeout", status)
	}
}

func TestReceiveBufferTooSmall(t *testing.T) {
	a, b := NewPair()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	frame := make([]byte, 10)
	if status := a.Transmit(ctx, frame); status != radio.StatusSuccess {
		t.Fatalf("Transmit() status = %v, want Success", status)
	}
	small := make([]byte, 4)
	if _, status := b.Receive(ctx, small); status != radio.StatusBadBufferSize {
		t.Errorf("Receive(small buf) status = %v, want BadBufferSize", status)
	}
}

func TestBidirectional(t *testing.T) {
	a, b := NewPair()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if status := a.Transmit(ctx, []byte("a-to-b")); status != radio.StatusSuccess {
		t.Fatalf("a.Transmit() status = %v, want Success", status)
	}
	if status := b.Transmit(ctx, []byte("b-to-a")); status != radio.StatusSuccess {
		t.Fatalf("b.Transmit() status = %v, want Success", status)
	}

	buf := make([]byte, a.MaxMessageLength())
	n, status := b.Receive(ctx, buf)
	if status != radio.StatusSuccess || string(buf[:n]) != "a-to-b" {
		t.Errorf("b.Receive() = %q, %v, want a-to-b, Success", buf[:n], status)
	}
	n, status = a.Receive(ctx, buf)
	if status != radio.StatusSuccess || string(buf[:n]) != "b-to-a" {
		t.Errorf("a.Receive() = %q, %v, want b-to-a, Success", buf[:n], status)
	}
}
