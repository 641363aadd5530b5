package channel

import (
	"testing"

	"github.com/Achierius/lora-chat/pipe"
)

func payloadFrom(s string) pipe.Payload {
	var p pipe.Payload
	copy(p[:], s)
	return p
}

func TestNextMessageEmptyYieldsFalse(t *testing.T) {
	p := New()
	if _, ok := p.NextMessage(); ok {
		t.Error("NextMessage() on empty pipe returned ok=true")
	}
}

func TestSendThenNextMessage(t *testing.T) {
	p := New()
	msg := payloadFrom("PING")
	if !p.Send(msg) {
		t.Fatal("Send() returned false")
	}
	got, ok := p.NextMessage()
	if !ok {
		t.Fatal("NextMessage() returned ok=false after Send")
	}
	if got != msg {
		t.Errorf("NextMessage() = %v, want %v", got, msg)
	}
	if _, ok := p.NextMessage(); ok {
		t.Error("NextMessage() after draining single message returned ok=true")
	}
}

func TestSendOrderPreserved(t *testing.T) {
	p := New()
	a, b := payloadFrom("A"), payloadFrom("B")
	p.Send(a)
	p.Send(b)

	got1, _ := p.NextMessage()
	got2, _ := p.NextMessage()
	if got1 != a || got2 != b {
		t.Errorf("NextMessage() sequence = %v, %v, want %v, %v", got1, got2, a, b)
	}
}

func TestSendFullReportsFalse(t *testing.T) {
	p := NewSize(2)
	if !p.Send(payloadFrom("1")) {
		t.Fatal("first Send() returned false")
	}
	if !p.Send(payloadFrom("2")) {
		t.Fatal("second Send() returned false")
	}
	if p.Send(payloadFrom("3")) {
		t.Error("Send() on full buffer returned true")
	}
}

func TestDepositThenReceived(t *testing.T) {
	p := New()
	msg := payloadFrom("PONG")
	p.Deposit(msg)

	select {
	case got := <-p.Received():
		if got != msg {
			t.Errorf("Received() = %v, want %v", got, msg)
		}
	default:
		t.Fatal("Received() channel empty after Deposit")
	}
}

func TestDepositDropsOldestWhenFull(t *testing.T) {
	p := NewSize(1)
	p.Deposit(payloadFrom("old"))
	p.Deposit(payloadFrom("new"))

	got := <-p.Received()
	if got != payloadFrom("new") {
		t.Errorf("Received() = %v, want the newest deposit to survive", got)
	}
}
