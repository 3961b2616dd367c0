package delivery

import (
	"strings"
	"testing"
	"time"

	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub(4)
	a, unsubA := hub.Subscribe()
	b, unsubB := hub.Subscribe()
	defer unsubB()

	hub.OnFragment("m1", "Bon")
	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		if ev.Type != EventFragment || ev.MessageID != "m1" || ev.Fragment != "Bon" {
			t.Errorf("unexpected event: %+v", ev)
		}
	}

	unsubA()
	unsubA()
	if _, ok := <-a; ok {
		t.Error("expected channel closed after unsubscribe")
	}
	if got := hub.Subscribers(); got != 1 {
		t.Errorf("expected 1 subscriber, got %d", got)
	}

	hub.OnState(stream.Streaming)
	if ev := <-b; ev.State != stream.Streaming {
		t.Errorf("expected streaming state, got %v", ev.State)
	}
}

func TestHubAppendCopiesMessage(t *testing.T) {
	hub := NewHub(1)
	ch, unsub := hub.Subscribe()
	defer unsub()

	msg := types.Message{ID: "m2", Role: types.RoleUser, Text: "salut"}
	hub.OnAppend(msg)
	msg.Text = "changed"

	ev := <-ch
	if ev.Message == nil || ev.Message.Text != "salut" {
		t.Fatalf("expected copied message, got %+v", ev.Message)
	}
	if ev.MessageID != "m2" {
		t.Errorf("expected message id m2, got %q", ev.MessageID)
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub(1, WithLagWait(0))
	ch, unsub := hub.Subscribe()
	defer unsub()

	hub.OnRemove("x")
	hub.OnRemove("y") // buffer full, dropped

	if ev := <-ch; ev.MessageID != "x" {
		t.Errorf("expected first event kept, got %q", ev.MessageID)
	}
	select {
	case ev := <-ch:
		t.Errorf("expected no second event, got %+v", ev)
	default:
	}
}

func TestHubWaitsForSlowSubscriber(t *testing.T) {
	hub := NewHub(1, WithLagWait(time.Second))
	ch, unsub := hub.Subscribe()
	defer unsub()

	fragments := []string{"Bon", "jour", " à", " toi"}
	go func() {
		for _, f := range fragments {
			hub.OnFragment("m1", f)
		}
	}()

	var got strings.Builder
	for range fragments {
		time.Sleep(5 * time.Millisecond)
		got.WriteString((<-ch).Fragment)
	}
	if got.String() != "Bonjour à toi" {
		t.Errorf("expected every fragment in order, got %q", got.String())
	}
}

func TestHubLagWaitIsBounded(t *testing.T) {
	hub := NewHub(1, WithLagWait(20*time.Millisecond))
	ch, unsub := hub.Subscribe()
	defer unsub()

	hub.OnRemove("x")
	start := time.Now()
	hub.OnRemove("y")
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond || elapsed > time.Second {
		t.Errorf("expected publish to give up after the lag wait, took %s", elapsed)
	}
	if ev := <-ch; ev.MessageID != "x" {
		t.Errorf("expected first event kept, got %q", ev.MessageID)
	}
}
