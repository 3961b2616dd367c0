package transcript

import (
	"errors"
	"sync"
	"testing"

	"github.com/user/brainassist/internal/types"
)

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	s := New()
	m := s.Append(types.Message{Role: types.RoleUser, Text: "salut"})
	if m.ID == "" {
		t.Error("expected generated ID")
	}
	if m.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 message, got %d", s.Len())
	}
}

func TestPlaceholderStreaming(t *testing.T) {
	s := New()
	s.Append(types.Message{Role: types.RoleUser, Text: "question"})

	if _, err := s.AppendText("lost"); !errors.Is(err, ErrNoPlaceholder) {
		t.Fatalf("expected ErrNoPlaceholder, got %v", err)
	}

	p := s.OpenPlaceholder()
	if p.Role != types.RoleModel || p.Text != "" {
		t.Errorf("unexpected placeholder %+v", p)
	}
	for _, frag := range []string{"Bon", "jour"} {
		if _, err := s.AppendText(frag); err != nil {
			t.Fatal(err)
		}
	}
	final, ok := s.ClosePlaceholder()
	if !ok || final.Text != "Bonjour" {
		t.Errorf("unexpected final %+v (ok=%v)", final, ok)
	}

	if _, err := s.AppendText("late"); !errors.Is(err, ErrNoPlaceholder) {
		t.Errorf("expected appends to stop after close, got %v", err)
	}
	if _, ok := s.ClosePlaceholder(); ok {
		t.Error("expected second close to report nothing open")
	}
}

func TestRemovingPlaceholderClosesIt(t *testing.T) {
	s := New()
	p := s.OpenPlaceholder()
	if err := s.Remove(p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendText("x"); !errors.Is(err, ErrNoPlaceholder) {
		t.Errorf("expected ErrNoPlaceholder, got %v", err)
	}
	if err := s.Remove(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPrecedingUser(t *testing.T) {
	s := New()
	u1 := s.Append(types.Message{Role: types.RoleUser, Text: "first"})
	s.Append(types.Message{Role: types.RoleModel, Text: "reply"})
	u2 := s.Append(types.Message{Role: types.RoleUser, Text: "second"})
	s.OpenPlaceholder()
	s.ClosePlaceholder()
	errMsg := s.Append(types.Message{Role: types.RoleModel, Text: "Erreur", IsError: true})

	got, ok := s.PrecedingUser(errMsg.ID)
	if !ok || got.ID != u2.ID {
		t.Errorf("expected %s, got %+v", u2.ID, got)
	}
	if _, ok := s.PrecedingUser(u1.ID); ok {
		t.Error("expected nothing before the first message")
	}
	if _, ok := s.PrecedingUser("missing"); ok {
		t.Error("expected nothing for unknown id")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New()
	s.Append(types.Message{Role: types.RoleUser, Text: "a", Attachments: []types.Attachment{{Name: "f.png"}}})
	snap := s.Snapshot()
	snap[0].Text = "changed"
	snap[0].Attachments[0].Name = "changed"

	again := s.Snapshot()
	if again[0].Text != "a" || again[0].Attachments[0].Name != "f.png" {
		t.Errorf("snapshot mutation leaked into store: %+v", again[0])
	}
}

func TestReplaceAndClear(t *testing.T) {
	s := New()
	s.OpenPlaceholder()
	s.Replace([]types.Message{
		{ID: "m1", Role: types.RoleUser, Text: "hi"},
		{ID: "m2", Role: types.RoleModel, Text: "hello"},
	})
	if s.Len() != 2 || s.Index("m2") != 1 {
		t.Errorf("unexpected state after replace: len=%d", s.Len())
	}
	if _, err := s.AppendText("x"); !errors.Is(err, ErrNoPlaceholder) {
		t.Error("expected replace to close the placeholder")
	}
	if m, ok := s.Get("m1"); !ok || m.Text != "hi" {
		t.Errorf("unexpected get %+v", m)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty transcript, got %d", s.Len())
	}
	if s.Index("m1") != -1 {
		t.Error("expected -1 for cleared message")
	}
}

func TestConcurrentReads(t *testing.T) {
	s := New()
	s.OpenPlaceholder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Snapshot()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.AppendText("x")
	}
	wg.Wait()
	final, _ := s.ClosePlaceholder()
	if len(final.Text) != 100 {
		t.Errorf("expected 100 bytes, got %d", len(final.Text))
	}
}
