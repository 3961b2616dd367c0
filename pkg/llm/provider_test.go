package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/user/brainassist/pkg/llm"
	"github.com/user/brainassist/pkg/llm/llmtest"
)

func TestProviderInterface(t *testing.T) {
	var provider llm.Provider = &llmtest.Provider{Fragments: []string{"mock stream"}}
	ctx := context.Background()

	text, err := provider.Generate(ctx, llm.GenerateRequest{Prompt: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if text == "" {
		t.Error("expected non-empty response")
	}

	session, err := provider.NewSession(ctx, llm.SessionConfig{Model: "m"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for frag, err := range session.SendStream(ctx, []llm.Part{llm.TextPart("hi")}) {
		if err != nil {
			t.Fatal(err)
		}
		if frag == "" {
			t.Error("expected non-empty fragment")
		}
	}
}

func TestMockSessionStreamOrder(t *testing.T) {
	sess := &llmtest.Session{Fragments: []string{"hello ", "world", "!"}}

	var accumulated string
	for frag, err := range sess.SendStream(context.Background(), nil) {
		if err != nil {
			t.Fatal(err)
		}
		accumulated += frag
	}
	if accumulated != "hello world!" {
		t.Errorf("expected 'hello world!', got %q", accumulated)
	}
	if len(sess.Sent()) != 1 {
		t.Errorf("expected 1 recorded turn, got %d", len(sess.Sent()))
	}
}

func TestMockSessionTrailingError(t *testing.T) {
	boom := errors.New("boom")
	sess := &llmtest.Session{Fragments: []string{"partial"}, Err: boom}

	var got []string
	var last error
	for frag, err := range sess.SendStream(context.Background(), nil) {
		if err != nil {
			last = err
			break
		}
		got = append(got, frag)
	}
	if len(got) != 1 || !errors.Is(last, boom) {
		t.Errorf("expected one fragment then boom, got %v / %v", got, last)
	}
}

func TestFromChannelStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	steps := make(chan llmtest.Step, 1)
	steps <- llmtest.Step{Text: "a"}

	var got []string
	for frag := range llmtest.FromChannel(ctx, steps) {
		got = append(got, frag)
		cancel()
	}
	if len(got) != 1 {
		t.Errorf("expected iteration to stop after cancel, got %v", got)
	}
}

func TestPartHelpers(t *testing.T) {
	if llm.TextPart("x").IsInline() {
		t.Error("text part should not be inline")
	}
	if !llm.InlinePart("image/png", []byte{1}).IsInline() {
		t.Error("inline part should be inline")
	}
}
