package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/user/brainassist/internal/chaterr"
	ctxengine "github.com/user/brainassist/internal/context"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
	"github.com/user/brainassist/pkg/llm/llmtest"
)

func collect(t *testing.T, seq func(func(string, error) bool)) ([]string, error) {
	t.Helper()
	var frags []string
	for f, err := range seq {
		if err != nil {
			return frags, err
		}
		frags = append(frags, f)
	}
	return frags, nil
}

func TestInitializeUsesModeProfile(t *testing.T) {
	p := &llmtest.Provider{}
	m := New(p, nil)
	if err := m.Initialize(context.Background(), types.ModeMusic, nil); err != nil {
		t.Fatal(err)
	}

	cfgs := p.Configs()
	if len(cfgs) != 1 {
		t.Fatalf("expected 1 session, got %d", len(cfgs))
	}
	want := modes.Resolve(types.ModeMusic)
	got := cfgs[0]
	if got.Model != want.Model || got.Temperature != want.Temperature || got.TopK != want.TopK {
		t.Errorf("config %+v does not match profile", got)
	}
	if got.SystemInstruction != want.Instruction {
		t.Error("expected the bare mode instruction")
	}

	h, ok := m.Active()
	if !ok || h.Mode != types.ModeMusic {
		t.Errorf("unexpected handle %+v (ok=%v)", h, ok)
	}
}

func TestInitializeWithoutCredential(t *testing.T) {
	m := New(nil, nil)
	err := m.Initialize(context.Background(), types.ModeLearning, nil)
	if !errors.Is(err, chaterr.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if _, ok := m.Active(); ok {
		t.Error("expected no handle")
	}

	_, err = collect(t, m.SendAndStream(context.Background(), "hello", nil))
	if chaterr.Classify(err).Kind != chaterr.Configuration {
		t.Errorf("expected configuration error on send, got %v", err)
	}
}

func TestInstructionSuffix(t *testing.T) {
	p := &llmtest.Provider{}
	m := New(p, nil, WithInstructionSuffix(func(context.Context) string {
		return "\n[PROFILE]"
	}))
	if err := m.Initialize(context.Background(), types.ModeSupport, nil); err != nil {
		t.Fatal(err)
	}
	instr := p.Configs()[0].SystemInstruction
	if !strings.HasPrefix(instr, modes.Resolve(types.ModeSupport).Instruction) || !strings.HasSuffix(instr, "\n[PROFILE]") {
		t.Errorf("unexpected instruction suffix handling: %q", instr[len(instr)-20:])
	}
}

func TestHistoryReplay(t *testing.T) {
	p := &llmtest.Provider{}
	m := New(p, nil)

	img := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	failed := types.Message{Role: types.RoleModel, Text: "Erreur", IsError: true}
	history := []types.Message{
		{Role: types.RoleUser, Text: "regarde", Attachments: []types.Attachment{
			{Name: "a.png", MIMEType: "image/png", Data: "data:image/png;base64," + img},
		}},
		failed,
		{Role: types.RoleModel, Text: "C'est un chat."},
		{Role: types.RoleModel, Text: "   "}, // no parts, dropped
	}
	if err := m.Initialize(context.Background(), types.ModeLearning, history); err != nil {
		t.Fatal(err)
	}

	replay := p.Histories()[0]
	if len(replay) != 2 {
		t.Fatalf("expected 2 replayed turns, got %d", len(replay))
	}
	first := replay[0]
	if first.Role != llm.RoleUser || len(first.Parts) != 2 {
		t.Fatalf("unexpected first turn %+v", first)
	}
	if !first.Parts[0].IsInline() || string(first.Parts[0].Data) != "fake-png" {
		t.Errorf("expected decoded attachment first, got %+v", first.Parts[0])
	}
	if first.Parts[1].Text != "regarde" {
		t.Errorf("expected text second, got %+v", first.Parts[1])
	}
	if replay[1].Role != llm.RoleModel {
		t.Errorf("expected model role, got %s", replay[1].Role)
	}
	if h, _ := m.Active(); h.Replayed != 2 {
		t.Errorf("expected Replayed=2, got %d", h.Replayed)
	}
}

func TestHistoryReplayTrimmed(t *testing.T) {
	p := &llmtest.Provider{}
	words := func(s string) int { return len(strings.Fields(s)) }
	// budget is consumed almost entirely by the instruction
	instr := words(modes.Resolve(types.ModeLearning).Instruction)
	engine := ctxengine.NewWithCounter(words, instr+3, 0)
	m := New(p, engine)

	history := []types.Message{
		{Role: types.RoleUser, Text: "very old question here"},
		{Role: types.RoleModel, Text: "old answer"},
		{Role: types.RoleUser, Text: "new"},
		{Role: types.RoleModel, Text: "reply"},
	}
	if err := m.Initialize(context.Background(), types.ModeLearning, history); err != nil {
		t.Fatal(err)
	}
	replay := p.Histories()[0]
	if len(replay) != 2 || replay[0].Parts[0].Text != "new" {
		t.Errorf("expected only the newest exchange, got %+v", replay)
	}
}

func TestSendAndStreamAutoInitializes(t *testing.T) {
	p := &llmtest.Provider{Fragments: []string{"Bon", "", "jour"}}
	m := New(p, nil)

	frags, err := collect(t, m.SendAndStream(context.Background(), "salut", nil))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(frags, "|") != "Bon|jour" {
		t.Errorf("expected empty fragments skipped, got %q", frags)
	}
	h, ok := m.Active()
	if !ok || h.Mode != types.ModeLearning {
		t.Errorf("expected learning session, got %+v", h)
	}
}

func TestSendAndStreamParts(t *testing.T) {
	p := &llmtest.Provider{Fragments: []string{"ok"}}
	m := New(p, nil)
	ctx := context.Background()
	if err := m.Initialize(ctx, types.ModeChatPDF, nil); err != nil {
		t.Fatal(err)
	}

	pdf := types.Attachment{Name: "cours.pdf", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString([]byte("%PDF"))}
	if _, err := collect(t, m.SendAndStream(ctx, "  ", []types.Attachment{pdf})); err != nil {
		t.Fatal(err)
	}
	if _, err := collect(t, m.SendAndStream(ctx, "résume", []types.Attachment{pdf})); err != nil {
		t.Fatal(err)
	}

	sent := p.Sessions()[0].Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(sent))
	}
	if len(sent[0]) != 1 || !sent[0][0].IsInline() {
		t.Errorf("expected blank text dropped, got %+v", sent[0])
	}
	if len(sent[1]) != 2 || sent[1][1].Text != "résume" {
		t.Errorf("expected attachment then text, got %+v", sent[1])
	}
}

func TestSendAndStreamError(t *testing.T) {
	boom := errors.New("503 service unavailable")
	p := &llmtest.Provider{Fragments: []string{"partial"}, Err: boom}
	m := New(p, nil)

	frags, err := collect(t, m.SendAndStream(context.Background(), "x", nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if len(frags) != 1 {
		t.Errorf("expected partial fragment before error, got %q", frags)
	}
}

func TestResetAndDispose(t *testing.T) {
	p := &llmtest.Provider{}
	m := New(p, nil)
	ctx := context.Background()

	if err := m.Initialize(ctx, types.ModeLearning, nil); err != nil {
		t.Fatal(err)
	}
	first, _ := m.Active()
	if err := m.Reset(ctx, types.ModeGames, nil); err != nil {
		t.Fatal(err)
	}
	second, _ := m.Active()
	if first.ID == second.ID || second.Mode != types.ModeGames {
		t.Errorf("expected a fresh games handle, got %+v", second)
	}

	m.Dispose()
	m.Dispose()
	if _, ok := m.Active(); ok {
		t.Error("expected no handle after dispose")
	}
}

func TestInitializeProviderError(t *testing.T) {
	p := &llmtest.Provider{
		NewSessionFunc: func(context.Context, llm.SessionConfig, []llm.Content) (llm.Session, error) {
			return nil, errors.New("404 model not found")
		},
	}
	m := New(p, nil)
	err := m.Initialize(context.Background(), types.ModeLearning, nil)
	if chaterr.Classify(err).Kind != chaterr.ModelUnavailable {
		t.Errorf("expected model unavailable, got %v", err)
	}
}
