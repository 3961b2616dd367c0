package app

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/brainassist/internal/chaterr"
	"github.com/user/brainassist/internal/delivery"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/state"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
	"github.com/user/brainassist/pkg/llm/llmtest"
)

func newShell(t *testing.T, provider llm.Provider, opts ...Option) *Shell {
	t.Helper()
	kv := state.WithPrefix(state.NewFileKV(t.TempDir()), state.DefaultPrefix)
	s := New(provider, kv, opts...)
	s.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Start(context.Background()))
	return s
}

func lastText(parts []llm.Part) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1].Text
}

func TestSendInjectsOrganizationContextOnce(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"D'accord"}}
	s := newShell(t, provider, WithMode(types.ModeOrganization))
	ctx := context.Background()

	_, err := s.AddTask(ctx, "Réviser les maths", "chapitre 3", "2026-03-05", "")
	require.NoError(t, err)

	out, err := s.Send(ctx, "Plan ma semaine", nil)
	require.NoError(t, err)
	assert.Equal(t, stream.Completed, out.State)
	_, err = s.Send(ctx, "Et demain ?", nil)
	require.NoError(t, err)

	sessions := provider.Sessions()
	require.Len(t, sessions, 1)
	sent := sessions[0].Sent()
	require.Len(t, sent, 2)

	first := lastText(sent[0])
	assert.Contains(t, first, "[SYSTEM DATA INJECTION - STRICT CONTEXT]")
	assert.Contains(t, first, "- [TODO] Réviser les maths (Due: 2026-03-05) Note: chapitre 3")
	assert.True(t, strings.HasSuffix(first, "\n\nUser Request: Plan ma semaine"))
	assert.Equal(t, "Et demain ?", lastText(sent[1]), "only the first turn is augmented")

	transcript := s.Transcript()
	assert.Equal(t, "Plan ma semaine", transcript[0].Text, "the transcript keeps the typed text")
}

func TestSendSkipsInjectionWithoutData(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"ok"}}
	s := newShell(t, provider, WithMode(types.ModeOrganization))

	_, err := s.Send(context.Background(), "Salut", nil)
	require.NoError(t, err)
	assert.Equal(t, "Salut", lastText(provider.Sessions()[0].Sent()[0]))
}

func TestSendInjectsAnalytics(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"ok"}}
	s := newShell(t, provider)
	ctx := context.Background()

	_, err := s.LogStudy(ctx, "Maths", 90, time.Time{})
	require.NoError(t, err)
	require.NoError(t, s.SwitchMode(ctx, types.ModeAnalytics))

	_, err = s.Send(ctx, "Analyse", nil)
	require.NoError(t, err)
	sessions := provider.Sessions()
	got := lastText(sessions[len(sessions)-1].Sent()[0])
	assert.Contains(t, got, "- Total Study Time: 2h 30m")
	assert.Contains(t, got, `- Time per Subject: {"Maths":90}`)
}

func TestSwitchModeResetsSession(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"ok"}}
	s := newShell(t, provider)
	ctx := context.Background()
	events, unsub := s.Subscribe()
	defer unsub()

	_, err := s.Send(ctx, "bonjour", nil)
	require.NoError(t, err)
	require.NoError(t, s.SwitchMode(ctx, types.ModeMusic))

	assert.Equal(t, types.ModeMusic, s.Mode())
	assert.Empty(t, s.Transcript())
	configs := provider.Configs()
	require.Len(t, configs, 2)
	assert.Equal(t, modes.Resolve(types.ModeMusic).Model, configs[1].Model)
	assert.Equal(t, modes.Resolve(types.ModeMusic).SuggestedPrompts, s.Suggestions())

	var sawReset bool
	for len(events) > 0 {
		if ev := <-events; ev.Type == delivery.EventReset {
			sawReset = true
		}
	}
	assert.True(t, sawReset)

	err = s.SwitchMode(ctx, "karaoke")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSendWithoutProvider(t *testing.T) {
	s := newShell(t, nil)

	out, err := s.Send(context.Background(), "bonjour", nil)
	require.Error(t, err)
	assert.Equal(t, stream.Failed, out.State)
	require.NotNil(t, out.Error)
	assert.Equal(t, chaterr.Configuration, out.Error.Kind)
	assert.False(t, out.Error.Retryable)
}

func TestRetryDoesNotReinjectContext(t *testing.T) {
	provider := &llmtest.Provider{Err: errors.New("503 service unavailable")}
	s := newShell(t, provider, WithMode(types.ModeOrganization))
	ctx := context.Background()
	require.NoError(t, s.SetTimetable(ctx, "Lundi: maths"))

	out, err := s.Send(ctx, "Plan", nil)
	require.Error(t, err)
	require.True(t, out.Reply.IsRetryable)

	_, err = s.Retry(ctx, out.Reply.ID)
	require.Error(t, err)

	sent := provider.Sessions()[0].Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, lastText(sent[0]), "Lundi: maths")
	assert.Equal(t, "Plan", lastText(sent[1]))
}

func TestGenerationOptionsApplyToPayloadOnly(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"ok"}}
	s := newShell(t, provider)
	s.SetOptions(modes.Options{Level: "Lycée"})

	_, err := s.Send(context.Background(), "Explique la photosynthèse", nil)
	require.NoError(t, err)
	assert.Equal(t, "Explique la photosynthèse\n\n[INSTRUCTIONS DE GÉNÉRATION: Niveau Cible: Lycée]",
		lastText(provider.Sessions()[0].Sent()[0]))
	assert.Equal(t, "Explique la photosynthèse", s.Transcript()[0].Text)
}

func TestRetryKeepsGenerationOptions(t *testing.T) {
	provider := &llmtest.Provider{Err: errors.New("googleapi: Error 503: service unavailable")}
	s := newShell(t, provider)
	s.SetOptions(modes.Options{Level: "Lycée"})
	ctx := context.Background()

	out, err := s.Send(ctx, "Explique la dérivée", nil)
	require.Error(t, err)
	require.True(t, out.Reply.IsRetryable)
	_, err = s.Retry(ctx, out.Reply.ID)
	require.Error(t, err)

	sent := provider.Sessions()[0].Sent()
	require.Len(t, sent, 2)
	want := "Explique la dérivée\n\n[INSTRUCTIONS DE GÉNÉRATION: Niveau Cible: Lycée]"
	assert.Equal(t, want, lastText(sent[0]))
	assert.Equal(t, want, lastText(sent[1]), "retry re-sends the options suffix")
}

func TestOpenProjectWhileStreaming(t *testing.T) {
	var mu sync.Mutex
	opened := 0
	provider := &llmtest.Provider{
		NewSessionFunc: func(context.Context, llm.SessionConfig, []llm.Content) (llm.Session, error) {
			mu.Lock()
			defer mu.Unlock()
			opened++
			if opened > 1 {
				return &llmtest.Session{Fragments: []string{"ok"}}, nil
			}
			return &llmtest.Session{SendFunc: func(ctx context.Context, _ []llm.Part) iter.Seq2[string, error] {
				return func(yield func(string, error) bool) {
					if !yield("partiel", nil) {
						return
					}
					<-ctx.Done()
					yield("", ctx.Err())
				}
			}}, nil
		},
	}
	s := newShell(t, provider)
	ctx := context.Background()
	p, err := s.SaveProject(ctx, "Playlist", "lo-fi", types.ModeMusic)
	require.NoError(t, err)

	first := make(chan stream.Outcome, 1)
	go func() {
		out, _ := s.Send(ctx, "longue réponse", nil)
		first <- out
	}()
	require.Eventually(t, s.Busy, 2*time.Second, time.Millisecond)

	out, err := s.OpenProject(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, out.Skipped, "the project prompt waits for the stopped turn")
	assert.Equal(t, stream.Completed, out.State)
	assert.Equal(t, stream.Cancelled, (<-first).State)

	transcript := s.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, p.Prompt, transcript[0].Text)
	assert.Equal(t, "ok", transcript[1].Text)
}

func TestOptimizePrompt(t *testing.T) {
	ctx := context.Background()
	provider := &llmtest.Provider{
		GenerateFunc: func(_ context.Context, req llm.GenerateRequest) (string, error) {
			return "  Explique étape par étape.  ", nil
		},
	}
	s := newShell(t, provider)

	assert.Equal(t, "", s.OptimizePrompt(ctx, "   "))
	assert.Equal(t, "Explique étape par étape.", s.OptimizePrompt(ctx, "explique"))

	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, modes.ModelPro, reqs[0].Model)
	assert.InDelta(t, 0.4, reqs[0].Temperature, 1e-6)
	assert.Contains(t, reqs[0].Prompt, `ORIGINAL INPUT: "explique"`)
	assert.Contains(t, reqs[0].Prompt, "academic and educational inquiries")

	provider.GenerateFunc = func(context.Context, llm.GenerateRequest) (string, error) {
		return "", errors.New("429 quota")
	}
	assert.Equal(t, "brouillon", s.OptimizePrompt(ctx, "brouillon"))
	assert.Equal(t, "brouillon", newShell(t, nil).OptimizePrompt(ctx, "brouillon"))
}

func TestImproveCode(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"ok"}}
	s := newShell(t, provider)

	_, err := s.ImproveCode(context.Background(), "print(1)", "python")
	require.NoError(t, err)
	assert.Equal(t, "Review and improve this python code:\n```python\nprint(1)\n```", s.Transcript()[0].Text)
}

func TestProjects(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"ok"}}
	s := newShell(t, provider)
	ctx := context.Background()

	first, err := s.SaveProject(ctx, "Bac 2026", "réviser", types.ModeLearning)
	require.NoError(t, err)
	second, err := s.SaveProject(ctx, "Playlist", "lo-fi", types.ModeMusic)
	require.NoError(t, err)
	assert.Equal(t, modes.StarterPrompt(types.ModeMusic, "Playlist", "lo-fi"), second.Prompt)

	list, err := s.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "new projects go first")

	_, err = s.SaveProject(ctx, "  ", "x", types.ModeLearning)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Send(ctx, "ancienne discussion", nil)
	require.NoError(t, err)
	out, err := s.OpenProject(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, stream.Completed, out.State)
	assert.Equal(t, types.ModeMusic, s.Mode())
	transcript := s.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, second.Prompt, transcript[0].Text)

	list, err = s.DeleteProject(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestUpdateProfile(t *testing.T) {
	s := newShell(t, &llmtest.Provider{})
	ctx := context.Background()

	_, err := s.UpdateProfile(ctx, "  ", "bio", "student")
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = s.UpdateProfile(ctx, "Awa", "bio", "robot")
	assert.ErrorIs(t, err, ErrInvalidProfile)

	p, err := s.UpdateProfile(ctx, " Awa ", "Terminale", "smart")
	require.NoError(t, err)
	assert.Equal(t, "Awa", p.Name)
	require.Len(t, p.History, 1)
	assert.Equal(t, state.DefaultName, p.History[0].Name)
}

func TestPersonalization(t *testing.T) {
	provider := &llmtest.Provider{}
	s := newShell(t, provider, WithPersonalization(true))
	ctx := context.Background()

	_, err := s.UpdateProfile(ctx, "Awa", "Passionnée de SVT", "calm")
	require.NoError(t, err)
	require.NoError(t, s.NewChat(ctx))

	configs := provider.Configs()
	require.Len(t, configs, 2)
	assert.Contains(t, configs[0].SystemInstruction, "User Name: "+state.DefaultName)
	assert.Contains(t, configs[1].SystemInstruction, "User Name: Awa")
	assert.Contains(t, configs[1].SystemInstruction, "User Bio: Passionnée de SVT")
}

func TestPlanningAndStudy(t *testing.T) {
	s := newShell(t, &llmtest.Provider{})
	ctx := context.Background()

	task, err := s.AddTask(ctx, "Exposé", "", "", types.PriorityHigh)
	require.NoError(t, err)
	_, err = s.AddTask(ctx, "x", "", "", "urgent")
	assert.ErrorIs(t, err, ErrInvalidInput)

	tasks, err := s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, tasks[0].IsCompleted)
	tasks, err = s.RemoveTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, s.SetTimetable(ctx, "Mardi: SVT"))
	tt, err := s.Timetable(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mardi: SVT", tt.Content)

	_, err = s.AddGrade(ctx, "Maths", 21, 20, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	g, err := s.AddGrade(ctx, "Maths", 15, 20, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, s.now(), g.Date)
	_, err = s.LogStudy(ctx, "Maths", 0, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	data, err := s.StudyData(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Sessions)
	assert.Len(t, data.Grades, 1)
}

func TestNotesTagging(t *testing.T) {
	provider := &llmtest.Provider{
		GenerateFunc: func(context.Context, llm.GenerateRequest) (string, error) {
			return `["Histoire", "Napoléon"]`, nil
		},
	}
	s := newShell(t, provider)
	ctx := context.Background()

	n, err := s.SaveNote(ctx, "Cours", "<h1>Austerlitz</h1><p>La bataille de <strong>1805</strong></p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"Histoire", "Napoléon"}, n.Tags)

	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, modes.ModelFlash, reqs[0].Model)
	assert.Equal(t, "application/json", reqs[0].ResponseMIMEType)
	assert.InDelta(t, 0.1, reqs[0].Temperature, 1e-6)
	assert.NotContains(t, reqs[0].Prompt, "<strong>")

	md, err := s.NoteMarkdown(ctx, n.ID)
	require.NoError(t, err)
	assert.Contains(t, md, "# Austerlitz")
	assert.Contains(t, md, "**1805**")

	short, err := s.SaveNote(ctx, "", "<p>abc</p>")
	require.NoError(t, err)
	assert.Empty(t, short.Tags)
	assert.Equal(t, "Sans titre", short.Title)
	assert.Len(t, provider.Requests(), 1, "short notes are not sent for tagging")

	provider.GenerateFunc = func(context.Context, llm.GenerateRequest) (string, error) {
		return "pas du json", nil
	}
	updated, err := s.UpdateNote(ctx, n.ID, "Cours v2", n.Content)
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	notes, err := s.DeleteNote(ctx, short.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Cours v2", notes[0].Title)
}

func TestConversationSaveAndResume(t *testing.T) {
	provider := &llmtest.Provider{Fragments: []string{"Voici la réponse"}}
	s := newShell(t, provider, WithMode(types.ModePolyglot))
	ctx := context.Background()

	_, err := s.SaveConversation(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyChat)

	long := "Traduis ce texte en anglais s'il te plaît, avec des explications"
	_, err = s.Send(ctx, long, nil)
	require.NoError(t, err)

	c, err := s.SaveConversation(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []rune(long)[:40], []rune(c.Title))
	again, err := s.SaveConversation(ctx, "Anglais")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID, "saving again updates the same entry")

	require.NoError(t, s.SwitchMode(ctx, types.ModeLearning))
	assert.Empty(t, s.Transcript())

	resumed, err := s.ResumeConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anglais", resumed.Title)
	assert.Equal(t, types.ModePolyglot, s.Mode())
	assert.Len(t, s.Transcript(), 2)

	histories := provider.Histories()
	assert.Len(t, histories[len(histories)-1], 2, "the saved turns are replayed")

	list, err := s.Conversations(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = s.DeleteConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecommendedPrompts(t *testing.T) {
	s := newShell(t, nil)
	assert.Equal(t, modes.Recommended(), s.RecommendedPrompts())
}
