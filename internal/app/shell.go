// Package app wires the chat session, streaming controller, transcript and
// stores into the operations the CLI and HTTP API expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/user/brainassist/internal/chaterr"
	ctxengine "github.com/user/brainassist/internal/context"
	"github.com/user/brainassist/internal/delivery"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/session"
	"github.com/user/brainassist/internal/state"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/transcript"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptyChat      = errors.New("nothing to save: the transcript is empty")
)

const (
	optimizeTemperature = 0.4
	tagTemperature      = 0.1
	minTagContent       = 10
	titleLength         = 40
)

// Shell is the application core. It is safe for concurrent use; chat turns
// are single-flight through the stream controller.
type Shell struct {
	provider   llm.Provider
	manager    *session.Manager
	transcript *transcript.Store
	controller *stream.Controller
	hub        *delivery.Hub

	projects      *state.ProjectStore
	profile       *state.ProfileStore
	planning      *state.PlanningStore
	study         *state.StudyStore
	notes         *state.NoteStore
	conversations *state.ConversationStore

	engine      *ctxengine.Engine
	personalize bool
	now         func() time.Time

	mu           sync.RWMutex
	mode         types.ChatMode
	options      modes.Options
	conversation types.ConversationID
}

// Option configures a Shell.
type Option func(*Shell)

// WithEngine trims replayed history to the engine's token budget.
func WithEngine(e *ctxengine.Engine) Option {
	return func(s *Shell) { s.engine = e }
}

// WithPersonalization appends the user profile to every mode instruction.
func WithPersonalization(on bool) Option {
	return func(s *Shell) { s.personalize = on }
}

// WithMode sets the starting mode. An unknown mode keeps learning.
func WithMode(mode types.ChatMode) Option {
	return func(s *Shell) {
		if m, err := modes.Parse(string(mode)); err == nil {
			s.mode = m
		}
	}
}

// WithHub shares an existing event hub.
func WithHub(h *delivery.Hub) Option {
	return func(s *Shell) { s.hub = h }
}

// New creates a Shell. provider may be nil when no credential is
// configured: chat turns then fail with a configuration error message and
// the one-shot helpers return their fallbacks. kv should already carry the
// key prefix.
func New(provider llm.Provider, kv types.KV, opts ...Option) *Shell {
	s := &Shell{
		provider:      provider,
		transcript:    transcript.New(),
		projects:      state.NewProjectStore(kv),
		profile:       state.NewProfileStore(kv),
		planning:      state.NewPlanningStore(kv),
		study:         state.NewStudyStore(kv),
		notes:         state.NewNoteStore(kv),
		conversations: state.NewConversationStore(kv),
		now:           time.Now,
		mode:          types.ModeLearning,
	}
	for _, o := range opts {
		o(s)
	}
	if s.hub == nil {
		s.hub = delivery.NewHub(delivery.DefaultBuffer)
	}

	var sessOpts []session.Option
	if s.personalize {
		sessOpts = append(sessOpts, session.WithInstructionSuffix(s.profileSuffix))
	}
	s.manager = session.New(provider, s.engine, sessOpts...)
	s.controller = stream.New(s.manager, s.transcript, stream.WithObserver(s.hub))
	return s
}

func (s *Shell) profileSuffix(ctx context.Context) string {
	p, err := s.profile.Load(ctx)
	if err != nil {
		slog.Warn("profile unavailable for personalization", "error", err)
		return ""
	}
	return "\n" + ctxengine.ProfileBlock(p)
}

// Start opens the session for the current mode.
func (s *Shell) Start(ctx context.Context) error {
	return s.resetSession(ctx, s.Mode(), nil)
}

// Close disposes the model session.
func (s *Shell) Close() {
	s.controller.Stop()
	s.manager.Dispose()
}

func (s *Shell) Mode() types.ChatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// ModeProfile returns the static configuration of the current mode.
func (s *Shell) ModeProfile() modes.Profile {
	return modes.Resolve(s.Mode())
}

// SwitchMode stops any turn in flight, clears the transcript and opens a
// fresh session for mode.
func (s *Shell) SwitchMode(ctx context.Context, mode types.ChatMode) error {
	m, err := modes.Parse(string(mode))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.controller.StopAndWait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = m
	s.conversation = ""
	s.mu.Unlock()

	s.transcript.Clear()
	s.controller.Forget()
	s.hub.OnReset()
	return s.resetSession(ctx, m, nil)
}

// NewChat starts over in the current mode.
func (s *Shell) NewChat(ctx context.Context) error {
	return s.SwitchMode(ctx, s.Mode())
}

// resetSession swallows a missing credential: the send boundary reports it
// as an error message instead.
func (s *Shell) resetSession(ctx context.Context, mode types.ChatMode, history []types.Message) error {
	err := s.manager.Reset(ctx, mode, history)
	if errors.Is(err, chaterr.ErrMissingCredential) {
		slog.Warn("no model credential configured", "mode", string(mode))
		return nil
	}
	return err
}

// Options returns the generation options applied to outgoing turns.
func (s *Shell) Options() modes.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

func (s *Shell) SetOptions(o modes.Options) {
	s.mu.Lock()
	s.options = o
	s.mu.Unlock()
}

// Send runs one chat turn. On the first turn of an organization or
// analytics conversation, the planning or study data is prepended to what
// the model receives; the transcript keeps the text as typed.
func (s *Shell) Send(ctx context.Context, text string, atts []types.Attachment) (stream.Outcome, error) {
	resend := s.Options().Apply(text)
	payload := resend
	if s.transcript.Len() == 0 {
		if block := s.contextBlock(ctx, s.Mode()); block != "" {
			payload = ctxengine.Inject(block, payload)
		}
	}
	return s.controller.Send(ctx, stream.Turn{Text: text, Payload: payload, Resend: resend, Attachments: atts})
}

// contextBlock returns "" when the mode has no data to inject or the data
// could not be read.
func (s *Shell) contextBlock(ctx context.Context, mode types.ChatMode) string {
	switch mode {
	case types.ModeOrganization:
		tasks, err := s.planning.Tasks(ctx)
		if err != nil {
			slog.Warn("skipping organization context", "error", err)
			return ""
		}
		tt, err := s.planning.Timetable(ctx)
		if err != nil {
			slog.Warn("skipping organization context", "error", err)
			return ""
		}
		if len(tasks) == 0 && strings.TrimSpace(tt.Content) == "" {
			return ""
		}
		return ctxengine.OrganizationBlock(tt, tasks)

	case types.ModeAnalytics:
		sessions, err := s.study.Sessions(ctx)
		if err != nil {
			slog.Warn("skipping analytics context", "error", err)
			return ""
		}
		grades, err := s.study.Grades(ctx)
		if err != nil {
			slog.Warn("skipping analytics context", "error", err)
			return ""
		}
		if len(sessions) == 0 && len(grades) == 0 {
			return ""
		}
		return ctxengine.AnalyticsBlock(sessions, grades)
	}
	return ""
}

func (s *Shell) Stop() { s.controller.Stop() }

// Retry re-sends the user turn before a retryable error message with its
// generation options. The context block is not re-injected.
func (s *Shell) Retry(ctx context.Context, id types.MessageID) (stream.Outcome, error) {
	return s.controller.Retry(ctx, id)
}

// CanRetry returns the error Retry would fail with before sending, or nil.
func (s *Shell) CanRetry(id types.MessageID) error { return s.controller.CheckRetry(id) }

func (s *Shell) Busy() bool { return s.controller.Busy() }

func (s *Shell) State() stream.State { return s.controller.State() }

// Transcript returns a copy of the visible conversation.
func (s *Shell) Transcript() []types.Message { return s.transcript.Snapshot() }

// Suggestions are the starter prompts for the current mode.
func (s *Shell) Suggestions() []string { return s.ModeProfile().SuggestedPrompts }

// Subscribe streams transcript events until the returned func is called.
func (s *Shell) Subscribe() (<-chan delivery.Event, func()) { return s.hub.Subscribe() }

func (s *Shell) RecommendedPrompts() []types.RecommendedPrompt { return modes.Recommended() }

// OptimizePrompt rewrites draft into a stronger prompt for the current
// mode. Any failure returns draft unchanged.
func (s *Shell) OptimizePrompt(ctx context.Context, draft string) string {
	if strings.TrimSpace(draft) == "" {
		return ""
	}
	if s.provider == nil {
		return draft
	}
	prompt, err := ctxengine.RenderOptimize(modes.OptimizeContext(s.Mode()), draft)
	if err != nil {
		slog.Warn("optimize prompt failed", "error", err)
		return draft
	}
	out, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Model:       modes.ModelPro,
		Prompt:      prompt,
		Temperature: optimizeTemperature,
	})
	if err != nil {
		slog.Warn("optimize prompt failed", "error", err)
		return draft
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return draft
	}
	return out
}

// ImproveCode asks the model, as a normal chat turn, to review code.
func (s *Shell) ImproveCode(ctx context.Context, code, lang string) (stream.Outcome, error) {
	prompt, err := ctxengine.RenderImproveCode(code, lang)
	if err != nil {
		return stream.Outcome{}, err
	}
	return s.Send(ctx, prompt, nil)
}
