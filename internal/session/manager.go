// Package session owns the single live model conversation.
package session

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/user/brainassist/internal/attachment"
	"github.com/user/brainassist/internal/chaterr"
	ctxengine "github.com/user/brainassist/internal/context"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
)

// Handle describes the active session.
type Handle struct {
	ID        types.HandleID
	Mode      types.ChatMode
	Config    llm.SessionConfig
	Replayed  int
	CreatedAt time.Time

	session llm.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithInstructionSuffix appends the result of fn to every mode instruction
// at initialization time. It is how the user profile block gets in.
func WithInstructionSuffix(fn func(ctx context.Context) string) Option {
	return func(m *Manager) { m.suffix = fn }
}

// Manager creates, replaces and disposes the provider session. A nil
// provider means no credential was configured; every operation then fails
// with chaterr.ErrMissingCredential.
type Manager struct {
	provider llm.Provider
	engine   *ctxengine.Engine
	suffix   func(ctx context.Context) string

	mu     sync.Mutex
	handle *Handle
}

// New creates a Manager. engine may be nil to replay history untrimmed.
func New(provider llm.Provider, engine *ctxengine.Engine, opts ...Option) *Manager {
	m := &Manager{provider: provider, engine: engine}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Initialize opens a session for mode, replacing any previous one, and
// replays history into it.
func (m *Manager) Initialize(ctx context.Context, mode types.ChatMode, history []types.Message) error {
	if m.provider == nil {
		return chaterr.ErrMissingCredential
	}
	profile := modes.Resolve(mode)

	instruction := profile.Instruction
	if m.suffix != nil {
		instruction += m.suffix(ctx)
	}
	cfg := llm.SessionConfig{
		Model:             profile.Model,
		SystemInstruction: instruction,
		Temperature:       profile.Temperature,
		TopK:              profile.TopK,
	}

	if m.engine != nil {
		history = m.engine.Trim(instruction, history)
	}
	contents, err := toContents(history)
	if err != nil {
		return err
	}

	sess, err := m.provider.NewSession(ctx, cfg, contents)
	if err != nil {
		return fmt.Errorf("open %s session: %w", mode, err)
	}

	h := &Handle{
		ID:        types.NewHandleID(),
		Mode:      mode,
		Config:    cfg,
		Replayed:  len(contents),
		CreatedAt: time.Now(),
		session:   sess,
	}
	m.mu.Lock()
	m.handle = h
	m.mu.Unlock()

	slog.Info("chat session initialized", "handle", string(h.ID), "mode", string(mode), "model", cfg.Model, "replayed", len(contents))
	return nil
}

// Reset disposes the current session and initializes a new one.
func (m *Manager) Reset(ctx context.Context, mode types.ChatMode, history []types.Message) error {
	m.Dispose()
	return m.Initialize(ctx, mode, history)
}

// Dispose drops the active session. It is safe to call repeatedly.
func (m *Manager) Dispose() {
	m.mu.Lock()
	h := m.handle
	m.handle = nil
	m.mu.Unlock()
	if h != nil {
		slog.Debug("chat session disposed", "handle", string(h.ID))
	}
}

// Active returns a copy of the current handle.
func (m *Manager) Active() (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return Handle{}, false
	}
	return *m.handle, true
}

// SendAndStream sends one turn and yields reply fragments lazily. With no
// session yet, the default learning mode is initialized first.
func (m *Manager) SendAndStream(ctx context.Context, text string, atts []types.Attachment) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		m.mu.Lock()
		h := m.handle
		m.mu.Unlock()

		if h == nil {
			if err := m.Initialize(ctx, types.ModeLearning, nil); err != nil {
				yield("", err)
				return
			}
			m.mu.Lock()
			h = m.handle
			m.mu.Unlock()
			if h == nil {
				yield("", fmt.Errorf("session disposed during initialization"))
				return
			}
		}

		parts, err := buildParts(text, atts)
		if err != nil {
			yield("", err)
			return
		}

		for frag, err := range h.session.SendStream(ctx, parts) {
			if err != nil {
				yield("", err)
				return
			}
			if frag == "" {
				continue
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}

// buildParts puts inline attachments first, then the text if non-blank.
func buildParts(text string, atts []types.Attachment) ([]llm.Part, error) {
	parts, err := attachment.Parts(atts)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) != "" {
		parts = append(parts, llm.TextPart(text))
	}
	return parts, nil
}

func toContents(history []types.Message) ([]llm.Content, error) {
	var out []llm.Content
	for _, msg := range history {
		if msg.IsError {
			continue
		}
		parts, err := buildParts(msg.Text, msg.Attachments)
		if err != nil {
			return nil, fmt.Errorf("replay message %s: %w", msg.ID, err)
		}
		if len(parts) == 0 {
			continue
		}
		role := llm.RoleUser
		if msg.Role == types.RoleModel {
			role = llm.RoleModel
		}
		out = append(out, llm.Content{Role: role, Parts: parts})
	}
	return out, nil
}
