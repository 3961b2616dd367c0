// Package llmtest provides scriptable llm.Provider and llm.Session doubles.
package llmtest

import (
	"context"
	"iter"
	"sync"

	"github.com/user/brainassist/pkg/llm"
)

// Step is one scripted stream element.
type Step struct {
	Text string
	Err  error
}

// Provider is a test double that satisfies llm.Provider. Sessions it opens
// replay Fragments (then Err) unless NewSessionFunc says otherwise.
type Provider struct {
	NewSessionFunc func(ctx context.Context, cfg llm.SessionConfig, history []llm.Content) (llm.Session, error)
	GenerateFunc   func(ctx context.Context, req llm.GenerateRequest) (string, error)

	Fragments []string
	Err       error

	mu        sync.Mutex
	configs   []llm.SessionConfig
	histories [][]llm.Content
	sessions  []*Session
	requests  []llm.GenerateRequest
}

func (p *Provider) NewSession(ctx context.Context, cfg llm.SessionConfig, history []llm.Content) (llm.Session, error) {
	p.mu.Lock()
	p.configs = append(p.configs, cfg)
	p.histories = append(p.histories, history)
	p.mu.Unlock()

	if p.NewSessionFunc != nil {
		return p.NewSessionFunc(ctx, cfg, history)
	}
	s := &Session{Fragments: p.Fragments, Err: p.Err}
	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	return s, nil
}

func (p *Provider) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, req)
	}
	return "mock response", nil
}

// Configs returns every SessionConfig passed to NewSession, in order.
func (p *Provider) Configs() []llm.SessionConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.SessionConfig(nil), p.configs...)
}

// Histories returns every history passed to NewSession, in order.
func (p *Provider) Histories() [][]llm.Content {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]llm.Content(nil), p.histories...)
}

// Sessions returns the default sessions opened so far.
func (p *Provider) Sessions() []*Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Session(nil), p.sessions...)
}

// Requests returns every Generate request, in order.
func (p *Provider) Requests() []llm.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.GenerateRequest(nil), p.requests...)
}

// Session is a test double that satisfies llm.Session.
type Session struct {
	SendFunc  func(ctx context.Context, parts []llm.Part) iter.Seq2[string, error]
	Fragments []string
	Err       error

	mu   sync.Mutex
	sent [][]llm.Part
}

func (s *Session) SendStream(ctx context.Context, parts []llm.Part) iter.Seq2[string, error] {
	s.mu.Lock()
	s.sent = append(s.sent, parts)
	s.mu.Unlock()

	if s.SendFunc != nil {
		return s.SendFunc(ctx, parts)
	}
	return Replay(s.Fragments, s.Err)
}

// Sent returns the parts of every turn sent on this session.
func (s *Session) Sent() [][]llm.Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]llm.Part(nil), s.sent...)
}

// Replay yields fragments in order, then err if it is non-nil.
func Replay(fragments []string, err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// FromChannel yields steps as the test feeds them, ending when steps is
// closed or ctx is done.
func FromChannel(ctx context.Context, steps <-chan Step) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case step, ok := <-steps:
				if !ok {
					return
				}
				if !yield(step.Text, step.Err) || step.Err != nil {
					return
				}
			}
		}
	}
}
