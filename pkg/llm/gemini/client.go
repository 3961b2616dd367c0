// Package gemini implements llm.Provider on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/user/brainassist/pkg/llm"
)

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("gemini: api_key is missing")

// Client implements the llm.Provider interface for the Gemini API.
type Client struct {
	client *genai.Client
}

// New creates a Gemini client. cfg.BaseURL overrides the API endpoint,
// which is only useful against a test server.
func New(ctx context.Context, cfg *llm.Config) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// NewSession opens a chat bound to cfg and seeded with history.
func (c *Client) NewSession(ctx context.Context, cfg llm.SessionConfig, history []llm.Content) (llm.Session, error) {
	chat, err := c.client.Chats.Create(ctx, cfg.Model, chatConfig(cfg), toContents(history))
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return &session{chat: chat}, nil
}

// Generate sends a single prompt and returns the response text.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	temp := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: req.ResponseMIMEType,
	}
	res, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}

type session struct {
	chat *genai.Chat
}

// SendStream yields the text of each streamed response chunk. Chunks with
// no text (tool calls, finish markers) are skipped.
func (s *session) SendStream(ctx context.Context, parts []llm.Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for res, err := range s.chat.SendMessageStream(ctx, toParts(parts)...) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			text := res.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func chatConfig(cfg llm.SessionConfig) *genai.GenerateContentConfig {
	temp := cfg.Temperature
	topK := cfg.TopK
	out := &genai.GenerateContentConfig{
		Temperature: &temp,
		TopK:        &topK,
	}
	if cfg.SystemInstruction != "" {
		out.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	return out
}

func toParts(parts []llm.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			out = append(out, genai.Part{InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Data}})
			continue
		}
		out = append(out, genai.Part{Text: p.Text})
	}
	return out
}

func toContents(history []llm.Content) []*genai.Content {
	if len(history) == 0 {
		return nil
	}
	out := make([]*genai.Content, 0, len(history))
	for _, h := range history {
		var role genai.Role = genai.RoleUser
		if h.Role == llm.RoleModel {
			role = genai.RoleModel
		}
		parts := toParts(h.Parts)
		ptrs := make([]*genai.Part, len(parts))
		for i := range parts {
			ptrs[i] = &parts[i]
		}
		out = append(out, genai.NewContentFromParts(ptrs, role))
	}
	return out
}
