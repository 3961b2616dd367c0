package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/user/brainassist/pkg/llm"
)

// Client implements the llm.Provider interface for OpenAI-compatible APIs.
type Client struct {
	config     *llm.Config
	httpClient *http.Client
}

// New creates a new OpenAI-compatible client with the given configuration.
// The HTTP client has no overall timeout since streams stay open for as
// long as the model writes; callers bound requests with their context.
func New(config *llm.Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
	}
}

// chatRequest is the OpenAI chat completions request body.
type chatRequest struct {
	Model          string           `json:"model"`
	Messages       []requestMessage `json:"messages"`
	MaxTokens      int              `json:"max_tokens,omitempty"`
	Temperature    *float32         `json:"temperature,omitempty"`
	Stream         bool             `json:"stream,omitempty"`
	ResponseFormat *responseFormat  `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// requestMessage is the OpenAI message format for requests. Content is a
// plain string for text-only turns and a list of content parts otherwise.
type requestMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	File     *fileData `json:"file,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type fileData struct {
	FileData string `json:"file_data"`
}

// chatResponse is the OpenAI chat completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// streamChunk is one SSE data payload of a streamed completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewSession returns a session that keeps its history client-side.
func (c *Client) NewSession(_ context.Context, cfg llm.SessionConfig, history []llm.Content) (llm.Session, error) {
	msgs := make([]requestMessage, 0, len(history)+1)
	if cfg.SystemInstruction != "" {
		msgs = append(msgs, requestMessage{Role: "system", Content: cfg.SystemInstruction})
	}
	for _, h := range history {
		msgs = append(msgs, toRequestMessage(h.Role, h.Parts))
	}
	model := cfg.Model
	if c.config.Model != "" {
		model = c.config.Model
	}
	return &session{client: c, model: model, temperature: cfg.Temperature, messages: msgs}, nil
}

// Generate sends a single prompt and returns the full response text.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	model := req.Model
	if c.config.Model != "" {
		model = c.config.Model
	}
	body := chatRequest{
		Model:     model,
		Messages:  []requestMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: c.config.MaxTokens,
	}
	if req.Temperature != 0 {
		temp := req.Temperature
		body.Temperature = &temp
	}
	if req.ResponseMIMEType == "application/json" {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, reqBody chatRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if reqBody.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(errBody))
	}
	return resp, nil
}

type session struct {
	client      *Client
	model       string
	temperature float32

	mu       sync.Mutex
	messages []requestMessage
}

// SendStream posts the turn with stream=true and yields content deltas.
// The turn and its reply join the history only when the stream completes.
func (s *session) SendStream(ctx context.Context, parts []llm.Part) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		user := toRequestMessage(llm.RoleUser, parts)

		s.mu.Lock()
		msgs := append(append([]requestMessage(nil), s.messages...), user)
		s.mu.Unlock()

		body := chatRequest{
			Model:     s.model,
			Messages:  msgs,
			MaxTokens: s.client.config.MaxTokens,
			Stream:    true,
		}
		if s.temperature != 0 {
			temp := s.temperature
			body.Temperature = &temp
		}

		resp, err := s.client.post(ctx, body)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		var reply strings.Builder
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}
			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield("", fmt.Errorf("parsing stream chunk: %w", err))
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if reason := chunk.Choices[0].FinishReason; reason == "content_filter" {
				yield("", fmt.Errorf("response blocked: finish reason %s", reason))
				return
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			reply.WriteString(delta)
			if !yield(delta, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("reading stream: %w", err))
			return
		}

		s.mu.Lock()
		s.messages = append(s.messages, user, requestMessage{Role: "assistant", Content: reply.String()})
		s.mu.Unlock()
	}
}

func toRequestMessage(role string, parts []llm.Part) requestMessage {
	if role == llm.RoleModel {
		role = "assistant"
	}
	inline := false
	for _, p := range parts {
		if p.IsInline() {
			inline = true
			break
		}
	}
	if !inline {
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			texts = append(texts, p.Text)
		}
		return requestMessage{Role: role, Content: strings.Join(texts, "\n")}
	}

	content := make([]contentPart, 0, len(parts))
	for _, p := range parts {
		if !p.IsInline() {
			content = append(content, contentPart{Type: "text", Text: p.Text})
			continue
		}
		dataURL := "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
		if strings.HasPrefix(p.MIMEType, "image/") {
			content = append(content, contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURL}})
		} else {
			content = append(content, contentPart{Type: "file", File: &fileData{FileData: dataURL}})
		}
	}
	return requestMessage{Role: role, Content: content}
}
