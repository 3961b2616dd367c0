// Package stream drives one model turn at a time: it appends the user
// message, streams the reply into a placeholder, and records failures.
package stream

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/user/brainassist/internal/chaterr"
	"github.com/user/brainassist/internal/transcript"
	"github.com/user/brainassist/internal/types"
)

type State int

const (
	Idle State = iota
	Sending
	Streaming
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrNotFound     = errors.New("message not found")
	ErrNotRetryable = errors.New("message is not a retryable error")
	ErrNoUserTurn   = errors.New("no user message precedes the error")
)

// Streamer is the part of session.Manager the controller needs.
type Streamer interface {
	SendAndStream(ctx context.Context, text string, atts []types.Attachment) iter.Seq2[string, error]
}

// Observer receives transcript and state changes as they happen. Calls
// come from the goroutine running Send.
type Observer interface {
	OnState(s State)
	OnAppend(m types.Message)
	OnFragment(id types.MessageID, fragment string)
	OnRemove(id types.MessageID)
}

type nopObserver struct{}

func (nopObserver) OnState(State)                      {}
func (nopObserver) OnAppend(types.Message)             {}
func (nopObserver) OnFragment(types.MessageID, string) {}
func (nopObserver) OnRemove(types.MessageID)           {}

// Turn is one user request. Text is what the transcript shows; Payload,
// when set, is what the model receives instead. Resend, when set, is what
// Retry sends for this turn in place of Text.
type Turn struct {
	Text        string
	Payload     string
	Resend      string
	Attachments []types.Attachment
}

func (t Turn) empty() bool {
	return strings.TrimSpace(t.Text) == "" && len(t.Attachments) == 0
}

// Outcome reports how a Send ended.
type Outcome struct {
	Skipped bool          `json:"skipped,omitempty"`
	State   State         `json:"state"`
	Reply   types.Message `json:"reply,omitempty"`
	Error   *chaterr.Info `json:"error,omitempty"`
}

// Controller is single-flight: while a turn is in flight, Send and Retry
// return immediately with Outcome.Skipped set.
type Controller struct {
	streamer   Streamer
	transcript *transcript.Store
	observer   Observer
	flight     *semaphore.Weighted

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	resend map[types.MessageID]string
}

// Option configures a Controller.
type Option func(*Controller)

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates a Controller.
func New(streamer Streamer, ts *transcript.Store, opts ...Option) *Controller {
	c := &Controller{
		streamer:   streamer,
		transcript: ts,
		observer:   nopObserver{},
		flight:     semaphore.NewWeighted(1),
		resend:     make(map[types.MessageID]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a turn is in flight.
func (c *Controller) Busy() bool {
	s := c.State()
	return s == Sending || s == Streaming
}

// Send runs one turn to completion. A failed turn returns the stream error
// alongside an Outcome whose Error holds the user-facing classification;
// a cancelled turn is not an error.
func (c *Controller) Send(ctx context.Context, turn Turn) (Outcome, error) {
	if turn.empty() {
		return Outcome{Skipped: true, State: c.State()}, nil
	}
	if !c.flight.TryAcquire(1) {
		return Outcome{Skipped: true, State: c.State()}, nil
	}
	defer c.flight.Release(1)
	return c.run(ctx, turn)
}

// Retry re-sends the user message that preceded a retryable error, after
// removing the error from the transcript.
func (c *Controller) Retry(ctx context.Context, id types.MessageID) (Outcome, error) {
	if !c.flight.TryAcquire(1) {
		return Outcome{Skipped: true, State: c.State()}, nil
	}
	defer c.flight.Release(1)

	user, err := c.retryTarget(id)
	if err != nil {
		return Outcome{}, err
	}
	if err := c.transcript.Remove(id); err != nil {
		return Outcome{}, ErrNotFound
	}
	c.observer.OnRemove(id)

	c.mu.Lock()
	resend := c.resend[user.ID]
	delete(c.resend, user.ID)
	c.mu.Unlock()

	slog.Info("retrying turn", "error_message", string(id), "user_message", string(user.ID))
	return c.run(ctx, Turn{Text: user.Text, Payload: resend, Resend: resend, Attachments: user.Attachments})
}

// CheckRetry reports whether id names a retryable error with a user
// message before it, without changing anything.
func (c *Controller) CheckRetry(id types.MessageID) error {
	_, err := c.retryTarget(id)
	return err
}

func (c *Controller) retryTarget(id types.MessageID) (types.Message, error) {
	msg, ok := c.transcript.Get(id)
	if !ok {
		return types.Message{}, ErrNotFound
	}
	if !msg.IsError || !msg.IsRetryable {
		return types.Message{}, ErrNotRetryable
	}
	user, ok := c.transcript.PrecedingUser(id)
	if !ok {
		return types.Message{}, ErrNoUserTurn
	}
	return user, nil
}

// Stop cancels the in-flight turn. Without one it does nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// StopAndWait cancels the in-flight turn and blocks until it has returned,
// so the next Send is not skipped.
func (c *Controller) StopAndWait(ctx context.Context) error {
	c.Stop()
	if err := c.flight.Acquire(ctx, 1); err != nil {
		return err
	}
	c.flight.Release(1)
	return nil
}

// Forget drops per-turn state kept for Retry. Call it when the transcript
// is cleared.
func (c *Controller) Forget() {
	c.mu.Lock()
	clear(c.resend)
	c.mu.Unlock()
}

func (c *Controller) run(parent context.Context, turn Turn) (Outcome, error) {
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		c.setState(Idle)
	}()

	user := c.transcript.Append(types.Message{
		Role:        types.RoleUser,
		Text:        turn.Text,
		Attachments: turn.Attachments,
	})
	c.observer.OnAppend(user)
	if turn.Resend != "" {
		c.mu.Lock()
		c.resend[user.ID] = turn.Resend
		c.mu.Unlock()
	}
	c.setState(Sending)

	payload := turn.Payload
	if payload == "" {
		payload = turn.Text
	}
	fragments := c.streamer.SendAndStream(ctx, payload, turn.Attachments)

	placeholder := c.transcript.OpenPlaceholder()
	c.observer.OnAppend(placeholder)
	c.setState(Streaming)

	var streamErr error
	for frag, err := range fragments {
		if err != nil {
			streamErr = err
			break
		}
		if ctx.Err() != nil {
			break
		}
		if _, err := c.transcript.AppendText(frag); err != nil {
			// placeholder vanished (transcript cleared mid-stream)
			cancel()
			break
		}
		c.observer.OnFragment(placeholder.ID, frag)
		if ctx.Err() != nil {
			break
		}
	}

	reply, _ := c.transcript.ClosePlaceholder()
	if reply.ID == "" {
		reply = placeholder
	}

	switch {
	case ctx.Err() != nil || chaterr.IsCancelled(streamErr):
		c.setState(Cancelled)
		slog.Info("turn cancelled", "message", string(reply.ID), "chars", len(reply.Text))
		return Outcome{State: Cancelled, Reply: reply}, nil

	case streamErr != nil:
		info := chaterr.Classify(streamErr)
		if reply.Text == "" {
			if err := c.transcript.Remove(reply.ID); err == nil {
				c.observer.OnRemove(reply.ID)
			}
		}
		errMsg := c.transcript.Append(types.Message{
			Role:        types.RoleModel,
			Text:        info.Text,
			IsError:     true,
			IsRetryable: info.Retryable,
		})
		c.observer.OnAppend(errMsg)
		c.setState(Failed)
		slog.Warn("turn failed", "kind", info.Kind.String(), "retryable", info.Retryable, "error", streamErr)
		return Outcome{State: Failed, Reply: errMsg, Error: &info}, streamErr

	default:
		c.setState(Completed)
		slog.Debug("turn completed", "message", string(reply.ID), "chars", len(reply.Text))
		return Outcome{State: Completed, Reply: reply}, nil
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.observer.OnState(s)
}
