package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/brainassist/internal/delivery"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
)

type turnResult struct {
	out stream.Outcome
	err error
}

// streamTurn runs one chat turn and relays hub events as SSE until the turn
// ends: delta for fragments, message for appended messages, error for a
// failed turn and done with the final outcome. A client disconnect cancels
// the turn through the request context. Deltas may be dropped for a client
// that stops reading; the outcome in done carries the full reply.
func (s *Server) streamTurn(c *gin.Context, run func(ctx context.Context) (stream.Outcome, error)) {
	if s.shell.Busy() {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "a reply is already streaming"})
		return
	}
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	events, unsubscribe := s.shell.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher.Flush()

	ctx := c.Request.Context()
	done := make(chan turnResult, 1)
	go func() {
		out, err := run(ctx)
		done <- turnResult{out: out, err: err}
	}()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			writeHubEvent(c.Writer, ev)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case res := <-done:
			// events are published before run returns
			for drained := false; !drained; {
				select {
				case ev := <-events:
					writeHubEvent(c.Writer, ev)
				default:
					drained = true
				}
			}
			writeResult(c.Writer, res)
			flusher.Flush()
			return
		}
	}
}

func writeHubEvent(w io.Writer, ev delivery.Event) {
	switch ev.Type {
	case delivery.EventFragment:
		writeSSE(w, "delta", gin.H{"id": ev.MessageID, "text": ev.Fragment})
	case delivery.EventAppend:
		writeSSE(w, "message", ev.Message)
	case delivery.EventRemove:
		writeSSE(w, "remove", gin.H{"id": ev.MessageID})
	case delivery.EventState:
		writeSSE(w, "state", gin.H{"state": ev.State})
	}
}

func writeResult(w io.Writer, res turnResult) {
	switch {
	case res.out.Error != nil:
		writeSSE(w, "error", gin.H{"kind": res.out.Error.Kind, "text": res.out.Error.Text,
			"retryable": res.out.Error.Retryable, "message_id": res.out.Reply.ID})
	case res.err != nil:
		writeSSE(w, "error", gin.H{"text": res.err.Error(), "retryable": false})
	}
	writeSSE(w, "done", gin.H{"ok": res.err == nil, "outcome": res.out})
}

func writeSSE(w io.Writer, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

type chatRequest struct {
	Text        string             `json:"text"`
	Attachments []types.Attachment `json:"attachments"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s.streamTurn(c, func(ctx context.Context) (stream.Outcome, error) {
		return s.shell.Send(ctx, req.Text, req.Attachments)
	})
}

func (s *Server) retryChat(c *gin.Context) {
	id := types.MessageID(c.Param("id"))
	if err := s.shell.CanRetry(id); err != nil {
		writeError(c, err)
		return
	}
	s.streamTurn(c, func(ctx context.Context) (stream.Outcome, error) {
		return s.shell.Retry(ctx, id)
	})
}

type improveRequest struct {
	Code string `json:"code" binding:"required"`
	Lang string `json:"lang"`
}

func (s *Server) improveCode(c *gin.Context) {
	var req improveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s.streamTurn(c, func(ctx context.Context) (stream.Outcome, error) {
		return s.shell.ImproveCode(ctx, req.Code, req.Lang)
	})
}

func (s *Server) openProject(c *gin.Context) {
	id := types.ProjectID(c.Param("id"))
	if _, err := s.shell.Project(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	s.streamTurn(c, func(ctx context.Context) (stream.Outcome, error) {
		return s.shell.OpenProject(ctx, id)
	})
}
