package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/state"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm/llmtest"
)

func testRepl(t *testing.T, provider *llmtest.Provider) (*repl, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	kv := state.WithPrefix(state.NewFileKV(t.TempDir()), state.DefaultPrefix)
	shell := app.New(provider, kv)
	require.NoError(t, shell.Start(context.Background()))
	t.Cleanup(shell.Close)

	var out, errOut bytes.Buffer
	r := newRepl(shell)
	r.out, r.errOut = &out, &errOut
	return r, &out, &errOut
}

func TestTurnShowsClassifiedFailure(t *testing.T) {
	provider := &llmtest.Provider{Err: errors.New("googleapi: Error 503: service unavailable")}
	r, out, errOut := testRepl(t, provider)
	ctx := context.Background()

	r.turn(ctx, func(ctx context.Context) (stream.Outcome, error) {
		return r.shell.Send(ctx, "bonjour", nil)
	})

	assert.Contains(t, out.String(), "surchargés")
	assert.Contains(t, out.String(), "(/retry)")
	assert.NotContains(t, out.String(), "googleapi")
	assert.Empty(t, errOut.String())
}

func TestTurnNonRetryableFailureHasNoHint(t *testing.T) {
	provider := &llmtest.Provider{Err: errors.New("400 bad request: API key not valid")}
	r, out, _ := testRepl(t, provider)

	r.turn(context.Background(), func(ctx context.Context) (stream.Outcome, error) {
		return r.shell.Send(ctx, "bonjour", nil)
	})

	assert.NotContains(t, out.String(), "(/retry)")
}

func TestTurnPlainErrorGoesToStderr(t *testing.T) {
	r, out, errOut := testRepl(t, &llmtest.Provider{Fragments: []string{"ok"}})

	r.turn(context.Background(), func(context.Context) (stream.Outcome, error) {
		return stream.Outcome{}, stream.ErrNotFound
	})

	assert.Contains(t, errOut.String(), "Error: message not found")
	assert.NotContains(t, out.String(), "message not found")
}

func TestRetryCommand(t *testing.T) {
	provider := &llmtest.Provider{Err: errors.New("503 overloaded")}
	r, out, _ := testRepl(t, provider)
	ctx := context.Background()

	_, err := r.command(ctx, "/retry")
	assert.EqualError(t, err, "nothing to retry")

	r.turn(ctx, func(ctx context.Context) (stream.Outcome, error) {
		return r.shell.Send(ctx, "bonjour", nil)
	})
	out.Reset()
	quit, err := r.command(ctx, "/retry")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "(/retry)")
	assert.Len(t, provider.Sessions()[0].Sent(), 2)
}

func TestLastRetryable(t *testing.T) {
	msgs := []types.Message{
		{ID: "u1", Role: types.RoleUser, Text: "q"},
		{ID: "e1", Role: types.RoleModel, IsError: true, IsRetryable: true},
	}
	id, ok := lastRetryable(msgs)
	assert.True(t, ok)
	assert.Equal(t, types.MessageID("e1"), id)

	msgs = append(msgs, types.Message{ID: "u2", Role: types.RoleUser, Text: "autre"})
	_, ok = lastRetryable(msgs)
	assert.False(t, ok, "an error before the latest user turn is stale")

	_, ok = lastRetryable([]types.Message{{ID: "e2", Role: types.RoleModel, IsError: true}})
	assert.False(t, ok)
}
