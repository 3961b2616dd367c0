package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/brainassist/internal/types"
)

func setupTestRedis(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisKV(client), mr
}

func TestRedisKV(t *testing.T) {
	kv, mr := setupTestRedis(t)
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "brainassist_projects")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "brainassist_projects", []byte(`[]`)))
	got, err := mr.Get("brainassist_projects")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
	assert.Zero(t, mr.TTL("brainassist_projects"), "values must not expire")

	data, found, err := kv.Get(ctx, "brainassist_projects")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, kv.Delete(ctx, "brainassist_projects"))
	assert.False(t, mr.Exists("brainassist_projects"))
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	kv, err := DialRedis(context.Background(), addr, 0)
	require.NoError(t, err)
	defer kv.Close()

	mr.Close()
	_, err = DialRedis(context.Background(), addr, 0)
	assert.Error(t, err)
}

func TestRedisBackedStores(t *testing.T) {
	kv, mr := setupTestRedis(t)
	ctx := context.Background()
	prefixed := WithPrefix(kv, DefaultPrefix)

	notes := NewNoteStore(prefixed)
	_, err := notes.Save(ctx, types.Note{ID: "n1", Title: "Cours", Content: "<p>Bonjour</p>"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("brainassist_notes"))

	convs := NewConversationStore(prefixed)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err = convs.Save(ctx, types.Conversation{ID: "c1", Title: "Révisions", Mode: types.ModeLearning, CreatedAt: now, UpdatedAt: now,
		Messages: []types.Message{{ID: "m1", Role: types.RoleUser, Text: "salut", Timestamp: now}}})
	require.NoError(t, err)

	got, err := convs.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Révisions", got.Title)
	require.Len(t, got.Messages, 1)
	assert.True(t, got.Messages[0].Timestamp.Equal(now))
}
