package state

import (
	"context"
	"sync"

	"github.com/user/brainassist/internal/types"
)

const (
	notesKey         = "notes"
	conversationsKey = "conversations"
)

// NoteStore keeps notes most recently created first.
type NoteStore struct {
	kv types.KV
	mu sync.Mutex
}

func NewNoteStore(kv types.KV) *NoteStore {
	return &NoteStore{kv: kv}
}

func (s *NoteStore) List(ctx context.Context) ([]types.Note, error) {
	return load(ctx, s.kv, notesKey, []types.Note{})
}

func (s *NoteStore) Get(ctx context.Context, id types.NoteID) (types.Note, error) {
	notes, err := s.List(ctx)
	if err != nil {
		return types.Note{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return types.Note{}, ErrNotFound
}

// Save replaces the note with the same ID in place, or prepends a new one.
func (s *NoteStore) Save(ctx context.Context, n types.Note) ([]types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	notes = upsert(notes, n, func(x types.Note) bool { return x.ID == n.ID })
	if err := save(ctx, s.kv, notesKey, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *NoteStore) Delete(ctx context.Context, id types.NoteID) ([]types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out, ok := without(notes, func(x types.Note) bool { return x.ID == id })
	if !ok {
		return notes, ErrNotFound
	}
	if err := save(ctx, s.kv, notesKey, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConversationStore keeps saved chats most recently created first.
type ConversationStore struct {
	kv types.KV
	mu sync.Mutex
}

func NewConversationStore(kv types.KV) *ConversationStore {
	return &ConversationStore{kv: kv}
}

func (s *ConversationStore) List(ctx context.Context) ([]types.Conversation, error) {
	return load(ctx, s.kv, conversationsKey, []types.Conversation{})
}

func (s *ConversationStore) Get(ctx context.Context, id types.ConversationID) (types.Conversation, error) {
	convs, err := s.List(ctx)
	if err != nil {
		return types.Conversation{}, err
	}
	for _, c := range convs {
		if c.ID == id {
			return c, nil
		}
	}
	return types.Conversation{}, ErrNotFound
}

func (s *ConversationStore) Save(ctx context.Context, c types.Conversation) ([]types.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	convs = upsert(convs, c, func(x types.Conversation) bool { return x.ID == c.ID })
	if err := save(ctx, s.kv, conversationsKey, convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *ConversationStore) Delete(ctx context.Context, id types.ConversationID) ([]types.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out, ok := without(convs, func(x types.Conversation) bool { return x.ID == id })
	if !ok {
		return convs, ErrNotFound
	}
	if err := save(ctx, s.kv, conversationsKey, out); err != nil {
		return nil, err
	}
	return out, nil
}

func upsert[T any](list []T, v T, match func(T) bool) []T {
	for i := range list {
		if match(list[i]) {
			list[i] = v
			return list
		}
	}
	return append([]T{v}, list...)
}

func without[T any](list []T, match func(T) bool) ([]T, bool) {
	for i := range list {
		if match(list[i]) {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
