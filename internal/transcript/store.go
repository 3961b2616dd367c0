// Package transcript holds the ordered, in-memory message list of the
// current chat.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/user/brainassist/internal/types"
)

// ErrNotFound is returned when a message ID is not in the transcript.
var ErrNotFound = errors.New("message not found")

// ErrNoPlaceholder is returned by AppendText when no reply is streaming.
var ErrNoPlaceholder = errors.New("no open placeholder")

// Store is safe for concurrent use. Only the open placeholder (the model
// reply currently streaming) can have text appended to it.
type Store struct {
	mu       sync.RWMutex
	messages []types.Message
	open     types.MessageID
	now      func() time.Time
}

// New creates an empty transcript.
func New() *Store {
	return &Store{now: time.Now}
}

// Append adds m at the end. A zero ID or timestamp is filled in.
func (s *Store) Append(m types.Message) types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = types.NewMessageID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	s.messages = append(s.messages, m.Clone())
	return m
}

// OpenPlaceholder appends an empty model message and marks it as the
// streaming target.
func (s *Store) OpenPlaceholder() types.Message {
	m := s.Append(types.Message{Role: types.RoleModel})
	s.mu.Lock()
	s.open = m.ID
	s.mu.Unlock()
	return m
}

// AppendText concatenates fragment onto the open placeholder.
func (s *Store) AppendText(fragment string) (types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == "" {
		return types.Message{}, ErrNoPlaceholder
	}
	i := s.index(s.open)
	if i < 0 {
		s.open = ""
		return types.Message{}, ErrNoPlaceholder
	}
	s.messages[i].Text += fragment
	return s.messages[i].Clone(), nil
}

// ClosePlaceholder ends streaming and returns the final placeholder.
// ok is false if none was open.
func (s *Store) ClosePlaceholder() (types.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.open
	s.open = ""
	if id == "" {
		return types.Message{}, false
	}
	i := s.index(id)
	if i < 0 {
		return types.Message{}, false
	}
	return s.messages[i].Clone(), true
}

// Remove deletes the message with the given ID.
func (s *Store) Remove(id types.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	if s.open == id {
		s.open = ""
	}
	return nil
}

// Get returns a copy of the message with the given ID.
func (s *Store) Get(id types.MessageID) (types.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return types.Message{}, false
	}
	return s.messages[i].Clone(), true
}

// Index returns the position of id, or -1.
func (s *Store) Index(id types.MessageID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index(id)
}

// PrecedingUser returns the nearest user message before id.
func (s *Store) PrecedingUser(id types.MessageID) (types.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := s.index(id) - 1; i >= 0; i-- {
		if s.messages[i].Role == types.RoleUser {
			return s.messages[i].Clone(), true
		}
	}
	return types.Message{}, false
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Snapshot returns a deep copy of the transcript.
func (s *Store) Snapshot() []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Message, len(s.messages))
	for i := range s.messages {
		out[i] = s.messages[i].Clone()
	}
	return out
}

// Replace swaps the whole transcript, e.g. when resuming a saved chat.
func (s *Store) Replace(all []types.Message) {
	msgs := make([]types.Message, len(all))
	for i := range all {
		msgs[i] = all[i].Clone()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = msgs
	s.open = ""
}

// Clear empties the transcript.
func (s *Store) Clear() {
	s.Replace(nil)
}

func (s *Store) index(id types.MessageID) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}
