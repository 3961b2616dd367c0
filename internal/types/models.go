// internal/types/models.go
package types

import (
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMode is one of the ten fixed assistant personas.
type ChatMode string

const (
	ModeLearning     ChatMode = "learning"
	ModeSupport      ChatMode = "support"
	ModeMusic        ChatMode = "music"
	ModeOrganization ChatMode = "organization"
	ModeDeepResearch ChatMode = "deep_research"
	ModeAnalytics    ChatMode = "analytics"
	ModePolyglot     ChatMode = "polyglot"
	ModeGames        ChatMode = "games"
	ModeChatPDF      ChatMode = "chatpdf"
	ModeNotes        ChatMode = "notes"
)

type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64, optionally data-URL prefixed
}

type Message struct {
	ID          MessageID    `json:"id"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	IsError     bool         `json:"is_error,omitempty"`
	IsRetryable bool         `json:"is_retryable,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Clone returns a deep copy so callers never share a transcript entry.
func (m *Message) Clone() Message {
	out := *m
	if m.Attachments != nil {
		out.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	return out
}

type Project struct {
	ID          ProjectID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mode        ChatMode  `json:"mode"`
	Prompt      string    `json:"prompt"`
	CreatedAt   time.Time `json:"created_at"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Task struct {
	ID          TaskID   `json:"id"`
	Title       string   `json:"title"`
	Comment     string   `json:"comment,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	Priority    Priority `json:"priority"`
	IsCompleted bool     `json:"is_completed"`
}

type Timetable struct {
	Content string `json:"content"`
}

type ProfileSnapshot struct {
	Name     string    `json:"name"`
	AvatarID string    `json:"avatar_id"`
	Bio      string    `json:"bio"`
	SavedAt  time.Time `json:"saved_at"`
}

type UserProfile struct {
	Name      string            `json:"name"`
	AvatarID  string            `json:"avatar_id"`
	Bio       string            `json:"bio"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	History   []ProfileSnapshot `json:"history,omitempty"`
}

type StudySession struct {
	ID              StudySessionID `json:"id"`
	Subject         string         `json:"subject"`
	DurationMinutes int            `json:"duration_minutes"`
	Date            time.Time      `json:"date"`
}

type SubjectGrade struct {
	ID       GradeID   `json:"id"`
	Subject  string    `json:"subject"`
	Grade    float64   `json:"grade"`
	MaxGrade float64   `json:"max_grade"`
	Date     time.Time `json:"date"`
}

type Note struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"` // HTML
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []string  `json:"tags"`
}

// Conversation is a saved transcript that can be replayed into a new session.
type Conversation struct {
	ID        ConversationID `json:"id"`
	Title     string         `json:"title"`
	Mode      ChatMode       `json:"mode"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type RecommendedPrompt struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}
