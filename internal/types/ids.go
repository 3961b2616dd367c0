// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type MessageID string
type ProjectID string
type TaskID string
type NoteID string
type StudySessionID string
type GradeID string
type ConversationID string
type HandleID string

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

func NewNoteID() NoteID {
	return NoteID(uuid.New().String())
}

func NewStudySessionID() StudySessionID {
	return StudySessionID(uuid.New().String())
}

func NewGradeID() GradeID {
	return GradeID(uuid.New().String())
}

func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

func NewHandleID() HandleID {
	return HandleID(uuid.New().String())
}
