package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	ctxengine "github.com/user/brainassist/internal/context"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
)

// Projects

func (s *Shell) Projects(ctx context.Context) ([]types.Project, error) {
	return s.projects.List(ctx)
}

func (s *Shell) Project(ctx context.Context, id types.ProjectID) (types.Project, error) {
	return s.projects.Get(ctx, id)
}

// SaveProject stores a project whose prompt is the mode's starter prompt.
// The new project goes first.
func (s *Shell) SaveProject(ctx context.Context, title, description string, mode types.ChatMode) (types.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Project{}, fmt.Errorf("%w: project title is required", ErrInvalidInput)
	}
	m, err := modes.Parse(string(mode))
	if err != nil {
		return types.Project{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p := types.Project{
		ID:          types.NewProjectID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Mode:        m,
		Prompt:      modes.StarterPrompt(m, title, strings.TrimSpace(description)),
		CreatedAt:   s.now(),
	}
	if _, err := s.projects.Add(ctx, p); err != nil {
		return types.Project{}, err
	}
	slog.Info("project saved", "project", string(p.ID), "mode", string(m))
	return p, nil
}

// OpenProject starts a fresh chat in the project's mode and sends its
// prompt as the first turn.
func (s *Shell) OpenProject(ctx context.Context, id types.ProjectID) (stream.Outcome, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return stream.Outcome{}, err
	}
	if err := s.SwitchMode(ctx, p.Mode); err != nil {
		return stream.Outcome{}, err
	}
	return s.Send(ctx, p.Prompt, nil)
}

func (s *Shell) DeleteProject(ctx context.Context, id types.ProjectID) ([]types.Project, error) {
	return s.projects.Delete(ctx, id)
}

// Profile

func (s *Shell) Profile(ctx context.Context) (types.UserProfile, error) {
	return s.profile.Load(ctx)
}

// UpdateProfile requires a non-blank name and a known avatar. The change
// reaches the model from the next session on.
func (s *Shell) UpdateProfile(ctx context.Context, name, bio, avatar string) (types.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.UserProfile{}, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if !modes.ValidAvatar(avatar) {
		return types.UserProfile{}, fmt.Errorf("%w: unknown avatar %q", ErrInvalidProfile, avatar)
	}
	return s.profile.Update(ctx, name, strings.TrimSpace(bio), avatar)
}

// Planning

func (s *Shell) Tasks(ctx context.Context) ([]types.Task, error) {
	return s.planning.Tasks(ctx)
}

// AddTask appends a task. An empty priority means medium.
func (s *Shell) AddTask(ctx context.Context, title, comment, due string, priority types.Priority) (types.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Task{}, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	switch priority {
	case "":
		priority = types.PriorityMedium
	case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
	default:
		return types.Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}
	t := types.Task{
		ID:       types.NewTaskID(),
		Title:    title,
		Comment:  strings.TrimSpace(comment),
		DueDate:  strings.TrimSpace(due),
		Priority: priority,
	}
	if _, err := s.planning.AddTask(ctx, t); err != nil {
		return types.Task{}, err
	}
	return t, nil
}

func (s *Shell) ToggleTask(ctx context.Context, id types.TaskID) ([]types.Task, error) {
	return s.planning.ToggleTask(ctx, id)
}

func (s *Shell) RemoveTask(ctx context.Context, id types.TaskID) ([]types.Task, error) {
	return s.planning.RemoveTask(ctx, id)
}

func (s *Shell) Timetable(ctx context.Context) (types.Timetable, error) {
	return s.planning.Timetable(ctx)
}

func (s *Shell) SetTimetable(ctx context.Context, content string) error {
	return s.planning.SetTimetable(ctx, types.Timetable{Content: content})
}

// Study

// StudyData is everything analytics mode summarizes.
type StudyData struct {
	Sessions []types.StudySession `json:"sessions"`
	Grades   []types.SubjectGrade `json:"grades"`
}

// LogStudy records a study session. A zero date means now.
func (s *Shell) LogStudy(ctx context.Context, subject string, minutes int, date time.Time) (types.StudySession, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || minutes <= 0 {
		return types.StudySession{}, fmt.Errorf("%w: subject and a positive duration are required", ErrInvalidInput)
	}
	if date.IsZero() {
		date = s.now()
	}
	sess := types.StudySession{ID: types.NewStudySessionID(), Subject: subject, DurationMinutes: minutes, Date: date}
	if _, err := s.study.LogSession(ctx, sess); err != nil {
		return types.StudySession{}, err
	}
	return sess, nil
}

// AddGrade records a grade out of maxGrade. A zero date means now.
func (s *Shell) AddGrade(ctx context.Context, subject string, grade, maxGrade float64, date time.Time) (types.SubjectGrade, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || maxGrade <= 0 || grade < 0 || grade > maxGrade {
		return types.SubjectGrade{}, fmt.Errorf("%w: need a subject and 0 <= grade <= max", ErrInvalidInput)
	}
	if date.IsZero() {
		date = s.now()
	}
	g := types.SubjectGrade{ID: types.NewGradeID(), Subject: subject, Grade: grade, MaxGrade: maxGrade, Date: date}
	if _, err := s.study.AddGrade(ctx, g); err != nil {
		return types.SubjectGrade{}, err
	}
	return g, nil
}

func (s *Shell) StudyData(ctx context.Context) (StudyData, error) {
	sessions, err := s.study.Sessions(ctx)
	if err != nil {
		return StudyData{}, err
	}
	grades, err := s.study.Grades(ctx)
	if err != nil {
		return StudyData{}, err
	}
	return StudyData{Sessions: sessions, Grades: grades}, nil
}

// Notes

func (s *Shell) Notes(ctx context.Context) ([]types.Note, error) {
	return s.notes.List(ctx)
}

func (s *Shell) Note(ctx context.Context, id types.NoteID) (types.Note, error) {
	return s.notes.Get(ctx, id)
}

// SaveNote creates a note and tags it with the model.
func (s *Shell) SaveNote(ctx context.Context, title, html string) (types.Note, error) {
	now := s.now()
	return s.putNote(ctx, types.Note{ID: types.NewNoteID(), Title: strings.TrimSpace(title), Content: html, CreatedAt: now, UpdatedAt: now})
}

// UpdateNote rewrites a note in place and re-tags it.
func (s *Shell) UpdateNote(ctx context.Context, id types.NoteID, title, html string) (types.Note, error) {
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return types.Note{}, err
	}
	n.Title = strings.TrimSpace(title)
	n.Content = html
	n.UpdatedAt = s.now()
	return s.putNote(ctx, n)
}

func (s *Shell) putNote(ctx context.Context, n types.Note) (types.Note, error) {
	if n.Title == "" {
		n.Title = "Sans titre"
	}
	n.Tags = s.tags(ctx, noteText(n.Content))
	if _, err := s.notes.Save(ctx, n); err != nil {
		return types.Note{}, err
	}
	return n, nil
}

// NoteMarkdown converts a note's HTML body to markdown.
func (s *Shell) NoteMarkdown(ctx context.Context, id types.NoteID) (string, error) {
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(n.Content)
	if err != nil {
		return "", fmt.Errorf("convert note %s: %w", id, err)
	}
	return md, nil
}

func (s *Shell) DeleteNote(ctx context.Context, id types.NoteID) ([]types.Note, error) {
	return s.notes.Delete(ctx, id)
}

// noteText is the visible text of an HTML note, falling back to the raw
// markup if it cannot be converted.
func noteText(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return html
	}
	return md
}

// tags asks the flash model for 3 to 5 keywords. Short content, a missing
// provider and any failure all give no tags.
func (s *Shell) tags(ctx context.Context, content string) []string {
	if s.provider == nil || utf8.RuneCountInString(strings.TrimSpace(content)) < minTagContent {
		return []string{}
	}
	prompt, err := ctxengine.RenderTags(content)
	if err != nil {
		return []string{}
	}
	out, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Model:            modes.ModelFlash,
		Prompt:           prompt,
		Temperature:      tagTemperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		slog.Warn("tag generation failed", "error", err)
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &tags); err != nil {
		slog.Warn("tag generation returned invalid JSON", "error", err)
		return []string{}
	}
	return tags
}

// Conversations

func (s *Shell) Conversations(ctx context.Context) ([]types.Conversation, error) {
	return s.conversations.List(ctx)
}

// SaveConversation stores the current transcript. Saving again after a save
// or resume updates the same entry. A blank title becomes the first user
// message, cut to 40 characters.
func (s *Shell) SaveConversation(ctx context.Context, title string) (types.Conversation, error) {
	msgs := s.transcript.Snapshot()
	if len(msgs) == 0 {
		return types.Conversation{}, ErrEmptyChat
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle(msgs)
	}

	s.mu.RLock()
	id, mode := s.conversation, s.mode
	s.mu.RUnlock()

	now := s.now()
	c := types.Conversation{ID: id, Title: title, Mode: mode, Messages: msgs, CreatedAt: now, UpdatedAt: now}
	if id != "" {
		if prev, err := s.conversations.Get(ctx, id); err == nil {
			c.CreatedAt = prev.CreatedAt
		}
	} else {
		c.ID = types.NewConversationID()
	}
	if _, err := s.conversations.Save(ctx, c); err != nil {
		return types.Conversation{}, err
	}

	s.mu.Lock()
	s.conversation = c.ID
	s.mu.Unlock()
	slog.Info("conversation saved", "conversation", string(c.ID), "messages", len(msgs))
	return c, nil
}

func defaultTitle(msgs []types.Message) string {
	for _, m := range msgs {
		if m.Role != types.RoleUser || strings.TrimSpace(m.Text) == "" {
			continue
		}
		t := strings.Join(strings.Fields(m.Text), " ")
		if utf8.RuneCountInString(t) > titleLength {
			t = string([]rune(t)[:titleLength])
		}
		return t
	}
	return "Conversation"
}

// ResumeConversation restores a saved transcript and replays it into a new
// session in the saved mode.
func (s *Shell) ResumeConversation(ctx context.Context, id types.ConversationID) (types.Conversation, error) {
	c, err := s.conversations.Get(ctx, id)
	if err != nil {
		return types.Conversation{}, err
	}
	mode, err := modes.Parse(string(c.Mode))
	if err != nil {
		return types.Conversation{}, fmt.Errorf("conversation %s: %w", id, err)
	}
	if err := s.controller.StopAndWait(ctx); err != nil {
		return types.Conversation{}, err
	}

	s.mu.Lock()
	s.mode = mode
	s.conversation = c.ID
	s.mu.Unlock()

	s.transcript.Replace(c.Messages)
	s.controller.Forget()
	s.hub.OnReset()
	if err := s.resetSession(ctx, mode, c.Messages); err != nil {
		return types.Conversation{}, err
	}
	return c, nil
}

func (s *Shell) DeleteConversation(ctx context.Context, id types.ConversationID) ([]types.Conversation, error) {
	list, err := s.conversations.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.conversation == id {
		s.conversation = ""
	}
	s.mu.Unlock()
	return list, nil
}
