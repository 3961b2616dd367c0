package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/brainassist/internal/attachment"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/render"
	"github.com/user/brainassist/internal/types"
)

func (s *Server) listModes(c *gin.Context) {
	out := make([]modes.Profile, 0, len(modes.All()))
	for _, m := range modes.All() {
		out = append(out, modes.Resolve(m))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "modes": out})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"mode":        s.shell.Mode(),
		"state":       s.shell.State(),
		"busy":        s.shell.Busy(),
		"options":     s.shell.Options(),
		"suggestions": s.shell.Suggestions(),
	})
}

type modeRequest struct {
	Mode    string         `json:"mode" binding:"required"`
	Options *modes.Options `json:"options"`
}

func (s *Server) switchMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if err := s.shell.SwitchMode(c.Request.Context(), types.ChatMode(req.Mode)); err != nil {
		writeError(c, err)
		return
	}
	if req.Options != nil {
		s.shell.SetOptions(*req.Options)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mode": s.shell.Mode(), "suggestions": s.shell.Suggestions()})
}

func (s *Server) listPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "prompts": s.shell.RecommendedPrompts()})
}

func (s *Server) newChat(c *gin.Context) {
	if err := s.shell.NewChat(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mode": s.shell.Mode()})
}

func (s *Server) stopChat(c *gin.Context) {
	s.shell.Stop()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) getTranscript(c *gin.Context) {
	msgs := s.shell.Transcript()
	body := gin.H{"ok": true, "messages": msgs}
	if c.Query("render") == "1" {
		blocks := make([][]render.Block, len(msgs))
		for i, m := range msgs {
			blocks[i] = render.RenderMessage(m)
		}
		body["blocks"] = blocks
	}
	c.JSON(http.StatusOK, body)
}

type renderRequest struct {
	Text string `json:"text"`
	Role string `json:"role"`
}

func (s *Server) renderText(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	role := types.RoleModel
	if req.Role == string(types.RoleUser) {
		role = types.RoleUser
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "blocks": render.RenderMessage(types.Message{Role: role, Text: req.Text})})
}

type optimizeRequest struct {
	Draft string `json:"draft"`
}

func (s *Server) optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "prompt": s.shell.OptimizePrompt(c.Request.Context(), req.Draft)})
}

func (s *Server) uploadAttachment(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing file")
		return
	}
	if fh.Size > attachment.MaxSize {
		writeError(c, attachment.ErrTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	att, err := attachment.FromReader(fh.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "attachment": att})
}

// Projects

func (s *Server) listProjects(c *gin.Context) {
	list, err := s.shell.Projects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": list})
}

type projectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Mode        string `json:"mode" binding:"required"`
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := s.shell.SaveProject(c.Request.Context(), req.Title, req.Description, types.ChatMode(req.Mode))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (s *Server) deleteProject(c *gin.Context) {
	list, err := s.shell.DeleteProject(c.Request.Context(), types.ProjectID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": list})
}

// Profile

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.shell.Profile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p, "avatars": modes.Avatars})
}

type profileRequest struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	AvatarID string `json:"avatar_id"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := s.shell.UpdateProfile(c.Request.Context(), req.Name, req.Bio, req.AvatarID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p})
}

// Planning

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.shell.Tasks(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

type taskRequest struct {
	Title    string         `json:"title"`
	Comment  string         `json:"comment"`
	DueDate  string         `json:"due_date"`
	Priority types.Priority `json:"priority"`
}

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t, err := s.shell.AddTask(c.Request.Context(), req.Title, req.Comment, req.DueDate, req.Priority)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": t})
}

func (s *Server) toggleTask(c *gin.Context) {
	tasks, err := s.shell.ToggleTask(c.Request.Context(), types.TaskID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

func (s *Server) deleteTask(c *gin.Context) {
	tasks, err := s.shell.RemoveTask(c.Request.Context(), types.TaskID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

func (s *Server) getTimetable(c *gin.Context) {
	tt, err := s.shell.Timetable(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "timetable": tt})
}

func (s *Server) putTimetable(c *gin.Context) {
	var req types.Timetable
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if err := s.shell.SetTimetable(c.Request.Context(), req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "timetable": req})
}

// Study

func (s *Server) getStudy(c *gin.Context) {
	data, err := s.shell.StudyData(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sessions": data.Sessions, "grades": data.Grades})
}

type studyRequest struct {
	Subject         string    `json:"subject"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            time.Time `json:"date"`
}

func (s *Server) logStudy(c *gin.Context) {
	var req studyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sess, err := s.shell.LogStudy(c.Request.Context(), req.Subject, req.DurationMinutes, req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": sess})
}

type gradeRequest struct {
	Subject  string    `json:"subject"`
	Grade    float64   `json:"grade"`
	MaxGrade float64   `json:"max_grade"`
	Date     time.Time `json:"date"`
}

func (s *Server) addGrade(c *gin.Context) {
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	g, err := s.shell.AddGrade(c.Request.Context(), req.Subject, req.Grade, req.MaxGrade, req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "grade": g})
}

// Notes

func (s *Server) listNotes(c *gin.Context) {
	notes, err := s.shell.Notes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notes": notes})
}

type noteRequest struct {
	ID      types.NoteID `json:"id"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
}

// createNote upserts: a request carrying an id updates that note.
func (s *Server) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	if req.ID != "" {
		n, err := s.shell.UpdateNote(ctx, req.ID, req.Title, req.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "note": n})
		return
	}
	n, err := s.shell.SaveNote(ctx, req.Title, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "note": n})
}

func (s *Server) noteMarkdown(c *gin.Context) {
	md, err := s.shell.NoteMarkdown(c.Request.Context(), types.NoteID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (s *Server) deleteNote(c *gin.Context) {
	notes, err := s.shell.DeleteNote(c.Request.Context(), types.NoteID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notes": notes})
}

// Conversations

func (s *Server) listConversations(c *gin.Context) {
	list, err := s.shell.Conversations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "conversations": list})
}

type conversationRequest struct {
	Title string `json:"title"`
}

func (s *Server) saveConversation(c *gin.Context) {
	var req conversationRequest
	// an empty body means the default title
	_ = c.ShouldBindJSON(&req)
	conv, err := s.shell.SaveConversation(c.Request.Context(), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "conversation": conv})
}

func (s *Server) resumeConversation(c *gin.Context) {
	conv, err := s.shell.ResumeConversation(c.Request.Context(), types.ConversationID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "conversation": conv, "mode": s.shell.Mode()})
}

func (s *Server) deleteConversation(c *gin.Context) {
	list, err := s.shell.DeleteConversation(c.Request.Context(), types.ConversationID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "conversations": list})
}
