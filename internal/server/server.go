// Package server exposes the application shell over HTTP with gin. Chat
// turns stream back as server-sent events.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/attachment"
	"github.com/user/brainassist/internal/state"
	"github.com/user/brainassist/internal/stream"
)

const defaultKeepAlive = 15 * time.Second

type Server struct {
	shell     *app.Shell
	router    *gin.Engine
	origins   []string
	keepAlive time.Duration
}

type Option func(*Server)

// WithAllowedOrigins sets the CORS origins. Empty allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithKeepAlive sets the SSE comment interval.
func WithKeepAlive(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

func New(shell *app.Shell, opts ...Option) *Server {
	s := &Server{shell: shell, keepAlive: defaultKeepAlive}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.corsMiddleware())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/modes", s.listModes)
	api.GET("/state", s.getState)
	api.POST("/mode", s.switchMode)
	api.GET("/prompts", s.listPrompts)

	api.POST("/chat", s.chat)
	api.POST("/chat/new", s.newChat)
	api.POST("/chat/stop", s.stopChat)
	api.POST("/chat/retry/:id", s.retryChat)
	api.GET("/transcript", s.getTranscript)
	api.POST("/render", s.renderText)
	api.POST("/optimize", s.optimize)
	api.POST("/improve", s.improveCode)
	api.POST("/attachments", s.uploadAttachment)

	api.GET("/projects", s.listProjects)
	api.POST("/projects", s.createProject)
	api.POST("/projects/:id/open", s.openProject)
	api.DELETE("/projects/:id", s.deleteProject)

	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.updateProfile)

	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.POST("/tasks/:id/toggle", s.toggleTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.GET("/timetable", s.getTimetable)
	api.PUT("/timetable", s.putTimetable)

	api.GET("/study", s.getStudy)
	api.POST("/study/sessions", s.logStudy)
	api.POST("/study/grades", s.addGrade)

	api.GET("/notes", s.listNotes)
	api.POST("/notes", s.createNote)
	api.GET("/notes/:id/markdown", s.noteMarkdown)
	api.DELETE("/notes/:id", s.deleteNote)

	api.GET("/conversations", s.listConversations)
	api.POST("/conversations", s.saveConversation)
	api.POST("/conversations/:id/resume", s.resumeConversation)
	api.DELETE("/conversations/:id", s.deleteConversation)
	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cors.New(cfg)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		slog.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "healthy"})
}

// writeError maps sentinel errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, state.ErrNotFound), errors.Is(err, stream.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrInvalidProfile),
		errors.Is(err, app.ErrEmptyChat), errors.Is(err, stream.ErrNotRetryable),
		errors.Is(err, stream.ErrNoUserTurn):
		status = http.StatusBadRequest
	case errors.Is(err, attachment.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, attachment.ErrUnsupported):
		status = http.StatusUnsupportedMediaType
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
