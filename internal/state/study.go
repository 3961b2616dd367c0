package state

import (
	"context"
	"sync"

	"github.com/user/brainassist/internal/types"
)

const (
	studySessionsKey = "study_sessions"
	gradesKey        = "grades"
)

// StudyStore records study sessions and grades for analytics.
type StudyStore struct {
	kv types.KV
	mu sync.Mutex
}

func NewStudyStore(kv types.KV) *StudyStore {
	return &StudyStore{kv: kv}
}

func (s *StudyStore) Sessions(ctx context.Context) ([]types.StudySession, error) {
	return load(ctx, s.kv, studySessionsKey, []types.StudySession{})
}

func (s *StudyStore) Grades(ctx context.Context) ([]types.SubjectGrade, error) {
	return load(ctx, s.kv, gradesKey, []types.SubjectGrade{})
}

func (s *StudyStore) LogSession(ctx context.Context, sess types.StudySession) ([]types.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	sessions = append(sessions, sess)
	if err := save(ctx, s.kv, studySessionsKey, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *StudyStore) AddGrade(ctx context.Context, g types.SubjectGrade) ([]types.SubjectGrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grades, err := s.Grades(ctx)
	if err != nil {
		return nil, err
	}
	grades = append(grades, g)
	if err := save(ctx, s.kv, gradesKey, grades); err != nil {
		return nil, err
	}
	return grades, nil
}
