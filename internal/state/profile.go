package state

import (
	"context"
	"sync"
	"time"

	"github.com/user/brainassist/internal/types"
)

const profileKey = "profile"

// MaxSnapshots is how many previous profile versions are kept.
const MaxSnapshots = 10

// Profile defaults for a first launch.
const (
	DefaultName   = "Étudiant"
	DefaultAvatar = "student"
	DefaultBio    = "Un étudiant motivé."
)

// ProfileStore holds the single user profile.
type ProfileStore struct {
	kv  types.KV
	mu  sync.Mutex
	now func() time.Time
}

func NewProfileStore(kv types.KV) *ProfileStore {
	return &ProfileStore{kv: kv, now: time.Now}
}

// DefaultProfile is the profile used before the user edits anything.
func DefaultProfile(now time.Time) types.UserProfile {
	return types.UserProfile{
		Name:      DefaultName,
		AvatarID:  DefaultAvatar,
		Bio:       DefaultBio,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Load returns the stored profile, or the default one.
func (s *ProfileStore) Load(ctx context.Context) (types.UserProfile, error) {
	return load(ctx, s.kv, profileKey, DefaultProfile(s.now()))
}

// Save overwrites the stored profile.
func (s *ProfileStore) Save(ctx context.Context, p types.UserProfile) error {
	return save(ctx, s.kv, profileKey, p)
}

// Update applies new values, pushing the previous version onto History.
func (s *ProfileStore) Update(ctx context.Context, name, bio, avatar string) (types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Load(ctx)
	if err != nil {
		return types.UserProfile{}, err
	}
	now := s.now()
	snap := types.ProfileSnapshot{Name: p.Name, AvatarID: p.AvatarID, Bio: p.Bio, SavedAt: now}
	p.History = append([]types.ProfileSnapshot{snap}, p.History...)
	if len(p.History) > MaxSnapshots {
		p.History = p.History[:MaxSnapshots]
	}

	p.Name = name
	p.Bio = bio
	p.AvatarID = avatar
	p.UpdatedAt = now
	if err := s.Save(ctx, p); err != nil {
		return types.UserProfile{}, err
	}
	return p, nil
}
