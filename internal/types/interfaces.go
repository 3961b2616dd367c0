// internal/types/interfaces.go
package types

import (
	"context"
)

// KV is the external key-value store that holds JSON-encoded state.
// Get reports found=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type ProjectStore interface {
	List(ctx context.Context) ([]Project, error)
	Add(ctx context.Context, p Project) ([]Project, error)
	Delete(ctx context.Context, id ProjectID) ([]Project, error)
}

type ProfileStore interface {
	Load(ctx context.Context) (UserProfile, error)
	Save(ctx context.Context, p UserProfile) error
}
