// Package state persists app data as JSON values in a key-value store.
// Two backends are provided: one file per key on disk, and Redis.
package state

import "github.com/user/brainassist/internal/types"

// Compile-time interface compliance checks.
var _ types.KV = (*FileKV)(nil)
var _ types.KV = (*RedisKV)(nil)
var _ types.KV = (*prefixed)(nil)
var _ types.ProjectStore = (*ProjectStore)(nil)
var _ types.ProfileStore = (*ProfileStore)(nil)
