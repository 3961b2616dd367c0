package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/user/brainassist/internal/types"
)

// ErrNotFound is returned when an item ID is not in its list.
var ErrNotFound = errors.New("not found")

// DefaultPrefix namespaces every key.
const DefaultPrefix = "brainassist_"

type prefixed struct {
	kv     types.KV
	prefix string
}

// WithPrefix returns a KV that prepends prefix to every key.
func WithPrefix(kv types.KV, prefix string) types.KV {
	return &prefixed{kv: kv, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}

// load decodes key into a T. A missing key yields def; a corrupt value is
// logged and also yields def.
func load[T any](ctx context.Context, kv types.KV, key string, def T) (T, error) {
	data, found, err := kv.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("corrupt stored value, using default", "key", key, "error", err)
		return def, nil
	}
	return v, nil
}

func save(ctx context.Context, kv types.KV, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}
