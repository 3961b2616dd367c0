// internal/state/file_test.go
package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/brainassist/internal/types"
)

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(filepath.Join(dir, "state"))
	ctx := context.Background()

	// Missing key
	if _, found, err := kv.Get(ctx, "projects"); err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}

	if err := kv.Set(ctx, "projects", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	data, found, err := kv.Get(ctx, "projects")
	if err != nil || !found {
		t.Fatalf("expected value, got found=%v err=%v", found, err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}

	// No temp file left behind
	if _, err := os.Stat(filepath.Join(dir, "state", "projects.json.tmp")); !os.IsNotExist(err) {
		t.Error("expected temp file to be renamed away")
	}

	if err := kv.Delete(ctx, "projects"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := kv.Get(ctx, "projects"); found {
		t.Error("expected key deleted")
	}
	if err := kv.Delete(ctx, "projects"); err != nil {
		t.Errorf("expected deleting a missing key to succeed, got %v", err)
	}
}

func TestFileKVRejectsPaths(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		if err := kv.Set(ctx, key, []byte("x")); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestPrefixedKeys(t *testing.T) {
	dir := t.TempDir()
	kv := WithPrefix(NewFileKV(dir), DefaultPrefix)
	ctx := context.Background()

	if err := kv.Set(ctx, "notes", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "brainassist_notes.json")); err != nil {
		t.Errorf("expected prefixed file: %v", err)
	}
}

func TestCorruptValueFallsBack(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	ctx := context.Background()
	if err := kv.Set(ctx, "projects", []byte(`{not json`)); err != nil {
		t.Fatal(err)
	}

	projects, err := NewProjectStore(kv).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("expected empty list, got %d", len(projects))
	}

	if err := kv.Set(ctx, "profile", []byte(`"oops"`)); err != nil {
		t.Fatal(err)
	}
	p, err := NewProfileStore(kv).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != DefaultName || p.AvatarID != DefaultAvatar {
		t.Errorf("expected default profile, got %+v", p)
	}
}

func TestFileKVSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := NewProjectStore(NewFileKV(dir))
	if _, err := store.Add(ctx, types.Project{ID: "p1", Title: "Bac de maths"}); err != nil {
		t.Fatal(err)
	}

	reopened := NewProjectStore(NewFileKV(dir))
	projects, err := reopened.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].Title != "Bac de maths" {
		t.Errorf("unexpected projects after reopen: %+v", projects)
	}
}
