// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokenstore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithPath(filepath.Join(t.TempDir(), "tokens.json"))
	if err != nil {
		t.Fatalf("NewStoreWithPath: %v", err)
	}
	return s
}

func TestStore_StartsEmpty(t *testing.T) {
	s := newTestStore(t)
	if !s.Get().Empty() {
		t.Error("fresh store must be empty")
	}
	if s.Access() != "" {
		t.Error("access token must be empty before login")
	}
}

func TestStore_SaveAndReload(t *testing.T) {
	s := newTestStore(t)

	err := s.Save(Credentials{AccessToken: "acc-123", RefreshToken: "ref-456"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Access() != "acc-123" || s.Refresh() != "ref-456" {
		t.Error("in-memory credentials not updated")
	}
	if s.Get().ObtainedAt.IsZero() {
		t.Error("ObtainedAt must be stamped on save")
	}

	// A second store over the same file sees the persisted pair.
	reopened, err := NewStoreWithPath(s.Path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Access() != "acc-123" {
		t.Errorf("reopened access = %q", reopened.Access())
	}
}

func TestStore_FilePermissions(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Credentials{AccessToken: "acc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 0600", perm)
	}
}

func TestStore_SaveRecreatesPrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	s, err := NewStoreWithPath(filepath.Join(dir, "tokens.json"))
	if err != nil {
		t.Fatalf("NewStoreWithPath: %v", err)
	}

	// Something removed the directory out from under the store.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(Credentials{AccessToken: "acc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat dir: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("credential dir mode = %o, want owner-only access", perm)
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Credentials{AccessToken: "acc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Access() != "" {
		t.Error("access token survives Clear")
	}
	if _, err := os.Stat(s.Path); !os.IsNotExist(err) {
		t.Error("token file survives Clear")
	}

	// Clearing an already-clear store is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := NewStoreWithPath(path)
	if err != nil {
		t.Fatalf("NewStoreWithPath: %v", err)
	}
	if !s.Get().Empty() {
		t.Error("corrupt file must yield an empty store")
	}
}
