// Package testutil provides shared test helpers for building media trees and journals.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/mediastore/internal/journal"
	"github.com/starford/mediastore/internal/storage"
)

// MemRepo returns an in-memory filesystem holding an empty media folder at
// /repo/public/uploads.
func MemRepo(t *testing.T) (storage.PathConfig, afero.Fs) {
	t.Helper()
	cfg, err := storage.NewPathConfig("/repo", "public", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(cfg.MediaDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg, fs
}

// DiskRepo creates a temporary repository on disk with an empty media folder.
func DiskRepo(t *testing.T) (storage.PathConfig, afero.Fs) {
	t.Helper()
	cfg, err := storage.NewPathConfig(t.TempDir(), "public", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.MediaDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	fs, err := storage.OpenFS(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return cfg, fs
}

// WriteFile writes size bytes to rel (media-relative), creating parents.
func WriteFile(t *testing.T, fs afero.Fs, cfg storage.PathConfig, rel string, size int) {
	t.Helper()
	abs := filepath.Join(cfg.MediaDir(), filepath.FromSlash(rel))
	if err := fs.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, abs, bytes.Repeat([]byte("x"), size), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Mkdir creates rel (media-relative) and its parents.
func Mkdir(t *testing.T, fs afero.Fs, cfg storage.PathConfig, rel string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Join(cfg.MediaDir(), filepath.FromSlash(rel)), 0o755); err != nil {
		t.Fatal(err)
	}
}

// TestJournal opens a temporary journal database that is closed on cleanup.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mediastore-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
