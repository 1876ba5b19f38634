package journal

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"
)

// Hook returns a modification notifier that records whether the
// repo-relative path still exists below root.
func (db *DB) Hook(fs afero.Fs, root string) func(ctx context.Context, repoPath string) error {
	return func(ctx context.Context, repoPath string) error {
		state := StateAbsent
		if ok, _ := afero.Exists(fs, filepath.Join(root, filepath.FromSlash(repoPath))); ok {
			state = StatePresent
		}
		return db.Record(ctx, Entry{Path: repoPath, State: state})
	}
}
