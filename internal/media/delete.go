package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/mediastore/internal/apperr"
	"github.com/starford/mediastore/internal/metrics"
)

// Delete removes the file or directory (recursively) at searchPath. The
// target must exist: a failed stat is reported as a failure, never as a
// silent success. On success the notifier is invoked once.
func (m *Model) Delete(ctx context.Context, searchPath string) MutationResult {
	repoPath, err := m.remove(searchPath)
	if err != nil {
		metrics.RecordDelete(false)
		m.logger.Warn("media: delete failed",
			slog.String("path", searchPath),
			slog.String("error", err.Error()))
		return MutationResult{OK: false, Message: err.Error()}
	}
	m.notifyModified(ctx, repoPath)
	metrics.RecordDelete(true)
	return MutationResult{OK: true}
}

// remove deletes the target and returns its repo-relative path.
func (m *Model) remove(searchPath string) (string, error) {
	res, err := m.paths.Resolve(searchPath)
	if err != nil {
		return "", err
	}
	if res.Abs == m.paths.MediaDir() {
		return "", apperr.ErrMediaRoot
	}
	if _, err := m.fs.Stat(res.Abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("media: %s: %w", res.RepoRel, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("media: stat %s: %w", res.RepoRel, err)
	}
	if err := m.fs.RemoveAll(res.Abs); err != nil {
		return "", fmt.Errorf("media: remove %s: %w", res.RepoRel, err)
	}
	return res.RepoRel, nil
}
