package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/starford/mediastore/internal/apperr"
	"github.com/starford/mediastore/internal/checksum"
	"github.com/starford/mediastore/internal/metrics"
)

const uploadTempPrefix = ".media-upload-"

// ErrUploadAborted is returned by Close on a sink that was aborted.
var ErrUploadAborted = errors.New("media: upload aborted")

// IsUploadTemp reports whether a base name belongs to an upload in progress.
func IsUploadTemp(name string) bool {
	return strings.HasPrefix(name, uploadTempPrefix)
}

// Sink receives the bytes of one upload. Bytes go to a temporary file next
// to the target; Close publishes it under the target name and notifies,
// Abort discards it. Exactly one of the two takes effect.
type Sink struct {
	m      *Model
	ctx    context.Context
	file   afero.File
	cw     *checksum.Writer
	target string
	repo   string

	once sync.Once
	err  error
}

// UploadStream prepares a sink for searchPath, creating any missing parent
// directories. The caller copies the upload into the sink and must finish
// with Close or Abort.
func (m *Model) UploadStream(ctx context.Context, searchPath string) (*Sink, error) {
	res, err := m.paths.Resolve(searchPath)
	if err != nil {
		return nil, err
	}
	if res.Abs == m.paths.MediaDir() {
		return nil, apperr.ErrMediaRoot
	}
	dir := filepath.Dir(res.Abs)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: mkdir: %w", err)
	}
	tmp, err := afero.TempFile(m.fs, dir, uploadTempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("media: create temp: %w", err)
	}
	return &Sink{
		m:      m,
		ctx:    ctx,
		file:   tmp,
		cw:     checksum.NewWriter(tmp),
		target: res.Abs,
		repo:   res.RepoRel,
	}, nil
}

// Write appends p to the upload.
func (s *Sink) Write(p []byte) (int, error) {
	return s.cw.Write(p)
}

// Size returns the number of bytes received so far.
func (s *Sink) Size() int64 {
	return s.cw.Size()
}

// Digest returns the hex SHA-256 of the bytes received so far.
func (s *Sink) Digest() string {
	return s.cw.Sum()
}

// RepoPath returns the repo-relative path of the upload target.
func (s *Sink) RepoPath() string {
	return s.repo
}

// Close flushes the upload to disk, moves it into place and runs the
// notifier. Further calls return the first result.
func (s *Sink) Close() error {
	s.once.Do(func() {
		s.err = s.commit()
		metrics.RecordUpload(s.cw.Size(), s.err == nil)
	})
	return s.err
}

// Abort drops the upload. It is a no-op after Close.
func (s *Sink) Abort() {
	s.once.Do(func() {
		s.discard()
		s.err = ErrUploadAborted
		metrics.RecordUpload(s.cw.Size(), false)
	})
}

func (s *Sink) commit() error {
	tmpName := s.file.Name()
	if err := s.file.Sync(); err != nil {
		s.discard()
		return fmt.Errorf("media: fsync: %w", err)
	}
	if err := s.file.Close(); err != nil {
		_ = s.m.fs.Remove(tmpName)
		return fmt.Errorf("media: close temp: %w", err)
	}
	if err := s.m.fs.Chmod(tmpName, 0o644); err != nil {
		_ = s.m.fs.Remove(tmpName)
		return fmt.Errorf("media: chmod: %w", err)
	}
	if err := s.m.fs.Rename(tmpName, s.target); err != nil {
		_ = s.m.fs.Remove(tmpName)
		return fmt.Errorf("media: rename: %w", err)
	}
	s.m.notifyModified(s.ctx, s.repo)
	return nil
}

func (s *Sink) discard() {
	tmpName := s.file.Name()
	_ = s.file.Close()
	if err := s.m.fs.Remove(tmpName); err != nil {
		s.m.logger.Warn("media: remove temp failed",
			slog.String("path", tmpName),
			slog.String("error", err.Error()))
	}
}
