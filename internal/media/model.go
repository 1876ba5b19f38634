// Package media implements listing, deletion and streaming upload of files
// under a repository's media folder.
package media

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/starford/mediastore/internal/metrics"
	"github.com/starford/mediastore/internal/storage"
)

const defaultStatWorkers = 8

// Notifier is called with the repo-relative path of every file or directory
// the Model has modified. It runs after the change is on disk; its error is
// logged and never reported to the caller of the mutation.
type Notifier func(ctx context.Context, repoPath string) error

// Chain returns a Notifier calling each non-nil notifier in order and
// joining their errors.
func Chain(notifiers ...Notifier) Notifier {
	return func(ctx context.Context, repoPath string) error {
		var errs []error
		for _, n := range notifiers {
			if n == nil {
				continue
			}
			if err := n(ctx, repoPath); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// Model owns all filesystem access for the media folder. It holds no state
// besides its configuration and is safe for concurrent use.
type Model struct {
	paths   storage.PathConfig
	fs      afero.Fs
	notify  Notifier
	logger  *slog.Logger
	workers int
}

// Option configures a Model.
type Option func(*Model)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(m *Model) {
		m.fs = fs
	}
}

// WithNotifier sets the modification hook.
func WithNotifier(n Notifier) Option {
	return func(m *Model) {
		m.notify = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithStatWorkers bounds how many entries are stat'ed concurrently while listing.
func WithStatWorkers(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.workers = n
		}
	}
}

// New creates a Model for the given repository layout.
func New(paths storage.PathConfig, opts ...Option) *Model {
	m := &Model{
		paths:   paths,
		fs:      afero.NewOsFs(),
		logger:  slog.Default(),
		workers: defaultStatWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Paths returns the repository layout the Model was built with.
func (m *Model) Paths() storage.PathConfig {
	return m.paths
}

// notifyModified runs the notifier once, isolating the caller from its
// errors and panics. The mutation has already committed, so the request
// context's cancellation is not propagated.
func (m *Model) notifyModified(ctx context.Context, repoPath string) {
	if m.notify == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordNotifyFailure()
			m.logger.Error("media: notifier panicked",
				slog.String("path", repoPath),
				slog.Any("panic", r))
		}
	}()
	if err := m.notify(context.WithoutCancel(ctx), repoPath); err != nil {
		metrics.RecordNotifyFailure()
		m.logger.Error("media: notifier failed",
			slog.String("path", repoPath),
			slog.String("error", err.Error()))
	}
}

// Exists reports whether searchPath names an existing file or directory
// inside the media folder.
func (m *Model) Exists(searchPath string) (bool, error) {
	res, err := m.paths.Resolve(searchPath)
	if err != nil {
		return false, err
	}
	return afero.Exists(m.fs, res.Abs)
}
