// Package storage maps media-relative paths onto a repository layout on disk.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/mediastore/internal/apperr"
)

// PathConfig describes where the media folder lives inside a repository.
// It is built once at startup and never mutated.
type PathConfig struct {
	// RootPath is the absolute path to the root of the repository.
	RootPath string
	// PublicFolder is the folder of static files, relative to RootPath.
	PublicFolder string
	// MediaRoot is the media folder, relative to PublicFolder.
	MediaRoot string
}

// Resolved is the result of resolving a media-relative path.
type Resolved struct {
	// Abs is the absolute filesystem path.
	Abs string
	// RepoRel is the slash-separated path relative to the repository root,
	// as handed to version-control collaborators.
	RepoRel string
	// Key is the search path without its leading and trailing slash.
	Key string
}

// NewPathConfig cleans the three segments and makes root absolute.
// public and media must be relative and must not climb out of root.
func NewPathConfig(root, public, media string) (PathConfig, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return PathConfig{}, fmt.Errorf("storage: resolve root: %w", err)
	}
	for _, seg := range []string{public, media} {
		if filepath.IsAbs(seg) {
			return PathConfig{}, fmt.Errorf("storage: absolute segment not allowed: %s", seg)
		}
		cleaned := filepath.Clean(seg)
		if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
			return PathConfig{}, fmt.Errorf("storage: segment %q: %w", seg, apperr.ErrOutsideRoot)
		}
	}
	return PathConfig{
		RootPath:     abs,
		PublicFolder: cleanSegment(public),
		MediaRoot:    cleanSegment(media),
	}, nil
}

func cleanSegment(seg string) string {
	c := filepath.Clean(seg)
	if c == "." {
		return ""
	}
	return c
}

// MediaDir returns the absolute path of the media folder.
func (c PathConfig) MediaDir() string {
	return filepath.Join(c.RootPath, c.PublicFolder, c.MediaRoot)
}

// MediaURLPrefix returns the media root as a URL segment without slashes,
// or "" when the media folder is the public folder itself.
func (c PathConfig) MediaURLPrefix() string {
	return strings.Trim(filepath.ToSlash(c.MediaRoot), "/")
}

// Resolve joins searchPath onto the media folder. The result must stay
// inside the media folder; anything else fails with apperr.ErrOutsideRoot.
func (c PathConfig) Resolve(searchPath string) (Resolved, error) {
	mediaDir := c.MediaDir()
	abs := filepath.Join(mediaDir, filepath.FromSlash(searchPath))
	if !Contains(mediaDir, abs) {
		return Resolved{}, fmt.Errorf("storage: %q: %w", searchPath, apperr.ErrOutsideRoot)
	}
	return Resolved{
		Abs:     abs,
		RepoRel: path.Join(filepath.ToSlash(c.PublicFolder), filepath.ToSlash(c.MediaRoot), searchPath),
		Key:     SearchKey(searchPath),
	}, nil
}

// Rel returns the repo-relative path of an absolute path under the media folder.
func (c PathConfig) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(c.RootPath, abs)
	if err != nil {
		return "", fmt.Errorf("storage: rel: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// SearchKey strips one leading and one trailing slash.
func SearchKey(searchPath string) string {
	s := strings.TrimPrefix(searchPath, "/")
	return strings.TrimSuffix(s, "/")
}

// Contains reports whether p is dir or lies below it. Both must be clean.
func Contains(dir, p string) bool {
	if p == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(os.PathSeparator)) {
		dir += string(os.PathSeparator)
	}
	return strings.HasPrefix(p, dir)
}
