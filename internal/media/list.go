package media

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mediastore/internal/metrics"
)

// DefaultPageSize is used when the client sends no usable limit.
const DefaultPageSize = 20

// List returns one page of the immediate children of args.SearchPath,
// directories first. A missing directory yields an empty page. Filesystem
// failures never escape: they come back as a page carrying Error.
func (m *Model) List(ctx context.Context, args ListArgs) ListingPage {
	entries, err := m.entries(ctx, args.SearchPath)
	if err != nil {
		metrics.RecordListing(false)
		m.logger.Warn("media: list failed",
			slog.String("path", args.SearchPath),
			slog.String("error", err.Error()))
		return ListingPage{
			Directories: []string{},
			Files:       []Entry{},
			Error:       err.Error(),
		}
	}
	metrics.RecordListing(true)

	offset := numeric(args.Cursor)
	limit := numeric(args.Limit)
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return paginate(entries, offset, limit)
}

// entries reads and stats every child of searchPath and orders directories
// before files, keeping enumeration order within each group.
func (m *Model) entries(ctx context.Context, searchPath string) ([]Entry, error) {
	res, err := m.paths.Resolve(searchPath)
	if err != nil {
		return nil, err
	}
	exists, err := afero.Exists(m.fs, res.Abs)
	if err != nil {
		return nil, fmt.Errorf("media: stat %s: %w", res.RepoRel, err)
	}
	if !exists {
		return nil, nil
	}

	dir, err := m.fs.Open(res.Abs)
	if err != nil {
		return nil, fmt.Errorf("media: open %s: %w", res.RepoRel, err)
	}
	names, err := dir.Readdirnames(-1)
	_ = dir.Close()
	if err != nil {
		return nil, fmt.Errorf("media: read dir %s: %w", res.RepoRel, err)
	}
	names = slices.DeleteFunc(names, IsUploadTemp)

	entries := make([]Entry, len(names))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			info, err := m.fs.Stat(filepath.Join(res.Abs, name))
			if err != nil {
				return fmt.Errorf("media: stat %s: %w", name, err)
			}
			entries[i] = m.entry(res.Key, name, info)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case !a.IsFile && b.IsFile:
			return -1
		case a.IsFile && !b.IsFile:
			return 1
		}
		return 0
	})
	return entries, nil
}

// entry builds the listing record for one child. Directories get a bare
// "/name" for relative navigation; files get a public URL.
func (m *Model) entry(key, name string, info os.FileInfo) Entry {
	isFile := info.Mode().IsRegular()
	src := "/" + name
	if isFile {
		if key != "" {
			src = "/" + key + src
		}
		if prefix := m.paths.MediaURLPrefix(); prefix != "" {
			src = "/" + prefix + src
		}
	}
	return Entry{
		Src:      src,
		Filename: name,
		Size:     info.Size(),
		IsFile:   isFile,
	}
}

func paginate(all []Entry, offset, limit int) ListingPage {
	page := ListingPage{
		Directories: []string{},
		Files:       []Entry{},
	}
	start := min(offset, len(all))
	end := len(all)
	if limit < end-start {
		end = start + limit
	}
	for _, e := range all[start:end] {
		if e.IsFile {
			page.Files = append(page.Files, e)
		} else {
			page.Directories = append(page.Directories, e.Src)
		}
	}
	if end < len(all) {
		page.Cursor = strconv.Itoa(end)
	}
	return page
}

// numeric coerces a query value to a non-negative int; anything that is not
// a finite positive number becomes 0.
func numeric(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
