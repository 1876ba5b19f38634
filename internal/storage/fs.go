package storage

import (
	"fmt"

	"github.com/spf13/afero"
)

// OpenFS returns the OS filesystem after checking that the repository root
// exists and is a directory.
func OpenFS(cfg PathConfig) (afero.Fs, error) {
	fs := afero.NewOsFs()
	info, err := fs.Stat(cfg.RootPath)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", cfg.RootPath)
	}
	return fs, nil
}
