package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

// DirArchive writes objects below a local directory, keyed by relative path.
type DirArchive struct {
	root string
}

// NewDirArchive roots the archive at dir.
func NewDirArchive(dir string) *DirArchive {
	return &DirArchive{root: dir}
}

// Put writes data to root/key and returns the file path.
func (a *DirArchive) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive key %q escapes root", key)
	}
	path := filepath.Join(a.root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return path, nil
}

var _ outlook.CurveArchive = (*DirArchive)(nil)
