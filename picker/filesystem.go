package picker

import (
	"context"
	"os"
	"path/filepath"

	"go.lsp.dev/uri"
)

// Stat describes one directory entry.
type Stat struct {
	Name        string
	Resource    uri.URI
	IsDirectory bool
}

// FileSystem lists the children of a directory resource. Kept narrow so
// tests can stub it without touching disk.
type FileSystem interface {
	Resolve(ctx context.Context, dir uri.URI) ([]Stat, error)
}

// OSFileSystem reads directories from the local disk.
type OSFileSystem struct{}

// Resolve lists dir via os.ReadDir.
func (OSFileSystem) Resolve(_ context.Context, dir uri.URI) ([]Stat, error) {
	path := dir.Filename()
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	stats := make([]Stat, 0, len(entries))
	for _, entry := range entries {
		stats = append(stats, Stat{
			Name:        entry.Name(),
			Resource:    uri.File(filepath.Join(path, entry.Name())),
			IsDirectory: entry.IsDir(),
		})
	}
	return stats, nil
}
