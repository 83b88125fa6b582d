package workspace

import (
	"path/filepath"
	"sort"
	"strings"

	"go.lsp.dev/uri"
)

// Folder is one root directory the editor treats as a workspace root.
type Folder struct {
	Name string
	URI  uri.URI
}

// Folders holds the ordered set of workspace roots.
type Folders struct {
	folders []Folder
}

// NewFolders builds a Folders set from local directory paths.
func NewFolders(paths ...string) *Folders {
	f := &Folders{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		f.folders = append(f.folders, Folder{
			Name: filepath.Base(abs),
			URI:  uri.File(abs),
		})
	}
	// Deepest roots first so Innermost finds the tightest containing folder.
	sort.SliceStable(f.folders, func(i, j int) bool {
		return len(f.folders[i].URI.Filename()) > len(f.folders[j].URI.Filename())
	})
	return f
}

// List returns the folders in lookup order.
func (f *Folders) List() []Folder {
	if f == nil {
		return nil
	}
	return f.folders
}

// Innermost returns the deepest workspace folder containing the resource.
func (f *Folders) Innermost(resource uri.URI) (Folder, bool) {
	if f == nil {
		return Folder{}, false
	}
	path := resource.Filename()
	for _, folder := range f.folders {
		if containsPath(folder.URI.Filename(), path) {
			return folder, true
		}
	}
	return Folder{}, false
}

// containsPath reports whether child lives under root (or is root itself).
func containsPath(root, child string) bool {
	root = filepath.Clean(root)
	child = filepath.Clean(child)
	if root == child {
		return true
	}
	rel, err := filepath.Rel(root, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
