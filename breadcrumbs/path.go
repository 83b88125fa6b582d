package breadcrumbs

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/workspace"
)

// Trail is the path portion of the breadcrumb sequence.
type Trail struct {
	Elements []Element
	// WorkspaceRelative records whether the walk was truncated at a
	// workspace folder, which drives relative-path display.
	WorkspaceRelative bool
}

// PathTrail walks from the resource up to the innermost workspace folder
// containing it, or to the filesystem root when it lives outside every
// folder, and emits one FileElement per component in root-to-leaf order.
// The last element is the resource itself.
func PathTrail(resource uri.URI, folders *workspace.Folders) Trail {
	path := filepath.Clean(resource.Filename())

	base := ""
	trail := Trail{}
	if folder, ok := folders.Innermost(resource); ok {
		base = filepath.Clean(folder.URI.Filename())
		trail.WorkspaceRelative = true
		trail.Elements = append(trail.Elements, FileElement{URI: folder.URI})
		if base == path {
			return trail
		}
	}

	rel := path
	if base != "" {
		r, err := filepath.Rel(base, path)
		if err != nil {
			r = path
		}
		rel = r
	} else {
		rel = strings.TrimPrefix(path, string(filepath.Separator))
		base = string(filepath.Separator)
	}

	current := base
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		current = filepath.Join(current, part)
		trail.Elements = append(trail.Elements, FileElement{
			URI:    uri.File(current),
			IsFile: i == len(parts)-1,
		})
	}
	return trail
}
