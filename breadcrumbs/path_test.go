package breadcrumbs

import (
	"testing"

	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/workspace"
)

func TestPathTrailInsideWorkspaceStartsAtFolder(t *testing.T) {
	folders := workspace.NewFolders("/ws/project")
	trail := PathTrail(uri.File("/ws/project/src/main.go"), folders)

	if !trail.WorkspaceRelative {
		t.Fatal("expected workspace-relative trail")
	}
	if len(trail.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(trail.Elements))
	}
	first := trail.Elements[0].(FileElement)
	if first.URI != uri.File("/ws/project") || first.IsFile {
		t.Fatalf("first element should be the workspace folder: %+v", first)
	}
	last := trail.Elements[2].(FileElement)
	if !last.IsFile || last.Label() != "main.go" {
		t.Fatalf("last element should be the file: %+v", last)
	}
}

func TestPathTrailOutsideWorkspaceStartsAtRoot(t *testing.T) {
	folders := workspace.NewFolders("/ws/project")
	trail := PathTrail(uri.File("/tmp/scratch/notes.txt"), folders)

	if trail.WorkspaceRelative {
		t.Fatal("trail should not be workspace-relative")
	}
	if len(trail.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(trail.Elements))
	}
	if trail.Elements[0].(FileElement).URI != uri.File("/tmp") {
		t.Fatalf("first element should be /tmp: %+v", trail.Elements[0])
	}
	if !trail.Elements[2].(FileElement).IsFile {
		t.Fatal("leaf should be marked as a file")
	}
}

func TestPathTrailNestedFoldersPickInnermost(t *testing.T) {
	folders := workspace.NewFolders("/ws", "/ws/inner")
	trail := PathTrail(uri.File("/ws/inner/a.go"), folders)

	if trail.Elements[0].(FileElement).URI != uri.File("/ws/inner") {
		t.Fatalf("expected innermost folder first, got %+v", trail.Elements[0])
	}
	if len(trail.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(trail.Elements))
	}
}

func TestPathTrailFolderItself(t *testing.T) {
	folders := workspace.NewFolders("/ws/project")
	trail := PathTrail(uri.File("/ws/project"), folders)
	if len(trail.Elements) != 1 {
		t.Fatalf("expected just the folder, got %d elements", len(trail.Elements))
	}
}

func TestElementEquality(t *testing.T) {
	fileA := FileElement{URI: uri.File("/a"), IsFile: true}
	fileA2 := FileElement{URI: uri.File("/a")}
	fileB := FileElement{URI: uri.File("/b")}
	symX := SymbolElement{ID: "p/x#0", Name: "x"}
	symX2 := SymbolElement{ID: "p/x#0", Name: "renamed"}
	symY := SymbolElement{ID: "p/y#0", Name: "y"}

	if !Equal(fileA, fileA2) {
		t.Error("files compare by URI regardless of IsFile")
	}
	if Equal(fileA, fileB) {
		t.Error("different URIs must not be equal")
	}
	if !Equal(symX, symX2) {
		t.Error("symbols compare by stable id")
	}
	if Equal(symX, symY) || Equal(fileA, symX) {
		t.Error("distinct ids or variants must not be equal")
	}
}
