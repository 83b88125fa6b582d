// Package breadcrumbs derives the navigation trail shown above an editor:
// the workspace-relative path of the active resource followed by the symbol
// chain enclosing the cursor.
package breadcrumbs

import (
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Element is one segment of the trail. The variants form a closed sum;
// consumers dispatch with an exhaustive type switch. Elements are built
// fresh on every rebuild and never mutated afterwards.
type Element interface {
	Label() string
	sealed()
}

// FileElement is a folder or file segment of the path portion.
type FileElement struct {
	URI    uri.URI
	IsFile bool
}

func (FileElement) sealed() {}

// Label returns the path component name.
func (e FileElement) Label() string {
	return filepath.Base(e.URI.Filename())
}

// GroupElement names the provider that contributed the following symbols.
// It only appears when several providers report outlines for one document.
type GroupElement struct {
	Provider    string
	DisplayName string
}

func (GroupElement) sealed() {}

// Label returns the provider display name.
func (e GroupElement) Label() string { return e.DisplayName }

// SymbolElement is one symbol segment of the outline portion.
type SymbolElement struct {
	ID             string
	Name           string
	Kind           protocol.SymbolKind
	Range          protocol.Range
	SelectionRange protocol.Range
}

func (SymbolElement) sealed() {}

// Label returns the symbol name.
func (e SymbolElement) Label() string { return e.Name }

// Equal compares two elements: files by URI, symbols by stable ID, groups
// by provider. Differing variants never compare equal.
func Equal(a, b Element) bool {
	switch av := a.(type) {
	case FileElement:
		bv, ok := b.(FileElement)
		return ok && av.URI == bv.URI
	case GroupElement:
		bv, ok := b.(GroupElement)
		return ok && av.Provider == bv.Provider
	case SymbolElement:
		bv, ok := b.(SymbolElement)
		return ok && av.ID == bv.ID
	default:
		return false
	}
}
