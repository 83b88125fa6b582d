// Package outline models the symbol tree a language service reports for a
// document and answers containment queries against it.
package outline

import (
	"fmt"
	"sync"

	"github.com/sahilm/fuzzy"
	"go.lsp.dev/protocol"
)

// Symbol is one node in the outline tree.
type Symbol struct {
	ID             string
	Name           string
	Detail         string
	Kind           protocol.SymbolKind
	Range          protocol.Range
	SelectionRange protocol.Range
	Children       []*Symbol
}

// Group is the set of root symbols one provider contributed.
type Group struct {
	Provider string
	Label    string
	Roots    []*Symbol
}

// Entry is one element of a containment chain: either a group (Symbol nil)
// or a symbol within that group.
type Entry struct {
	Group  *Group
	Symbol *Symbol
}

// Model is what breadcrumbs and the outline picker consume.
type Model interface {
	Groups() []*Group
	ChainAt(pos protocol.Position) []Entry
	Score(filter, candidate string) int
	OnChange(fn func()) func()
}

// Document is a Model whose content is replaced wholesale whenever a
// provider reports a new outline.
type Document struct {
	mu     sync.RWMutex
	groups []*Group

	subMu sync.Mutex
	next  int
	subs  map[int]func()
}

// NewDocument returns an empty outline document.
func NewDocument() *Document {
	return &Document{subs: make(map[int]func())}
}

// Replace swaps in a new set of groups and notifies listeners.
func (d *Document) Replace(groups []*Group) {
	d.mu.Lock()
	d.groups = groups
	d.mu.Unlock()
	d.notify()
}

// Groups returns the current provider groups.
func (d *Document) Groups() []*Group {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.groups
}

// ChainAt returns the root-to-leaf chain of entries enclosing pos. The group
// entry is included only when more than one provider contributed, so a
// single-provider outline does not show a redundant segment.
func (d *Document) ChainAt(pos protocol.Position) []Entry {
	d.mu.RLock()
	groups := d.groups
	d.mu.RUnlock()

	for _, group := range groups {
		chain := chainIn(group.Roots, pos)
		if len(chain) == 0 {
			continue
		}
		var entries []Entry
		if len(groups) > 1 {
			entries = append(entries, Entry{Group: group})
		}
		for _, sym := range chain {
			entries = append(entries, Entry{Group: group, Symbol: sym})
		}
		return entries
	}
	return nil
}

// Score rates how well candidate matches the filter string. Higher is
// better; a negative score means no match. An empty filter matches all.
func (d *Document) Score(filter, candidate string) int {
	if filter == "" {
		return 0
	}
	matches := fuzzy.Find(filter, []string{candidate})
	if len(matches) == 0 {
		return -1
	}
	return matches[0].Score
}

// OnChange registers a change listener and returns its unregister func.
func (d *Document) OnChange(fn func()) func() {
	d.subMu.Lock()
	id := d.next
	d.next++
	d.subs[id] = fn
	d.subMu.Unlock()
	return func() {
		d.subMu.Lock()
		delete(d.subs, id)
		d.subMu.Unlock()
	}
}

func (d *Document) notify() {
	d.subMu.Lock()
	fns := make([]func(), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func chainIn(roots []*Symbol, pos protocol.Position) []*Symbol {
	for _, sym := range roots {
		if !Contains(sym.Range, pos) {
			continue
		}
		return append([]*Symbol{sym}, chainIn(sym.Children, pos)...)
	}
	return nil
}

// Contains reports whether pos lies within r, end-inclusive.
func Contains(r protocol.Range, pos protocol.Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// FromDocumentSymbols converts a hierarchical documentSymbol response into a
// single group, assigning stable IDs from the name path.
func FromDocumentSymbols(provider, label string, symbols []protocol.DocumentSymbol) *Group {
	group := &Group{Provider: provider, Label: label}
	group.Roots = convertSymbols(provider, symbols)
	return group
}

func convertSymbols(prefix string, symbols []protocol.DocumentSymbol) []*Symbol {
	out := make([]*Symbol, 0, len(symbols))
	for i, ds := range symbols {
		id := fmt.Sprintf("%s/%s#%d", prefix, ds.Name, i)
		sym := &Symbol{
			ID:             id,
			Name:           ds.Name,
			Detail:         ds.Detail,
			Kind:           ds.Kind,
			Range:          ds.Range,
			SelectionRange: ds.SelectionRange,
		}
		sym.Children = convertSymbols(id, ds.Children)
		out = append(out, sym)
	}
	return out
}

// FromSymbolInformation converts a flat symbolInformation response. The flat
// form has no hierarchy, so every symbol becomes a root.
func FromSymbolInformation(provider, label string, symbols []protocol.SymbolInformation) *Group {
	group := &Group{Provider: provider, Label: label}
	for i, si := range symbols {
		group.Roots = append(group.Roots, &Symbol{
			ID:             fmt.Sprintf("%s/%s#%d", provider, si.Name, i),
			Name:           si.Name,
			Kind:           si.Kind,
			Range:          si.Location.Range,
			SelectionRange: si.Location.Range,
		})
	}
	return group
}
