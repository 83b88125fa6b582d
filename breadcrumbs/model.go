package breadcrumbs

import (
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/outline"
	"github.com/lexcodex/crumb/workspace"
)

// CursorSource supplies the live primary cursor of the bound document.
type CursorSource interface {
	Current() protocol.Position
	OnMove(fn func(protocol.Position)) func()
}

// Model composes the path trail with the symbol chain at the cursor into
// one ordered element sequence. It is constructed per active editor input
// and disposed when the input changes. The sequence is never empty while
// the resource is active: the last element is the deepest symbol enclosing
// the cursor, or the file itself when no symbol applies.
type Model struct {
	resource uri.URI
	trail    Trail
	outline  outline.Model
	cursor   CursorSource

	mu        sync.Mutex
	elements  []Element
	prevChain []string
	pos       protocol.Position
	disposed  bool

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func()

	cancels []func()
}

// NewModel builds the initial sequence and subscribes to outline and cursor
// events. Either source may be nil; the model then degrades to the path
// trail alone. A missing outline (binary file, provider down) is not an
// error.
func NewModel(resource uri.URI, folders *workspace.Folders, out outline.Model, cursor CursorSource) *Model {
	m := &Model{
		resource: resource,
		trail:    PathTrail(resource, folders),
		outline:  out,
		cursor:   cursor,
		subs:     make(map[int]func()),
	}
	if cursor != nil {
		m.pos = cursor.Current()
		m.cancels = append(m.cancels, cursor.OnMove(func(pos protocol.Position) {
			m.mu.Lock()
			m.pos = pos
			m.mu.Unlock()
			m.rebuild()
		}))
	}
	if out != nil {
		m.cancels = append(m.cancels, out.OnChange(func() {
			m.rebuild()
		}))
	}

	m.mu.Lock()
	chain := m.chainLocked()
	m.prevChain = chainNames(chain)
	m.elements = m.composeLocked(chain)
	m.mu.Unlock()
	return m
}

// Resource returns the bound resource.
func (m *Model) Resource() uri.URI { return m.resource }

// WorkspaceRelative reports whether the trail was truncated at a workspace
// folder.
func (m *Model) WorkspaceRelative() bool { return m.trail.WorkspaceRelative }

// Elements returns the current sequence. The returned slice is the owned
// sequence and must not be mutated; it is superseded wholesale on rebuild.
func (m *Model) Elements() []Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elements
}

// Outline returns the outline model backing the symbol portion, or nil.
func (m *Model) Outline() outline.Model { return m.outline }

// OnChange registers a listener fired after every recomputation, including
// suppressed ones.
func (m *Model) OnChange(fn func()) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Dispose unhooks the model from its event sources.
func (m *Model) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// rebuild recomputes the sequence. When the new symbol chain is name-stable
// against the previous one the prior sequence is kept referenced, so
// provider noise does not make the bar flicker; the notification still
// fires either way.
func (m *Model) rebuild() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	chain := m.chainLocked()
	names := chainNames(chain)
	if !chainStable(m.prevChain, names) {
		m.prevChain = names
		m.elements = m.composeLocked(chain)
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Model) chainLocked() []outline.Entry {
	if m.outline == nil {
		return nil
	}
	return m.outline.ChainAt(m.pos)
}

func (m *Model) composeLocked(chain []outline.Entry) []Element {
	elements := make([]Element, 0, len(m.trail.Elements)+len(chain))
	elements = append(elements, m.trail.Elements...)
	for _, entry := range chain {
		if entry.Symbol == nil {
			elements = append(elements, GroupElement{
				Provider:    entry.Group.Provider,
				DisplayName: entry.Group.Label,
			})
			continue
		}
		sym := entry.Symbol
		elements = append(elements, SymbolElement{
			ID:             sym.ID,
			Name:           sym.Name,
			Kind:           sym.Kind,
			Range:          sym.Range,
			SelectionRange: sym.SelectionRange,
		})
	}
	return elements
}

func (m *Model) notify() {
	m.subMu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func chainNames(chain []outline.Entry) []string {
	names := make([]string, 0, len(chain))
	for _, entry := range chain {
		if entry.Symbol != nil {
			names = append(names, entry.Symbol.Name)
		} else {
			names = append(names, entry.Group.Provider)
		}
	}
	return names
}

// chainStable reports whether next is a case-insensitive name-equal prefix
// or suffix of prev (or equal to it). Comparison is by name only, not kind
// or range, so a provider re-reporting the same path with shifted ranges
// counts as unchanged.
func chainStable(prev, next []string) bool {
	if len(next) == 0 {
		return len(prev) == 0
	}
	if len(next) > len(prev) {
		return false
	}
	prefix := true
	for i := range next {
		if !strings.EqualFold(prev[i], next[i]) {
			prefix = false
			break
		}
	}
	if prefix {
		return true
	}
	offset := len(prev) - len(next)
	for i := range next {
		if !strings.EqualFold(prev[offset+i], next[i]) {
			return false
		}
	}
	return true
}
