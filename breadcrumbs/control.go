package breadcrumbs

import (
	"log"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/outline"
	"github.com/lexcodex/crumb/workspace"
)

// Context keys the control maintains for keybinding predicates.
const (
	KeyVisible      = "breadcrumbsVisible"
	KeyPickerActive = "breadcrumbsActive"
)

// Gesture qualifies a breadcrumb selection. A reveal gesture carries the
// modifier that means "jump straight there".
type Gesture struct {
	Reveal bool
}

// Navigator opens navigation targets in the editor.
type Navigator interface {
	OpenResource(res uri.URI) error
	OpenWithSelection(res uri.URI, selection protocol.Range) error
}

// ContextKeys is the context-key service the host injects.
type ContextKeys interface {
	Set(key string, value bool)
}

// PickerSession is an open picker pop-up owned by the control.
type PickerSession interface {
	Dispose()
}

// PickerService opens an inline picker anchored at a breadcrumb element.
// onDone fires exactly once with the picked target, or picked=false on
// dismissal.
type PickerService interface {
	Open(anchor Element, model *Model, onDone func(target Element, picked bool)) (PickerSession, error)
}

// QuickNav is the global quick-navigation surface used instead of inline
// pickers when the user preference asks for it.
type QuickNav interface {
	Show(model *Model) error
}

// EditorGroup is the slice of editor state one control binds to.
type EditorGroup interface {
	ActiveResource() (uri.URI, bool)
	OutlineFor(res uri.URI) outline.Model
	CursorFor(res uri.URI) CursorSource
}

// Recorder persists navigation targets; best-effort, may be nil.
type Recorder interface {
	Record(res uri.URI, el Element)
}

// Control binds one breadcrumb widget to one editor group: it rebuilds the
// item list from the model on updates and routes selections to navigation
// or a picker.
type Control struct {
	group    EditorGroup
	folders  *workspace.Folders
	cfg      *workspace.Config
	nav      Navigator
	keys     ContextKeys
	pickers  PickerService
	quickNav QuickNav
	recorder Recorder
	logger   *log.Logger

	mu      sync.Mutex
	model   *Model
	unhook  func()
	items   []Element
	focused int
	visible bool
	session PickerSession
}

// ControlOptions carries the collaborators a control needs.
type ControlOptions struct {
	Group    EditorGroup
	Folders  *workspace.Folders
	Config   *workspace.Config
	Nav      Navigator
	Keys     ContextKeys
	Pickers  PickerService
	QuickNav QuickNav
	Recorder Recorder
	Logger   *log.Logger
}

// NewControl wires a control; Update must be called before it shows
// anything.
func NewControl(opts ControlOptions) *Control {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Control{
		group:    opts.Group,
		folders:  opts.Folders,
		cfg:      opts.Config,
		nav:      opts.Nav,
		keys:     opts.Keys,
		pickers:  opts.Pickers,
		quickNav: opts.QuickNav,
		recorder: opts.Recorder,
		logger:   logger,
		focused:  -1,
	}
}

// Update re-binds the control to the group's active editor. With no
// resolvable resource the control hides (idempotently); otherwise it builds
// a fresh model, renders its items, and focuses the last one. The return
// value reports whether visibility changed.
func (c *Control) Update() bool {
	res, ok := c.group.ActiveResource()
	if !ok {
		return c.hide()
	}

	c.mu.Lock()
	wasVisible := c.visible
	session := c.releaseLocked()
	model := NewModel(res, c.folders, c.group.OutlineFor(res), c.group.CursorFor(res))
	c.model = model
	c.unhook = model.OnChange(func() { c.refresh(model) })
	c.items = model.Elements()
	c.focused = len(c.items) - 1
	c.visible = true
	c.mu.Unlock()

	c.disposeSession(session)
	c.setKey(KeyVisible, true)
	return !wasVisible
}

// hide releases the model and listeners; returns whether visibility changed.
func (c *Control) hide() bool {
	c.mu.Lock()
	wasVisible := c.visible
	session := c.releaseLocked()
	c.visible = false
	c.items = nil
	c.focused = -1
	c.mu.Unlock()

	c.disposeSession(session)
	if wasVisible {
		c.setKey(KeyVisible, false)
	}
	return wasVisible
}

// releaseLocked drops the current model and its listener and hands any open
// picker session back for disposal outside the lock.
func (c *Control) releaseLocked() PickerSession {
	if c.unhook != nil {
		c.unhook()
		c.unhook = nil
	}
	if c.model != nil {
		c.model.Dispose()
		c.model = nil
	}
	session := c.session
	c.session = nil
	return session
}

func (c *Control) disposeSession(session PickerSession) {
	if session == nil {
		return
	}
	session.Dispose()
	c.setKey(KeyPickerActive, false)
}

func (c *Control) refresh(model *Model) {
	c.mu.Lock()
	if c.model != model {
		c.mu.Unlock()
		return
	}
	c.items = model.Elements()
	if c.focused >= len(c.items) || c.focused < 0 {
		c.focused = len(c.items) - 1
	}
	c.mu.Unlock()
}

// Visible reports whether the control currently shows a trail.
func (c *Control) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Items returns the rendered element list.
func (c *Control) Items() []Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Focused returns the focused item index, -1 when hidden.
func (c *Control) Focused() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// Focus moves the focused item, clamped to the item range.
func (c *Control) Focus(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		c.focused = -1
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(c.items) {
		index = len(c.items) - 1
	}
	c.focused = index
}

// Model returns the current model, or nil while hidden.
func (c *Control) Model() *Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Select routes a selection of the item at index: a reveal gesture jumps
// straight to the element, the quick-pick preference delegates to the
// global surface, anything else opens an inline picker anchored there.
func (c *Control) Select(index int, gesture Gesture) error {
	c.mu.Lock()
	if !c.visible || index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return nil
	}
	el := c.items[index]
	model := c.model
	c.mu.Unlock()

	if gesture.Reveal {
		return c.navigate(el)
	}
	if c.cfg != nil && c.cfg.Breadcrumbs.UseQuickPick && c.quickNav != nil {
		return c.quickNav.Show(model)
	}
	return c.openPicker(el, model)
}

// openPicker opens the inline pop-up. At most one picker is open at a time;
// a second request while one is active is ignored.
func (c *Control) openPicker(anchor Element, model *Model) error {
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	session, err := c.pickers.Open(anchor, model, func(target Element, picked bool) {
		c.mu.Lock()
		session := c.session
		c.session = nil
		c.mu.Unlock()
		c.setKey(KeyPickerActive, false)
		if session != nil {
			session.Dispose()
		}
		if picked {
			if err := c.navigate(target); err != nil {
				c.logger.Printf("breadcrumbs: navigation failed: %v", err)
			}
		}
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.setKey(KeyPickerActive, true)
	return nil
}

// navigate resolves an element to an editor action. A file target opens the
// resource; a symbol target opens the owning document with the selection
// collapsed to the start of the symbol's selection range.
func (c *Control) navigate(el Element) error {
	var err error
	switch target := el.(type) {
	case FileElement:
		err = c.nav.OpenResource(target.URI)
	case SymbolElement:
		start := target.SelectionRange.Start
		res := uri.URI("")
		c.mu.Lock()
		if c.model != nil {
			res = c.model.Resource()
		}
		c.mu.Unlock()
		if res == "" {
			return nil
		}
		err = c.nav.OpenWithSelection(res, protocol.Range{Start: start, End: start})
	case GroupElement:
		// A provider group has no location of its own.
		return nil
	}
	if err == nil && c.recorder != nil {
		res := uri.URI("")
		c.mu.Lock()
		if c.model != nil {
			res = c.model.Resource()
		}
		c.mu.Unlock()
		c.recorder.Record(res, el)
	}
	return err
}

// Dispose hides the control and releases everything it owns.
func (c *Control) Dispose() {
	c.hide()
}

func (c *Control) setKey(key string, value bool) {
	if c.keys != nil {
		c.keys.Set(key, value)
	}
}
