// Package tui renders the breadcrumb bar, its picker overlay, and a
// diagnostics status line in the terminal.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/breadcrumbs"
	"github.com/lexcodex/crumb/diagnostics"
	"github.com/lexcodex/crumb/picker"
)

// Run bootstraps the breadcrumb TUI.
func Run(ctx context.Context, opts ModelOptions) error {
	if opts.Control == nil {
		return fmt.Errorf("breadcrumb control is required")
	}
	model := NewModel(opts)
	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// OverlayPickers adapts the picker package to the control's picker surface
// and exposes the currently open picker to the view.
type OverlayPickers struct {
	FS     picker.FileSystem
	Errors picker.ErrorSink

	mu   sync.Mutex
	open *picker.Picker
}

// Open starts a picker and tracks it as the active overlay.
func (o *OverlayPickers) Open(anchor breadcrumbs.Element, model *breadcrumbs.Model, onDone func(target breadcrumbs.Element, picked bool)) (breadcrumbs.PickerSession, error) {
	inner := &picker.Service{FS: o.FS, Errors: o.Errors}
	session, err := inner.Open(anchor, model, func(target breadcrumbs.Element, picked bool) {
		o.mu.Lock()
		o.open = nil
		o.mu.Unlock()
		onDone(target, picked)
	})
	if err != nil {
		return nil, err
	}
	p, ok := session.(*picker.Picker)
	if ok {
		o.mu.Lock()
		o.open = p
		o.mu.Unlock()
	}
	return session, nil
}

// Current returns the open overlay picker, or nil.
func (o *OverlayPickers) Current() *picker.Picker {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// ModelOptions carries the collaborators the TUI binds to.
type ModelOptions struct {
	Control  *breadcrumbs.Control
	Overlay  *OverlayPickers
	Sink     *diagnostics.MemorySink
	Resource func() (uri.URI, bool)
}

// Model implements the Bubble Tea Model interface over one breadcrumb
// control.
type Model struct {
	control  *breadcrumbs.Control
	overlay  *OverlayPickers
	sink     *diagnostics.MemorySink
	resource func() (uri.URI, bool)

	filter textinput.Model
	cursor int

	width  int
	height int
	ready  bool
}

// NewModel initializes the bar with an empty overlay filter.
func NewModel(opts ModelOptions) Model {
	filter := textinput.New()
	filter.Placeholder = "Filter"
	filter.Focus()
	return Model{
		control:  opts.Control,
		overlay:  opts.Overlay,
		sink:     opts.Sink,
		resource: opts.Resource,
		filter:   filter,
	}
}

// RefreshMsg asks the bar to re-bind to the active editor.
type RefreshMsg struct{}

// Refresh returns a command that re-binds the control.
func Refresh() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

func (m Model) overlayPicker() *picker.Picker {
	if m.overlay == nil {
		return nil
	}
	return m.overlay.Current()
}
