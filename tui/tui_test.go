package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/breadcrumbs"
	"github.com/lexcodex/crumb/outline"
	"github.com/lexcodex/crumb/picker"
	"github.com/lexcodex/crumb/workspace"
)

type tuiNav struct {
	opened []uri.URI
}

func (n *tuiNav) OpenResource(res uri.URI) error { n.opened = append(n.opened, res); return nil }
func (n *tuiNav) OpenWithSelection(res uri.URI, _ protocol.Range) error {
	n.opened = append(n.opened, res)
	return nil
}

type tuiKeys struct{}

func (tuiKeys) Set(string, bool) {}

type tuiFS struct {
	tree map[uri.URI][]picker.Stat
}

func (f *tuiFS) Resolve(_ context.Context, dir uri.URI) ([]picker.Stat, error) {
	return f.tree[dir], nil
}

func TestOverlayTracksOpenPickerAndClearsOnResolve(t *testing.T) {
	fs := &tuiFS{tree: map[uri.URI][]picker.Stat{
		uri.File("/ws"): {{Name: "a.go", Resource: uri.File("/ws/a.go")}},
	}}
	overlay := &OverlayPickers{FS: fs}
	anchor := breadcrumbs.FileElement{URI: uri.File("/ws/a.go"), IsFile: true}

	var picked bool
	session, err := overlay.Open(anchor, nil, func(_ breadcrumbs.Element, didPick bool) {
		picked = didPick
	})
	require.NoError(t, err)
	p := overlay.Current()
	require.NotNil(t, p)

	p.Pick(context.Background(), 0)
	assert.True(t, picked)
	assert.Nil(t, overlay.Current())
	session.Dispose()
}

func TestOverlayClearsOnDismissal(t *testing.T) {
	fs := &tuiFS{tree: map[uri.URI][]picker.Stat{}}
	overlay := &OverlayPickers{FS: fs}
	anchor := breadcrumbs.FileElement{URI: uri.File("/ws/a.go"), IsFile: true}

	dismissed := false
	_, err := overlay.Open(anchor, nil, func(_ breadcrumbs.Element, didPick bool) {
		dismissed = !didPick
	})
	require.NoError(t, err)
	overlay.Current().Blur()

	assert.True(t, dismissed)
	assert.Nil(t, overlay.Current())
}

func TestHighlightMatchesCoversMatchedRunes(t *testing.T) {
	out := highlightMatches("main.go", []int{0, 1}, rowStyle)
	assert.Contains(t, out, "m")
	assert.Contains(t, out, "go")
}

func newTestModel(t *testing.T, group breadcrumbs.EditorGroup, overlay *OverlayPickers) Model {
	t.Helper()
	cfg := workspace.DefaultConfig(t.TempDir())
	control := breadcrumbs.NewControl(breadcrumbs.ControlOptions{
		Group:   group,
		Config:  cfg,
		Nav:     &tuiNav{},
		Keys:    tuiKeys{},
		Pickers: overlay,
	})
	t.Cleanup(control.Dispose)
	m := NewModel(ModelOptions{Control: control, Overlay: overlay})
	m.ready = true
	m.width = 80
	m.height = 24
	return m
}

func TestBarRendersPlaceholderWithoutResource(t *testing.T) {
	m := newTestModel(t, &emptyGroup{}, &OverlayPickers{FS: &tuiFS{}})
	m.control.Update()
	assert.Contains(t, m.View(), "no active editor")
}

type emptyGroup struct{}

func (emptyGroup) ActiveResource() (uri.URI, bool)            { return "", false }
func (emptyGroup) OutlineFor(uri.URI) outline.Model           { return nil }
func (emptyGroup) CursorFor(uri.URI) breadcrumbs.CursorSource { return nil }

func TestWindowSizeMarksReady(t *testing.T) {
	m := NewModel(ModelOptions{Control: breadcrumbs.NewControl(breadcrumbs.ControlOptions{
		Group: &emptyGroup{},
		Nav:   &tuiNav{},
	})})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	model := updated.(Model)
	assert.True(t, model.ready)
	assert.Equal(t, 100, model.width)
}
