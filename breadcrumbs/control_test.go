package breadcrumbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/outline"
	"github.com/lexcodex/crumb/workspace"
)

type fakeGroup struct {
	res     uri.URI
	hasRes  bool
	outline outline.Model
}

func (g *fakeGroup) ActiveResource() (uri.URI, bool)  { return g.res, g.hasRes }
func (g *fakeGroup) OutlineFor(uri.URI) outline.Model { return g.outline }
func (g *fakeGroup) CursorFor(uri.URI) CursorSource   { return nil }

type fakeNav struct {
	opened     []uri.URI
	selections []protocol.Range
}

func (n *fakeNav) OpenResource(res uri.URI) error {
	n.opened = append(n.opened, res)
	return nil
}

func (n *fakeNav) OpenWithSelection(res uri.URI, sel protocol.Range) error {
	n.opened = append(n.opened, res)
	n.selections = append(n.selections, sel)
	return nil
}

type fakeKeys struct {
	values map[string]bool
}

func (k *fakeKeys) Set(key string, value bool) {
	if k.values == nil {
		k.values = map[string]bool{}
	}
	k.values[key] = value
}

type fakeSession struct{ disposed bool }

func (s *fakeSession) Dispose() { s.disposed = true }

type fakePickers struct {
	opened  int
	session *fakeSession
	onDone  func(Element, bool)
}

func (p *fakePickers) Open(anchor Element, model *Model, onDone func(Element, bool)) (PickerSession, error) {
	p.opened++
	p.session = &fakeSession{}
	p.onDone = onDone
	return p.session, nil
}

type fakeQuickNav struct{ shown int }

func (q *fakeQuickNav) Show(*Model) error {
	q.shown++
	return nil
}

func newTestControl(group *fakeGroup, cfg *workspace.Config) (*Control, *fakeNav, *fakeKeys, *fakePickers, *fakeQuickNav) {
	nav := &fakeNav{}
	keys := &fakeKeys{}
	pickers := &fakePickers{}
	quick := &fakeQuickNav{}
	ctrl := NewControl(ControlOptions{
		Group:    group,
		Folders:  workspace.NewFolders("/ws"),
		Config:   cfg,
		Nav:      nav,
		Keys:     keys,
		Pickers:  pickers,
		QuickNav: quick,
	})
	return ctrl, nav, keys, pickers, quick
}

func TestControlHidesWithoutResource(t *testing.T) {
	group := &fakeGroup{}
	ctrl, _, keys, _, _ := newTestControl(group, nil)

	assert.False(t, ctrl.Update(), "hidden control stays hidden")
	assert.False(t, ctrl.Visible())

	group.res = uri.File("/ws/a.go")
	group.hasRes = true
	assert.True(t, ctrl.Update(), "showing changes visibility")
	assert.True(t, keys.values[KeyVisible])

	group.hasRes = false
	assert.True(t, ctrl.Update(), "hiding changes visibility")
	assert.False(t, ctrl.Update(), "second hide is idempotent")
	assert.False(t, keys.values[KeyVisible])
	assert.Nil(t, ctrl.Items())
}

func TestControlFocusesLastItem(t *testing.T) {
	group := &fakeGroup{res: uri.File("/ws/src/a.go"), hasRes: true}
	ctrl, _, _, _, _ := newTestControl(group, nil)

	ctrl.Update()
	items := ctrl.Items()
	require.Len(t, items, 3)
	assert.Equal(t, len(items)-1, ctrl.Focused())
}

func TestControlRevealGestureNavigatesDirectly(t *testing.T) {
	group := &fakeGroup{res: uri.File("/ws/a.go"), hasRes: true}
	ctrl, nav, _, pickers, _ := newTestControl(group, nil)
	ctrl.Update()

	require.NoError(t, ctrl.Select(ctrl.Focused(), Gesture{Reveal: true}))
	assert.Equal(t, 0, pickers.opened, "reveal must not open a picker")
	require.Len(t, nav.opened, 1)
	assert.Equal(t, uri.File("/ws/a.go"), nav.opened[0])
}

func TestControlSymbolNavigationCollapsesSelection(t *testing.T) {
	doc := outline.NewDocument()
	doc.Replace([]*outline.Group{{
		Provider: "ts", Label: "TypeScript",
		Roots: []*outline.Symbol{{
			ID: "ts/run#0", Name: "run", Kind: protocol.SymbolKind(12),
			Range:          span(0, 0, 9, 0),
			SelectionRange: span(2, 4, 2, 7),
		}},
	}})
	group := &fakeGroup{res: uri.File("/ws/a.ts"), hasRes: true, outline: doc}
	ctrl, nav, _, _, _ := newTestControl(group, nil)
	ctrl.Update()

	items := ctrl.Items()
	require.IsType(t, SymbolElement{}, items[len(items)-1])
	require.NoError(t, ctrl.Select(len(items)-1, Gesture{Reveal: true}))

	require.Len(t, nav.selections, 1)
	want := protocol.Range{
		Start: protocol.Position{Line: 2, Character: 4},
		End:   protocol.Position{Line: 2, Character: 4},
	}
	assert.Equal(t, want, nav.selections[0], "selection collapses to the start of the selection range")
}

func TestControlOpensSinglePicker(t *testing.T) {
	group := &fakeGroup{res: uri.File("/ws/a.go"), hasRes: true}
	ctrl, nav, keys, pickers, _ := newTestControl(group, nil)
	ctrl.Update()

	require.NoError(t, ctrl.Select(0, Gesture{}))
	assert.Equal(t, 1, pickers.opened)
	assert.True(t, keys.values[KeyPickerActive])

	// A second selection while the picker is open is ignored.
	require.NoError(t, ctrl.Select(1, Gesture{}))
	assert.Equal(t, 1, pickers.opened)

	// Picking a target disposes the session, clears the flag, navigates.
	pickers.onDone(FileElement{URI: uri.File("/ws/b.go"), IsFile: true}, true)
	assert.True(t, pickers.session.disposed)
	assert.False(t, keys.values[KeyPickerActive])
	require.Len(t, nav.opened, 1)

	// And the control accepts a new picker afterwards.
	require.NoError(t, ctrl.Select(0, Gesture{}))
	assert.Equal(t, 2, pickers.opened)
}

func TestControlPickerDismissalDoesNotNavigate(t *testing.T) {
	group := &fakeGroup{res: uri.File("/ws/a.go"), hasRes: true}
	ctrl, nav, keys, pickers, _ := newTestControl(group, nil)
	ctrl.Update()

	require.NoError(t, ctrl.Select(0, Gesture{}))
	pickers.onDone(nil, false)
	assert.Empty(t, nav.opened)
	assert.False(t, keys.values[KeyPickerActive])
}

func TestControlQuickPickPreference(t *testing.T) {
	cfg := workspace.DefaultConfig("/ws")
	cfg.Breadcrumbs.UseQuickPick = true
	group := &fakeGroup{res: uri.File("/ws/a.go"), hasRes: true}
	ctrl, _, _, pickers, quick := newTestControl(group, cfg)
	ctrl.Update()

	require.NoError(t, ctrl.Select(0, Gesture{}))
	assert.Equal(t, 1, quick.shown)
	assert.Equal(t, 0, pickers.opened)
}
