package picker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/breadcrumbs"
	"github.com/lexcodex/crumb/outline"
	"github.com/lexcodex/crumb/workspace"
)

// These tests drive the real control against the real picker service, so the
// anchors and picked targets are exactly what the bar produces at runtime.

type barNav struct {
	opened     []uri.URI
	selections []protocol.Range
}

func (n *barNav) OpenResource(res uri.URI) error {
	n.opened = append(n.opened, res)
	return nil
}

func (n *barNav) OpenWithSelection(res uri.URI, sel protocol.Range) error {
	n.opened = append(n.opened, res)
	n.selections = append(n.selections, sel)
	return nil
}

type barGroup struct {
	res uri.URI
	out outline.Model
}

func (g *barGroup) ActiveResource() (uri.URI, bool)            { return g.res, true }
func (g *barGroup) OutlineFor(uri.URI) outline.Model           { return g.out }
func (g *barGroup) CursorFor(uri.URI) breadcrumbs.CursorSource { return nil }

// trackingPickers exposes the picker the service opened so tests can drive
// its rows directly.
type trackingPickers struct {
	svc  *Service
	last *Picker
}

func (p *trackingPickers) Open(anchor breadcrumbs.Element, model *breadcrumbs.Model, onDone func(breadcrumbs.Element, bool)) (breadcrumbs.PickerSession, error) {
	session, err := p.svc.Open(anchor, model, onDone)
	if err != nil {
		return nil, err
	}
	p.last = session.(*Picker)
	return session, nil
}

func newBarControl(t *testing.T, group *barGroup, fs FileSystem) (*breadcrumbs.Control, *barNav, *trackingPickers) {
	t.Helper()
	nav := &barNav{}
	pickers := &trackingPickers{svc: &Service{FS: fs}}
	ctrl := breadcrumbs.NewControl(breadcrumbs.ControlOptions{
		Group:   group,
		Folders: workspace.NewFolders("/ws"),
		Nav:     nav,
		Pickers: pickers,
	})
	t.Cleanup(ctrl.Dispose)
	ctrl.Update()
	return ctrl, nav, pickers
}

func TestBarFileAnchorOpensSiblingPickerWithoutOutline(t *testing.T) {
	fs := &fakeFS{tree: map[uri.URI][]Stat{
		uri.File("/ws"): {fileStat("/ws/a.go"), fileStat("/ws/b.go")},
	}}
	group := &barGroup{res: uri.File("/ws/a.go")}
	ctrl, nav, pickers := newBarControl(t, group, fs)

	items := ctrl.Items()
	require.NotEmpty(t, items)
	require.IsType(t, breadcrumbs.FileElement{}, items[len(items)-1])

	require.NoError(t, ctrl.Select(len(items)-1, breadcrumbs.Gesture{}))
	require.NotNil(t, pickers.last, "a file anchor opens the sibling file picker")
	assert.Equal(t, []string{"a.go", "b.go"}, labels(pickers.last.Rows()))

	pickers.last.Pick(context.Background(), 1)
	require.Len(t, nav.opened, 1)
	assert.Equal(t, uri.File("/ws/b.go"), nav.opened[0])
}

func TestBarSymbolPickNavigatesWithCollapsedSelection(t *testing.T) {
	doc := outline.NewDocument()
	doc.Replace([]*outline.Group{{
		Provider: "ts", Label: "TypeScript",
		Roots: []*outline.Symbol{{
			ID: "ts/run#0", Name: "run", Kind: protocol.SymbolKind(12),
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 9, Character: 0},
			},
			SelectionRange: protocol.Range{
				Start: protocol.Position{Line: 2, Character: 4},
				End:   protocol.Position{Line: 2, Character: 7},
			},
		}},
	}})
	group := &barGroup{res: uri.File("/ws/a.ts"), out: doc}
	ctrl, nav, pickers := newBarControl(t, group, &fakeFS{})

	items := ctrl.Items()
	require.IsType(t, breadcrumbs.SymbolElement{}, items[len(items)-1])

	require.NoError(t, ctrl.Select(len(items)-1, breadcrumbs.Gesture{}))
	require.NotNil(t, pickers.last)

	pickers.last.Pick(context.Background(), 0)
	require.Len(t, nav.opened, 1, "picking a symbol must navigate")
	assert.Equal(t, uri.File("/ws/a.ts"), nav.opened[0])
	require.Len(t, nav.selections, 1)
	want := protocol.Range{
		Start: protocol.Position{Line: 2, Character: 4},
		End:   protocol.Position{Line: 2, Character: 4},
	}
	assert.Equal(t, want, nav.selections[0])
}

func TestBarFolderAnchorDrillsThenNavigates(t *testing.T) {
	fs := &fakeFS{tree: map[uri.URI][]Stat{
		uri.File("/ws"):     {dirStat("/ws/src"), fileStat("/ws/a.go")},
		uri.File("/ws/src"): {fileStat("/ws/src/main.go")},
	}}
	group := &barGroup{res: uri.File("/ws/a.go")}
	ctrl, nav, pickers := newBarControl(t, group, fs)

	// The first trail item is the workspace folder.
	items := ctrl.Items()
	require.IsType(t, breadcrumbs.FileElement{}, items[0])
	require.NoError(t, ctrl.Select(0, breadcrumbs.Gesture{}))
	require.NotNil(t, pickers.last)

	pickers.last.Pick(context.Background(), 0) // drill into src/
	assert.Empty(t, nav.opened)
	pickers.last.Pick(context.Background(), 0) // pick main.go
	require.Len(t, nav.opened, 1)
	assert.Equal(t, uri.File("/ws/src/main.go"), nav.opened[0])
}
