// Package picker implements the pop-up used to browse sibling scope of a
// breadcrumb element: a filterable tree that emits exactly one pick or one
// dismissal. The two variants (files, outline symbols) share one shell and
// differ only in the collaborators composed at construction.
package picker

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/lexcodex/crumb/breadcrumbs"
)

// Item is one row of the tree.
type Item struct {
	Label      string
	Detail     string
	Depth      int
	Expandable bool
	Element    breadcrumbs.Element
}

// Row is an item together with its current filter score.
type Row struct {
	Item    Item
	Score   int
	Matched []int
}

// DataSource supplies the items for the current scope. Loading is lazy:
// Load runs when the picker opens and again after every drill.
type DataSource interface {
	Load(ctx context.Context) ([]Item, error)
	SetScope(scope interface{})
}

// Sorter orders freshly loaded items before filtering applies.
type Sorter interface {
	Sort(items []Item)
}

// Renderer decides the display text of an item.
type Renderer interface {
	Render(item Item) (label, detail string)
}

// Scorer rates an item against the filter text.
type Scorer interface {
	Score(filter string, item Item) (score int, matched []int, ok bool)
}

// SelectionHandler turns a picked row into an outcome: drill into a new
// scope, or emit an element.
type SelectionHandler interface {
	Handle(item Item) Outcome
}

// Outcome is what a selection produced. A non-nil Element emits; a non-nil
// Scope re-roots the data source instead.
type Outcome struct {
	Element breadcrumbs.Element
	Scope   interface{}
}

// Result is the single terminal event of a picker.
type Result struct {
	Element   breadcrumbs.Element
	Dismissed bool
}

// ErrorSink receives non-user-facing failures such as file-system
// resolution errors.
type ErrorSink interface {
	Unexpected(err error)
}

// LogErrorSink reports unexpected errors to a logger.
type LogErrorSink struct {
	Logger *log.Logger
}

// Unexpected logs the error best-effort.
func (s LogErrorSink) Unexpected(err error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("picker: unexpected error: %v", err)
}

// Picker is the shared shell. It resolves exactly once: through a pick or
// through dismissal (focus loss), after which it is disposed.
type Picker struct {
	source   DataSource
	sorter   Sorter
	renderer Renderer
	scorer   Scorer
	handler  SelectionHandler
	errs     ErrorSink
	onDone   func(Result)

	mu       sync.Mutex
	items    []Item
	rows     []Row
	filter   string
	resolved bool
}

// Options bundles the collaborators for one picker variant.
type Options struct {
	Source   DataSource
	Sorter   Sorter
	Renderer Renderer
	Scorer   Scorer
	Handler  SelectionHandler
	Errors   ErrorSink
	OnDone   func(Result)
}

// New composes a picker shell and performs the initial load.
func New(ctx context.Context, opts Options) *Picker {
	p := &Picker{
		source:   opts.Source,
		sorter:   opts.Sorter,
		renderer: opts.Renderer,
		scorer:   opts.Scorer,
		handler:  opts.Handler,
		errs:     opts.Errors,
		onDone:   opts.OnDone,
	}
	p.reload(ctx)
	return p
}

// reload pulls items for the current scope and reapplies the filter.
func (p *Picker) reload(ctx context.Context) {
	items, err := p.source.Load(ctx)
	if err != nil {
		if p.errs != nil {
			p.errs.Unexpected(err)
		}
		items = nil
	}
	if p.sorter != nil {
		p.sorter.Sort(items)
	}
	if p.renderer != nil {
		for i := range items {
			items[i].Label, items[i].Detail = p.renderer.Render(items[i])
		}
	}
	p.mu.Lock()
	p.items = items
	p.applyFilterLocked()
	p.mu.Unlock()
}

// SetFilter updates the fuzzy filter and the per-row scores.
func (p *Picker) SetFilter(filter string) {
	p.mu.Lock()
	p.filter = filter
	p.applyFilterLocked()
	p.mu.Unlock()
}

func (p *Picker) applyFilterLocked() {
	rows := make([]Row, 0, len(p.items))
	for _, item := range p.items {
		if p.filter == "" || p.scorer == nil {
			rows = append(rows, Row{Item: item})
			continue
		}
		score, matched, ok := p.scorer.Score(p.filter, item)
		if !ok {
			continue
		}
		rows = append(rows, Row{Item: item, Score: score, Matched: matched})
	}
	p.rows = rows
}

// Rows returns the filtered rows in display order.
func (p *Picker) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows := make([]Row, len(p.rows))
	copy(rows, p.rows)
	return rows
}

// BestMatch returns the index of the top-scoring row, the implicit target
// when the user confirms the filter text. Returns -1 with no rows.
func (p *Picker) BestMatch() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rows) == 0 {
		return -1
	}
	best := 0
	for i, row := range p.rows {
		if row.Score > p.rows[best].Score {
			best = i
		}
	}
	return best
}

// Pick selects the row at index. Picking a drillable row re-roots the tree
// and emits nothing; picking a leaf resolves the picker.
func (p *Picker) Pick(ctx context.Context, index int) {
	p.mu.Lock()
	if p.resolved || index < 0 || index >= len(p.rows) {
		p.mu.Unlock()
		return
	}
	item := p.rows[index].Item
	p.mu.Unlock()

	outcome := p.handler.Handle(item)
	if outcome.Scope != nil {
		p.source.SetScope(outcome.Scope)
		p.mu.Lock()
		p.filter = ""
		p.mu.Unlock()
		p.reload(ctx)
		return
	}
	if outcome.Element != nil {
		p.resolve(Result{Element: outcome.Element})
	}
}

// Blur handles focus loss: an empty pick treated as cancel.
func (p *Picker) Blur() {
	p.resolve(Result{Dismissed: true})
}

// Dispose resolves as dismissed when nothing was picked.
func (p *Picker) Dispose() {
	p.resolve(Result{Dismissed: true})
}

func (p *Picker) resolve(res Result) {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	done := p.onDone
	p.mu.Unlock()
	if done != nil {
		done(res)
	}
}

// SortItems is a convenience for Sorter implementations built on a less
// function.
func SortItems(items []Item, less func(a, b Item) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
