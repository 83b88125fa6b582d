package picker

import (
	"context"

	"github.com/lexcodex/crumb/breadcrumbs"
	"github.com/lexcodex/crumb/outline"
)

// outlineSource flattens the owning outline model into depth-annotated
// rows. The scope never changes during a session: expanding a symbol is a
// view affordance, not a drill.
type outlineSource struct {
	model outline.Model
}

func (s *outlineSource) Load(_ context.Context) ([]Item, error) {
	var items []Item
	for _, group := range s.model.Groups() {
		for _, root := range group.Roots {
			items = appendSymbolItems(items, root, 0)
		}
	}
	return items, nil
}

func appendSymbolItems(items []Item, sym *outline.Symbol, depth int) []Item {
	items = append(items, Item{
		Label:      sym.Name,
		Depth:      depth,
		Expandable: len(sym.Children) > 0,
		Element: breadcrumbs.SymbolElement{
			ID:             sym.ID,
			Name:           sym.Name,
			Kind:           sym.Kind,
			Range:          sym.Range,
			SelectionRange: sym.SelectionRange,
		},
	})
	for _, child := range sym.Children {
		items = appendSymbolItems(items, child, depth+1)
	}
	return items
}

func (s *outlineSource) SetScope(interface{}) {}

// outlineRenderer annotates rows with the symbol kind.
type outlineRenderer struct{}

func (outlineRenderer) Render(item Item) (string, string) {
	sym, ok := item.Element.(breadcrumbs.SymbolElement)
	if !ok {
		return item.Label, ""
	}
	return item.Label, outline.KindLabel(sym.Kind)
}

// outlineScorer delegates to the model so filtering stays consistent with
// the outline view.
type outlineScorer struct {
	model outline.Model
}

func (s outlineScorer) Score(filter string, item Item) (int, []int, bool) {
	sym, ok := item.Element.(breadcrumbs.SymbolElement)
	if !ok {
		return 0, nil, false
	}
	score := s.model.Score(filter, sym.Name)
	if score < 0 {
		return 0, nil, false
	}
	return score, nil, true
}

// outlineHandler always emits: symbols have no drill scope.
type outlineHandler struct{}

func (outlineHandler) Handle(item Item) Outcome {
	return Outcome{Element: item.Element}
}

// NewOutlinePicker opens a picker over the symbols of one outline model.
func NewOutlinePicker(ctx context.Context, model outline.Model, errs ErrorSink, onDone func(Result)) *Picker {
	return New(ctx, Options{
		Source:   &outlineSource{model: model},
		Renderer: outlineRenderer{},
		Scorer:   outlineScorer{model: model},
		Handler:  outlineHandler{},
		Errors:   errs,
		OnDone:   onDone,
	})
}
