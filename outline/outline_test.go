package outline

import (
	"testing"

	"go.lsp.dev/protocol"
)

const (
	outlineKindClass  = protocol.SymbolKind(5)
	outlineKindMethod = protocol.SymbolKind(6)
)

func span(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: startLine, Character: startChar},
		End:   protocol.Position{Line: endLine, Character: endChar},
	}
}

func sampleGroup() *Group {
	method := &Symbol{
		ID:             "ts/Greeter#0/greet#0",
		Name:           "greet",
		Kind:           outlineKindMethod,
		Range:          span(2, 1, 4, 2),
		SelectionRange: span(2, 1, 2, 6),
	}
	class := &Symbol{
		ID:             "ts/Greeter#0",
		Name:           "Greeter",
		Kind:           outlineKindClass,
		Range:          span(0, 0, 6, 1),
		SelectionRange: span(0, 6, 0, 13),
		Children:       []*Symbol{method},
	}
	return &Group{Provider: "ts", Label: "TypeScript", Roots: []*Symbol{class}}
}

func TestChainAtReturnsRootToLeaf(t *testing.T) {
	doc := NewDocument()
	doc.Replace([]*Group{sampleGroup()})

	chain := doc.ChainAt(protocol.Position{Line: 3, Character: 0})
	if len(chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(chain))
	}
	if chain[0].Symbol.Name != "Greeter" || chain[1].Symbol.Name != "greet" {
		t.Fatalf("chain out of order: %s, %s", chain[0].Symbol.Name, chain[1].Symbol.Name)
	}
}

func TestChainAtOutsideAnySymbol(t *testing.T) {
	doc := NewDocument()
	doc.Replace([]*Group{sampleGroup()})

	if chain := doc.ChainAt(protocol.Position{Line: 20, Character: 0}); chain != nil {
		t.Fatalf("expected empty chain, got %d entries", len(chain))
	}
}

func TestChainAtIncludesGroupOnlyWithMultipleProviders(t *testing.T) {
	doc := NewDocument()
	doc.Replace([]*Group{sampleGroup()})
	chain := doc.ChainAt(protocol.Position{Line: 1, Character: 0})
	if len(chain) != 1 || chain[0].Symbol == nil {
		t.Fatalf("single provider should not emit a group entry: %+v", chain)
	}

	other := &Group{Provider: "lint", Label: "Linter"}
	doc.Replace([]*Group{sampleGroup(), other})
	chain = doc.ChainAt(protocol.Position{Line: 1, Character: 0})
	if len(chain) != 2 || chain[0].Symbol != nil {
		t.Fatalf("expected leading group entry, got %+v", chain)
	}
	if chain[0].Group.Provider != "ts" {
		t.Fatalf("wrong group: %s", chain[0].Group.Provider)
	}
}

func TestContainsIsEndInclusive(t *testing.T) {
	r := span(1, 2, 3, 4)
	cases := []struct {
		pos  protocol.Position
		want bool
	}{
		{protocol.Position{Line: 1, Character: 2}, true},
		{protocol.Position{Line: 3, Character: 4}, true},
		{protocol.Position{Line: 1, Character: 1}, false},
		{protocol.Position{Line: 3, Character: 5}, false},
		{protocol.Position{Line: 2, Character: 0}, true},
		{protocol.Position{Line: 0, Character: 9}, false},
	}
	for _, tc := range cases {
		if got := Contains(r, tc.pos); got != tc.want {
			t.Errorf("Contains(%v): got %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestReplaceNotifiesListeners(t *testing.T) {
	doc := NewDocument()
	var fired int
	unsub := doc.OnChange(func() { fired++ })
	doc.Replace([]*Group{sampleGroup()})
	unsub()
	doc.Replace(nil)
	if fired != 1 {
		t.Fatalf("expected 1 notification, got %d", fired)
	}
}

func TestFromDocumentSymbolsAssignsStableIDs(t *testing.T) {
	symbols := []protocol.DocumentSymbol{
		{
			Name: "Greeter", Kind: outlineKindClass,
			Range: span(0, 0, 6, 1), SelectionRange: span(0, 6, 0, 13),
			Children: []protocol.DocumentSymbol{
				{Name: "greet", Kind: outlineKindMethod, Range: span(2, 1, 4, 2), SelectionRange: span(2, 1, 2, 6)},
				{Name: "greet", Kind: outlineKindMethod, Range: span(5, 1, 5, 9), SelectionRange: span(5, 1, 5, 6)},
			},
		},
	}
	group := FromDocumentSymbols("ts", "TypeScript", symbols)
	kids := group.Roots[0].Children
	if kids[0].ID == kids[1].ID {
		t.Fatalf("same-named siblings must get distinct IDs: %s", kids[0].ID)
	}
}

func TestScore(t *testing.T) {
	doc := NewDocument()
	if doc.Score("", "anything") != 0 {
		t.Fatal("empty filter should match everything")
	}
	if doc.Score("grt", "greet") < 0 {
		t.Fatal("subsequence should match")
	}
	if doc.Score("xyz", "greet") >= 0 {
		t.Fatal("non-match should score negative")
	}
}
