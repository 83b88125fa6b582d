package outline

import "go.lsp.dev/protocol"

// kindLabels maps the LSP numeric symbol kinds to short display labels.
var kindLabels = map[protocol.SymbolKind]string{
	1:  "file",
	2:  "module",
	3:  "namespace",
	4:  "package",
	5:  "class",
	6:  "method",
	7:  "property",
	8:  "field",
	9:  "constructor",
	10: "enum",
	11: "interface",
	12: "function",
	13: "variable",
	14: "constant",
	15: "string",
	16: "number",
	17: "boolean",
	18: "array",
	19: "object",
	20: "key",
	21: "null",
	22: "enum member",
	23: "struct",
	24: "event",
	25: "operator",
	26: "type parameter",
}

// KindLabel returns a short lowercase label for a symbol kind.
func KindLabel(kind protocol.SymbolKind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return "symbol"
}
