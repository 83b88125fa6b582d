package editor

import (
	"errors"
	"strings"

	"go.lsp.dev/protocol"
)

// ErrStaleEdit rejects edits computed against an outdated document version.
var ErrStaleEdit = errors.New("editor: document version advanced")

// ExpandSnippet strips snippet placeholders from template text, returning the
// plain insert text and the offset the cursor should land on. Only the
// tab-stop forms ($0, $1, ${1:label}) used by closing-tag templates are
// understood.
func ExpandSnippet(template string) (string, int) {
	var b strings.Builder
	cursor := -1
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '$' || i+1 >= len(template) {
			b.WriteByte(ch)
			continue
		}
		next := template[i+1]
		switch {
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(template) && template[j] >= '0' && template[j] <= '9' {
				j++
			}
			if cursor < 0 {
				cursor = b.Len()
			}
			i = j - 1
		case next == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				b.WriteByte(ch)
				continue
			}
			body := template[i+2 : i+end]
			if colon := strings.IndexByte(body, ':'); colon >= 0 {
				b.WriteString(body[colon+1:])
			}
			if cursor < 0 {
				cursor = b.Len()
			}
			i += end
		default:
			b.WriteByte(ch)
		}
	}
	if cursor < 0 {
		cursor = b.Len()
	}
	return b.String(), cursor
}

// InsertSnippet expands the template and inserts it at every given position,
// guarded by the expected document version.
func (s *DocumentStore) InsertSnippet(uri protocol.DocumentURI, version int32, positions []protocol.Position, template string) error {
	if len(positions) == 0 {
		return nil
	}
	text, _ := ExpandSnippet(template)
	edits := make([]protocol.TextEdit, 0, len(positions))
	for _, pos := range positions {
		edits = append(edits, protocol.TextEdit{
			Range:   protocol.Range{Start: pos, End: pos},
			NewText: text,
		})
	}
	return s.ApplyEdits(uri, version, edits)
}
