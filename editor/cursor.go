package editor

import "go.lsp.dev/protocol"

// DocumentCursor narrows the store's selection stream to one document's
// primary cursor, the shape breadcrumb models consume.
type DocumentCursor struct {
	store *DocumentStore
	uri   protocol.DocumentURI
}

// Cursor returns a cursor view over the given document.
func (s *DocumentStore) Cursor(uri protocol.DocumentURI) *DocumentCursor {
	return &DocumentCursor{store: s, uri: uri}
}

// Current returns the primary cursor position.
func (c *DocumentCursor) Current() protocol.Position {
	sels := c.store.Selections(c.uri)
	if len(sels) == 0 {
		return protocol.Position{}
	}
	return sels[0]
}

// OnMove registers a listener for primary-cursor moves of this document.
func (c *DocumentCursor) OnMove(fn func(protocol.Position)) func() {
	return c.store.OnCursor(func(ev CursorEvent) {
		if ev.URI == c.uri && len(ev.Selections) > 0 {
			fn(ev.Selections[0])
		}
	})
}
