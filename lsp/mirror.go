package lsp

import (
	"context"
	"log"

	"github.com/lexcodex/crumb/editor"
)

// Mirror forwards document lifecycle and edits from a store to one server
// so the server's view of every open file stays current.
type Mirror struct {
	store  *editor.DocumentStore
	client *Client
	logger *log.Logger
	unhook func()
}

// NewMirror hooks the store; call Dispose to stop forwarding.
func NewMirror(store *editor.DocumentStore, client *Client, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.Default()
	}
	m := &Mirror{store: store, client: client, logger: logger}
	m.unhook = store.OnChange(m.forward)
	return m
}

// OpenDocument mirrors a document that is already in the store.
func (m *Mirror) OpenDocument(ctx context.Context, doc editor.Document) error {
	return m.client.DidOpen(ctx, doc.URI, doc.LanguageID, doc.Text, doc.Version)
}

func (m *Mirror) forward(ev editor.ChangeEvent) {
	doc, ok := m.store.Get(ev.URI)
	if !ok || doc.Version != ev.Version {
		return
	}
	if err := m.client.DidChange(context.Background(), ev.URI, ev.Version, doc.Text); err != nil {
		m.logger.Printf("lsp: didChange for %s: %v", ev.URI, err)
	}
}

// Dispose stops forwarding edits.
func (m *Mirror) Dispose() {
	if m.unhook != nil {
		m.unhook()
		m.unhook = nil
	}
}
