package editor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
)

// Document tracks one open file from the editor.
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Text       string
}

// Change is one content change inside an edit batch. A nil Range replaces the
// whole document; Start==End means a pure insertion.
type Change struct {
	Range *protocol.Range
	Text  string
}

// ChangeEvent is published after a document edit batch has been applied.
type ChangeEvent struct {
	URI     protocol.DocumentURI
	Version int32
	Changes []Change
}

// CursorEvent is published when the selection set of a document moves.
type CursorEvent struct {
	URI        protocol.DocumentURI
	Selections []protocol.Position
}

// DocumentStore owns open documents, the active document, and per-document
// selection sets. Dispatch is single-threaded from the host loop; the mutex
// only protects against read access from other goroutines.
type DocumentStore struct {
	mu         sync.RWMutex
	docs       map[protocol.DocumentURI]*Document
	active     protocol.DocumentURI
	selections map[protocol.DocumentURI][]protocol.Position

	changeSubs *subscribers[ChangeEvent]
	cursorSubs *subscribers[CursorEvent]
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:       make(map[protocol.DocumentURI]*Document),
		selections: make(map[protocol.DocumentURI][]protocol.Position),
		changeSubs: newSubscribers[ChangeEvent](),
		cursorSubs: newSubscribers[CursorEvent](),
	}
}

// Open registers a document and makes it active.
func (s *DocumentStore) Open(uri protocol.DocumentURI, languageID, text string) *Document {
	s.mu.Lock()
	doc := &Document{URI: uri, LanguageID: languageID, Version: 1, Text: text}
	s.docs[uri] = doc
	s.active = uri
	s.selections[uri] = []protocol.Position{{}}
	s.mu.Unlock()
	return doc
}

// Close drops a document. Closing the active document clears the active slot.
func (s *DocumentStore) Close(uri protocol.DocumentURI) {
	s.mu.Lock()
	delete(s.docs, uri)
	delete(s.selections, uri)
	if s.active == uri {
		s.active = ""
	}
	s.mu.Unlock()
}

// Get returns a snapshot of the document, if open.
func (s *DocumentStore) Get(uri protocol.DocumentURI) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Active returns a snapshot of the active document.
func (s *DocumentStore) Active() (Document, bool) {
	s.mu.RLock()
	uri := s.active
	s.mu.RUnlock()
	if uri == "" {
		return Document{}, false
	}
	return s.Get(uri)
}

// SetActive switches the active document. Unknown URIs are ignored.
func (s *DocumentStore) SetActive(uri protocol.DocumentURI) {
	s.mu.Lock()
	if _, ok := s.docs[uri]; ok {
		s.active = uri
	}
	s.mu.Unlock()
}

// Apply mutates the document with an edit batch, bumps its version, and
// notifies change subscribers.
func (s *DocumentStore) Apply(uri protocol.DocumentURI, changes []Change) (int32, error) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return 0, fmt.Errorf("document %s not tracked", uri)
	}
	for _, change := range changes {
		if change.Range == nil {
			doc.Text = change.Text
			continue
		}
		start := OffsetAt(doc.Text, change.Range.Start)
		end := OffsetAt(doc.Text, change.Range.End)
		doc.Text = doc.Text[:start] + change.Text + doc.Text[end:]
	}
	doc.Version++
	version := doc.Version
	s.mu.Unlock()

	s.changeSubs.publish(ChangeEvent{URI: uri, Version: version, Changes: changes})
	return version, nil
}

// ApplyEdits applies text edits against an expected version. A version
// mismatch means the edits were computed against stale content and they are
// rejected wholesale.
func (s *DocumentStore) ApplyEdits(uri protocol.DocumentURI, version int32, edits []protocol.TextEdit) error {
	s.mu.RLock()
	doc, ok := s.docs[uri]
	var current int32
	if ok {
		current = doc.Version
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("document %s not tracked", uri)
	}
	if current != version {
		return ErrStaleEdit
	}

	// Apply bottom-up so earlier edits keep their offsets valid.
	ordered := make([]protocol.TextEdit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return comparePosition(ordered[i].Range.Start, ordered[j].Range.Start) > 0
	})
	changes := make([]Change, 0, len(ordered))
	for _, edit := range ordered {
		r := edit.Range
		changes = append(changes, Change{Range: &r, Text: edit.NewText})
	}
	_, err := s.Apply(uri, changes)
	return err
}

// Selections returns the cursor set of a document, primary first.
func (s *DocumentStore) Selections(uri protocol.DocumentURI) []protocol.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sels := s.selections[uri]
	out := make([]protocol.Position, len(sels))
	copy(out, sels)
	return out
}

// SetSelections replaces the cursor set and notifies cursor subscribers.
func (s *DocumentStore) SetSelections(uri protocol.DocumentURI, positions []protocol.Position) {
	if len(positions) == 0 {
		positions = []protocol.Position{{}}
	}
	s.mu.Lock()
	if _, ok := s.docs[uri]; !ok {
		s.mu.Unlock()
		return
	}
	sels := make([]protocol.Position, len(positions))
	copy(sels, positions)
	s.selections[uri] = sels
	s.mu.Unlock()

	s.cursorSubs.publish(CursorEvent{URI: uri, Selections: sels})
}

// OnChange registers a change listener and returns its unregister func.
func (s *DocumentStore) OnChange(fn func(ChangeEvent)) func() {
	return s.changeSubs.add(fn)
}

// OnCursor registers a cursor listener and returns its unregister func.
func (s *DocumentStore) OnCursor(fn func(CursorEvent)) func() {
	return s.cursorSubs.add(fn)
}

// OffsetAt converts an LSP position to a byte offset in text. Positions past
// the end of a line or of the document clamp.
func OffsetAt(text string, pos protocol.Position) int {
	offset := 0
	remaining := text
	for line := uint32(0); line < pos.Line; line++ {
		idx := strings.IndexByte(remaining, '\n')
		if idx < 0 {
			return len(text)
		}
		offset += idx + 1
		remaining = remaining[idx+1:]
	}
	lineEnd := strings.IndexByte(remaining, '\n')
	if lineEnd < 0 {
		lineEnd = len(remaining)
	}
	col := int(pos.Character)
	if col > lineEnd {
		col = lineEnd
	}
	return offset + col
}

// PositionAt converts a byte offset back to an LSP position.
func PositionAt(text string, offset int) protocol.Position {
	if offset > len(text) {
		offset = len(text)
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n")
	lastNL := strings.LastIndexByte(prefix, '\n')
	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(offset - lastNL - 1),
	}
}

func comparePosition(a, b protocol.Position) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	if a.Character != b.Character {
		if a.Character < b.Character {
			return -1
		}
		return 1
	}
	return 0
}
