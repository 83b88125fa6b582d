// Package tagclosing inserts the matching closing tag after the user types
// ">" or "/" in a markup document, asking the language service for the text.
package tagclosing

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/crumb/editor"
)

const debounceDelay = 100 * time.Millisecond

// LanguageService answers closing-tag requests. An error or empty result
// means "no suggestion" and is never surfaced to the user.
type LanguageService interface {
	ClosingTag(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (string, error)
	ProtocolVersion() int
}

// Gate decides whether the assistant applies to a language mode.
type Gate interface {
	TagClosingEnabled(languageID string) bool
}

// operation is the one in-flight unit: its debounce timer and the
// cancellation for the request it may issue. A new qualifying edit replaces
// the whole operation atomically, so there is never a window with a live
// timer but no cancel.
type operation struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

func (op *operation) stop() {
	if op == nil {
		return
	}
	if op.timer != nil {
		op.timer.Stop()
	}
	if op.cancel != nil {
		op.cancel()
	}
}

// Assistant watches document edits and drives the debounce/request cycle.
// At most one operation is live at a time.
type Assistant struct {
	store       *editor.DocumentStore
	svc         LanguageService
	gate        Gate
	minProtocol int
	logger      *log.Logger
	delay       time.Duration

	mu       sync.Mutex
	current  *operation
	disposed bool
	unhook   func()
}

// NewAssistant registers the edit listener and returns the assistant.
func NewAssistant(store *editor.DocumentStore, svc LanguageService, gate Gate, minProtocol int, logger *log.Logger) *Assistant {
	if logger == nil {
		logger = log.Default()
	}
	a := &Assistant{
		store:       store,
		svc:         svc,
		gate:        gate,
		minProtocol: minProtocol,
		logger:      logger,
		delay:       debounceDelay,
	}
	a.unhook = store.OnChange(a.handleChange)
	return a
}

// Dispose cancels any pending operation and unregisters the edit listener.
func (a *Assistant) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	current := a.current
	a.current = nil
	unhook := a.unhook
	a.unhook = nil
	a.mu.Unlock()

	current.stop()
	if unhook != nil {
		unhook()
	}
}

// handleChange filters edit batches down to the single triggering shape and
// arms the debounce.
func (a *Assistant) handleChange(ev editor.ChangeEvent) {
	active, ok := a.store.Active()
	if !ok || active.URI != ev.URI {
		return
	}
	if len(ev.Changes) == 0 {
		return
	}
	if a.svc.ProtocolVersion() < a.minProtocol {
		return
	}
	if a.gate != nil && !a.gate.TagClosingEnabled(active.LanguageID) {
		return
	}

	last := ev.Changes[len(ev.Changes)-1]
	if last.Range == nil || last.Range.Start != last.Range.End {
		return // replaced a range, not a pure insertion
	}
	if utf8.RuneCountInString(last.Text) != 1 {
		return
	}
	if !strings.HasSuffix(last.Text, ">") && !strings.HasSuffix(last.Text, "/") {
		return
	}
	// After a tag was just auto-closed the character left of the insertion
	// is ">"; re-triggering there would close twice.
	if priorCharacter(active.Text, last.Range.Start) == '>' {
		return
	}

	pos := protocol.Position{
		Line:      last.Range.Start.Line,
		Character: last.Range.Start.Character + 1,
	}
	a.arm(ev.URI, ev.Version, pos)
}

// arm atomically replaces the current operation with a fresh timer. When
// the timer fires the request is issued under the new operation's cancel.
func (a *Assistant) arm(uri protocol.DocumentURI, version int32, pos protocol.Position) {
	ctx, cancel := context.WithCancel(context.Background())
	op := &operation{cancel: cancel}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		cancel()
		return
	}
	prev := a.current
	a.current = op
	op.timer = time.AfterFunc(a.delay, func() {
		a.fire(ctx, op, uri, version, pos)
	})
	a.mu.Unlock()

	prev.stop()
}

// fire runs after the quiet period: one cancellable request, then the
// stale-response checks before inserting.
func (a *Assistant) fire(ctx context.Context, op *operation, uri protocol.DocumentURI, version int32, pos protocol.Position) {
	defer op.cancel() // the request is done once fire returns

	a.mu.Lock()
	if a.disposed || a.current != op {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	text, err := a.svc.ClosingTag(ctx, uri, pos)
	if err != nil || text == "" {
		if err != nil && ctx.Err() == nil {
			a.logger.Printf("tagclosing: request failed: %v", err)
		}
		return
	}

	a.mu.Lock()
	stale := a.disposed || a.current != op
	a.mu.Unlock()
	if stale {
		return
	}
	active, ok := a.store.Active()
	if !ok || active.URI != uri || active.Version != version {
		return // document changed underneath the request
	}

	// With a cursor sitting on the triggering position, every cursor gets
	// the tag; otherwise only the typed location does.
	positions := []protocol.Position{pos}
	sels := a.store.Selections(uri)
	for _, sel := range sels {
		if sel == pos {
			positions = sels
			break
		}
	}
	if err := a.store.InsertSnippet(uri, version, positions, text); err != nil {
		a.logger.Printf("tagclosing: insert skipped: %v", err)
	}
}

// priorCharacter returns the rune immediately before the insertion point,
// or 0 at the start of the document.
func priorCharacter(text string, pos protocol.Position) rune {
	offset := editor.OffsetAt(text, pos)
	if offset <= 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(text[:offset])
	return r
}
