package lsp

import (
	"context"
	"log"
	"sync"
	"time"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/crumb/editor"
	"github.com/lexcodex/crumb/outline"
)

const outlineRefreshDelay = 250 * time.Millisecond

// OutlineSync keeps outline documents current: every edit schedules a
// debounced documentSymbol refresh for the changed file. A refresh that
// fails leaves the previous outline in place.
type OutlineSync struct {
	client  *Client
	resolve func(protocol.DocumentURI) *outline.Document
	logger  *log.Logger
	delay   time.Duration

	mu       sync.Mutex
	timers   map[protocol.DocumentURI]*time.Timer
	disposed bool
	unhook   func()
}

// NewOutlineSync hooks the store and returns the refresher.
func NewOutlineSync(store *editor.DocumentStore, client *Client, resolve func(protocol.DocumentURI) *outline.Document, logger *log.Logger) *OutlineSync {
	if logger == nil {
		logger = log.Default()
	}
	s := &OutlineSync{
		client:  client,
		resolve: resolve,
		logger:  logger,
		delay:   outlineRefreshDelay,
		timers:  make(map[protocol.DocumentURI]*time.Timer),
	}
	s.unhook = store.OnChange(func(ev editor.ChangeEvent) { s.schedule(ev.URI) })
	return s
}

// Refresh fetches symbols immediately, bypassing the debounce.
func (s *OutlineSync) Refresh(ctx context.Context, docURI protocol.DocumentURI) {
	doc := s.resolve(docURI)
	if doc == nil {
		return
	}
	group, err := s.client.DocumentSymbols(ctx, docURI)
	if err != nil {
		s.logger.Printf("lsp: documentSymbol %s: %v", docURI, err)
		return
	}
	doc.Replace([]*outline.Group{group})
}

func (s *OutlineSync) schedule(docURI protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	if timer, ok := s.timers[docURI]; ok {
		timer.Stop()
	}
	s.timers[docURI] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		disposed := s.disposed
		delete(s.timers, docURI)
		s.mu.Unlock()
		if disposed {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Refresh(ctx, docURI)
	})
}

// Dispose stops all pending refreshes and the edit listener.
func (s *OutlineSync) Dispose() {
	s.mu.Lock()
	s.disposed = true
	for docURI, timer := range s.timers {
		timer.Stop()
		delete(s.timers, docURI)
	}
	s.mu.Unlock()
	if s.unhook != nil {
		s.unhook()
		s.unhook = nil
	}
}
