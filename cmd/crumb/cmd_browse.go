package main

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/breadcrumbs"
	"github.com/lexcodex/crumb/diagnostics"
	"github.com/lexcodex/crumb/editor"
	"github.com/lexcodex/crumb/history"
	"github.com/lexcodex/crumb/lsp"
	"github.com/lexcodex/crumb/outline"
	"github.com/lexcodex/crumb/picker"
	"github.com/lexcodex/crumb/tagclosing"
	"github.com/lexcodex/crumb/tui"
	"github.com/lexcodex/crumb/workspace"
)

// storeGroup exposes the document store as the editor group the breadcrumb
// control binds to.
type storeGroup struct {
	store *editor.DocumentStore

	mu       sync.Mutex
	outlines map[uri.URI]*outline.Document
}

func (g *storeGroup) ActiveResource() (uri.URI, bool) {
	doc, ok := g.store.Active()
	if !ok {
		return "", false
	}
	return uri.URI(doc.URI), true
}

func (g *storeGroup) OutlineFor(res uri.URI) outline.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.outlines[res]
	if !ok {
		return nil
	}
	return doc
}

func (g *storeGroup) CursorFor(res uri.URI) breadcrumbs.CursorSource {
	return g.store.Cursor(protocol.DocumentURI(res))
}

func (g *storeGroup) outlineDocument(res uri.URI) *outline.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.outlines[res]
	if !ok {
		doc = outline.NewDocument()
		g.outlines[res] = doc
	}
	return doc
}

// storeNavigator applies navigation by switching the active document and
// moving the cursor.
type storeNavigator struct {
	store *editor.DocumentStore
}

func (n *storeNavigator) OpenResource(res uri.URI) error {
	n.store.SetActive(protocol.DocumentURI(res))
	return nil
}

func (n *storeNavigator) OpenWithSelection(res uri.URI, selection protocol.Range) error {
	docURI := protocol.DocumentURI(res)
	n.store.SetActive(docURI)
	n.store.SetSelections(docURI, []protocol.Position{selection.Start})
	return nil
}

// noKeys discards context-key updates; the TUI has no keybinding service.
type noKeys struct{}

func (noKeys) Set(string, bool) {}

func newBrowseCmd() *cobra.Command {
	var withServer bool
	cmd := &cobra.Command{
		Use:   "browse [files...]",
		Short: "Open files in the breadcrumb navigator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one file is required")
			}
			if !appConfig.Breadcrumbs.Enabled {
				return errors.New("breadcrumbs are disabled in the workspace config")
			}
			logger := newLogger()

			store := editor.NewDocumentStore()
			group := &storeGroup{store: store, outlines: make(map[uri.URI]*outline.Document)}
			folders := workspace.NewFolders(flagWorkspace)

			var docs []editor.Document
			for _, path := range args {
				doc, err := openFile(store, path)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			store.SetActive(docs[0].URI)

			sink := diagnostics.NewMemorySink()
			manager := diagnostics.NewManager(sink, logger)
			manager.SetValidate(appConfig.Validate.Enabled)

			if withServer {
				if err := attachServer(cmd.Context(), store, group, manager, docs, logger); err != nil {
					logger.Printf("language server unavailable: %v", err)
				}
			}

			var recorder breadcrumbs.Recorder
			if appConfig.History.Path != "" {
				histStore, err := history.NewStore(appConfig.History.Path, appConfig.History.Keep, logger)
				if err != nil {
					logger.Printf("history disabled: %v", err)
				} else {
					defer histStore.Close()
					recorder = histStore
					restoreLastLocation(store, histStore, docs)
				}
			}

			overlay := &tui.OverlayPickers{Errors: picker.LogErrorSink{Logger: logger}}
			control := breadcrumbs.NewControl(breadcrumbs.ControlOptions{
				Group:    group,
				Folders:  folders,
				Config:   appConfig,
				Nav:      &storeNavigator{store: store},
				Keys:     noKeys{},
				Pickers:  overlay,
				Recorder: recorder,
				Logger:   logger,
			})
			defer control.Dispose()

			return tui.Run(cmd.Context(), tui.ModelOptions{
				Control: control,
				Overlay: overlay,
				Sink:    sink,
				Resource: func() (uri.URI, bool) {
					return group.ActiveResource()
				},
			})
		},
	}
	cmd.Flags().BoolVar(&withServer, "server", true, "Start a language server for outlines, diagnostics, and tag closing")
	return cmd
}

// attachServer starts one language server for the first document's language
// and wires its outline, diagnostics, and tag-closing surfaces.
func attachServer(ctx context.Context, store *editor.DocumentStore, group *storeGroup, manager *diagnostics.Manager, docs []editor.Document, logger *log.Logger) error {
	client, err := serverForLanguage(docs[0].LanguageID, flagWorkspace, lsp.Options{
		Diagnostics: manager,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	mirror := lsp.NewMirror(store, client, logger)
	sync := lsp.NewOutlineSync(store, client, func(docURI protocol.DocumentURI) *outline.Document {
		return group.outlineDocument(uri.URI(docURI))
	}, logger)
	for _, doc := range docs {
		if err := mirror.OpenDocument(ctx, doc); err != nil {
			logger.Printf("didOpen %s: %v", doc.URI, err)
			continue
		}
		sync.Refresh(ctx, doc.URI)
	}

	assistant := tagclosing.NewAssistant(store, client, appConfig, appConfig.TagClosing.MinProtocol, logger)
	go func() {
		<-ctx.Done()
		assistant.Dispose()
		sync.Dispose()
		mirror.Dispose()
	}()
	return nil
}

// restoreLastLocation re-activates the most recently visited of the opened
// files, cursor included for symbol visits.
func restoreLastLocation(store *editor.DocumentStore, histStore *history.Store, docs []editor.Document) {
	visits, err := histStore.Recent(1)
	if err != nil || len(visits) == 0 {
		return
	}
	last := visits[0]
	for _, doc := range docs {
		if uri.URI(doc.URI) != last.Resource {
			continue
		}
		store.SetActive(doc.URI)
		if last.Kind == "symbol" {
			store.SetSelections(doc.URI, []protocol.Position{{Line: uint32(last.Line)}})
		}
		return
	}
}

func newLogger() *log.Logger {
	out := os.Stderr
	if appConfig.Logging.File != "" {
		if f, err := os.OpenFile(appConfig.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			out = f
		}
	}
	return log.New(out, "crumb ", log.LstdFlags)
}
