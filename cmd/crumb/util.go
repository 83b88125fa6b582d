package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/editor"
	"github.com/lexcodex/crumb/lsp"
)

// languageForPath maps a file extension to an LSP language identifier.
func languageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return "typescript"
	case ".tsx":
		return "typescriptreact"
	case ".js":
		return "javascript"
	case ".jsx":
		return "javascriptreact"
	case ".html", ".htm":
		return "html"
	case ".xml":
		return "xml"
	default:
		return "plaintext"
	}
}

// serverForLanguage picks the launcher for a language identifier.
func serverForLanguage(language, root string, opts lsp.Options) (*lsp.Client, error) {
	switch language {
	case "typescript", "typescriptreact", "javascript", "javascriptreact":
		return lsp.NewTypeScriptClient(root, opts)
	case "html", "xml":
		return lsp.NewHTMLClient(root, opts)
	default:
		return nil, fmt.Errorf("no language server configured for %q", language)
	}
}

// openFile reads a file from disk into the store and returns its document.
func openFile(store *editor.DocumentStore, path string) (editor.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return editor.Document{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return editor.Document{}, err
	}
	docURI := protocol.DocumentURI(uri.File(abs))
	doc := store.Open(docURI, languageForPath(abs), string(data))
	return *doc, nil
}
