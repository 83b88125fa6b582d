// Package lsp runs a language server as a child process and exposes the
// slices of its surface the editor chrome needs: document symbols for the
// outline, published diagnostics, and the closing-tag request the
// tag-closing assistant issues.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/outline"
)

// Config describes how to launch one language server.
type Config struct {
	Command    string
	Args       []string
	RootDir    string
	LanguageID string

	// Provider names the outline group this server contributes.
	Provider string
	Label    string
}

// DiagnosticsConsumer receives the server's published diagnostics, keyed by
// file path. Syntax and semantic reports are delivered separately so the
// consumer can merge them in a fixed order.
type DiagnosticsConsumer interface {
	SyntaxReceived(file string, diags []protocol.Diagnostic)
	SemanticReceived(file string, diags []protocol.Diagnostic)
	Delete(file string)
}

// Client owns the child process and its JSON-RPC connection.
type Client struct {
	cfg      Config
	cmd      *exec.Cmd
	conn     *jsonrpc2.Conn
	cancel   context.CancelFunc
	logger   *log.Logger
	consumer DiagnosticsConsumer

	mu       sync.Mutex
	opened   map[protocol.DocumentURI]bool
	protoVer int
}

// Options carries the optional collaborators for a client.
type Options struct {
	Diagnostics DiagnosticsConsumer
	Logger      *log.Logger
}

// closingTagParams is the payload of the custom tag/closingTag request.
type closingTagParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position               `json:"position"`
}

type closingTagResult struct {
	NewText string `json:"newText"`
}

// NewClient launches the configured server and performs the handshake.
func NewClient(cfg Config, opts Options) (*Client, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required for language server client")
	}
	if cfg.LanguageID == "" {
		return nil, errors.New("language id is required for language server client")
	}
	root := cfg.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = absRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	rwc := &stdioReadWriteCloser{reader: stdout, writer: stdin}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})

	client := &Client{
		cfg:      cfg,
		cmd:      cmd,
		cancel:   cancel,
		logger:   logger,
		consumer: opts.Diagnostics,
		opened:   make(map[protocol.DocumentURI]bool),
	}

	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if !req.Notif {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
		}
		switch req.Method {
		case "textDocument/publishDiagnostics":
			var params protocol.PublishDiagnosticsParams
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				return nil, err
			}
			client.publishDiagnostics(params)
			return nil, nil
		default:
			return nil, nil
		}
	})

	conn := jsonrpc2.NewConn(ctx, stream, handler)
	client.conn = conn

	go io.Copy(os.Stderr, stderr)

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	if err := client.initialize(ctx, absRoot); err != nil {
		cancel()
		_ = cmd.Process.Kill()
		return nil, err
	}

	return client, nil
}

func (c *Client) initialize(ctx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   protocol.DocumentURI(uri.File(root)),
		ClientInfo: &protocol.ClientInfo{
			Name:    "crumb",
			Version: "0.1",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				DocumentSymbol:     &protocol.DocumentSymbolClientCapabilities{},
				PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{},
			},
		},
	}
	var result protocol.InitializeResult
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	c.mu.Lock()
	c.protoVer = serverMajorVersion(result.ServerInfo)
	c.mu.Unlock()
	return c.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// serverMajorVersion reads the leading integer of the advertised server
// version. Servers that advertise nothing are assumed current.
func serverMajorVersion(info *protocol.ServerInfo) int {
	if info == nil || info.Version == "" {
		return 3
	}
	head := info.Version
	if i := strings.IndexByte(head, '.'); i >= 0 {
		head = head[:i]
	}
	major, err := strconv.Atoi(head)
	if err != nil {
		return 3
	}
	return major
}

// ProtocolVersion reports the server's major version from the handshake.
func (c *Client) ProtocolVersion() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protoVer
}

// Close terminates the child process and JSON-RPC connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_, _ = c.cmd.Process.Wait()
	}
	return nil
}

// publishDiagnostics routes a publish notification to the consumer. LSP
// does not label reports, so the diagnostic source field decides the lane:
// parser-level sources count as syntax, everything else as semantic.
func (c *Client) publishDiagnostics(params protocol.PublishDiagnosticsParams) {
	if c.consumer == nil {
		return
	}
	file := uri.URI(params.URI).Filename()
	var syntax, semantic []protocol.Diagnostic
	for _, d := range params.Diagnostics {
		if strings.Contains(strings.ToLower(d.Source), "syntax") {
			syntax = append(syntax, d)
			continue
		}
		semantic = append(semantic, d)
	}
	c.consumer.SyntaxReceived(file, syntax)
	c.consumer.SemanticReceived(file, semantic)
}

// DidOpen mirrors an opened document to the server.
func (c *Client) DidOpen(ctx context.Context, docURI protocol.DocumentURI, languageID, text string, version int32) error {
	c.mu.Lock()
	already := c.opened[docURI]
	c.opened[docURI] = true
	c.mu.Unlock()
	if already {
		return nil
	}
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        docURI,
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    version,
			Text:       text,
		},
	}
	return c.conn.Notify(ctx, "textDocument/didOpen", params)
}

// DidChange mirrors an edit as a full-document sync.
func (c *Client) DidChange(ctx context.Context, docURI protocol.DocumentURI, version int32, text string) error {
	params := protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	}
	return c.conn.Notify(ctx, "textDocument/didChange", params)
}

// DidClose tells the server the document went away and drops its
// diagnostics.
func (c *Client) DidClose(ctx context.Context, docURI protocol.DocumentURI) error {
	c.mu.Lock()
	delete(c.opened, docURI)
	c.mu.Unlock()
	if c.consumer != nil {
		c.consumer.Delete(uri.URI(docURI).Filename())
	}
	params := protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}
	return c.conn.Notify(ctx, "textDocument/didClose", params)
}

// DocumentSymbols fetches the symbol outline for a document. Servers answer
// either with a DocumentSymbol tree or a flat SymbolInformation list; both
// shapes are accepted.
func (c *Client) DocumentSymbols(ctx context.Context, docURI protocol.DocumentURI) (*outline.Group, error) {
	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}
	var raw json.RawMessage
	if err := c.conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return nil, err
	}
	return decodeSymbolResponse(c.provider(), c.label(), raw)
}

func decodeSymbolResponse(provider, label string, raw json.RawMessage) (*outline.Group, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &outline.Group{Provider: provider, Label: label}, nil
	}
	var docSymbols []protocol.DocumentSymbol
	if err := json.Unmarshal(raw, &docSymbols); err == nil && hierarchical(raw) {
		return outline.FromDocumentSymbols(provider, label, docSymbols), nil
	}
	var infoSymbols []protocol.SymbolInformation
	if err := json.Unmarshal(raw, &infoSymbols); err == nil {
		return outline.FromSymbolInformation(provider, label, infoSymbols), nil
	}
	return nil, errors.New("document symbol response not understood")
}

// hierarchical distinguishes the two response shapes: only the flat
// SymbolInformation form carries a location field.
func hierarchical(raw json.RawMessage) bool {
	var probe []struct {
		Location *json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	for _, entry := range probe {
		if entry.Location != nil {
			return false
		}
	}
	return true
}

// ClosingTag asks the server what closing tag completes the element open at
// pos. A null result or a request failure both mean "no tag here".
func (c *Client) ClosingTag(ctx context.Context, docURI protocol.DocumentURI, pos protocol.Position) (string, error) {
	params := closingTagParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		Position:     pos,
	}
	var result *closingTagResult
	if err := c.conn.Call(ctx, "tag/closingTag", params, &result); err != nil {
		c.logger.Printf("lsp: tag/closingTag failed: %v", err)
		return "", nil
	}
	if result == nil {
		return "", nil
	}
	return result.NewText, nil
}

func (c *Client) provider() string {
	if c.cfg.Provider != "" {
		return c.cfg.Provider
	}
	return c.cfg.LanguageID
}

func (c *Client) label() string {
	if c.cfg.Label != "" {
		return c.cfg.Label
	}
	return c.cfg.Command
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

// Known server launchers.

// NewTypeScriptClient starts typescript-language-server over stdio.
func NewTypeScriptClient(root string, opts Options) (*Client, error) {
	return NewClient(Config{
		Command:    "typescript-language-server",
		Args:       []string{"--stdio"},
		RootDir:    root,
		LanguageID: "typescriptreact",
		Provider:   "typescript",
		Label:      "TypeScript",
	}, opts)
}

// NewHTMLClient starts vscode-html-language-server over stdio.
func NewHTMLClient(root string, opts Options) (*Client, error) {
	return NewClient(Config{
		Command:    "vscode-html-language-server",
		Args:       []string{"--stdio"},
		RootDir:    root,
		LanguageID: "html",
		Provider:   "html",
		Label:      "HTML",
	}, opts)
}
