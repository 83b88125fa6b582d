// Package diagnostics merges per-file syntax and semantic diagnostic lists
// and republishes the union to a presentation sink keyed by URI.
package diagnostics

import (
	"log"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Sink is the presentation surface published diagnostics land on.
type Sink interface {
	Set(u uri.URI, diags []protocol.Diagnostic)
	Delete(u uri.URI)
	Clear()
}

// Manager keeps one diagnostic list per file and source kind and publishes
// the merged set. The merged list for a file is always semantic followed by
// syntax, recomputed in full on every partial update.
type Manager struct {
	mu       sync.Mutex
	validate bool
	syntax   map[string][]protocol.Diagnostic
	semantic map[string][]protocol.Diagnostic
	sink     Sink
	logger   *log.Logger
}

// NewManager returns a manager publishing into sink, with validation on.
func NewManager(sink Sink, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		validate: true,
		syntax:   make(map[string][]protocol.Diagnostic),
		semantic: make(map[string][]protocol.Diagnostic),
		sink:     sink,
		logger:   logger,
	}
}

// SyntaxReceived stores a syntax diagnostic list for file and republishes
// the merged set. No-op while validation is disabled.
func (m *Manager) SyntaxReceived(file string, diags []protocol.Diagnostic) {
	m.receive(m.syntax, file, diags)
}

// SemanticReceived stores a semantic diagnostic list for file and
// republishes the merged set. No-op while validation is disabled.
func (m *Manager) SemanticReceived(file string, diags []protocol.Diagnostic) {
	m.receive(m.semantic, file, diags)
}

func (m *Manager) receive(dst map[string][]protocol.Diagnostic, file string, diags []protocol.Diagnostic) {
	m.mu.Lock()
	if !m.validate {
		m.mu.Unlock()
		return
	}
	dst[file] = diags
	merged := m.mergedLocked(file)
	m.mu.Unlock()
	m.sink.Set(uri.File(file), merged)
}

// ConfigFileDiagnosticsReceived publishes project-configuration errors.
// Config errors are always shown, bypassing the validation gate.
func (m *Manager) ConfigFileDiagnosticsReceived(file string, diags []protocol.Diagnostic) {
	m.sink.Set(uri.File(file), diags)
}

// Delete removes a file's published diagnostics, bypassing the gate.
func (m *Manager) Delete(file string) {
	m.mu.Lock()
	delete(m.syntax, file)
	delete(m.semantic, file)
	m.mu.Unlock()
	m.sink.Delete(uri.File(file))
}

// SetValidate toggles publication. Disabling clears both stored mappings and
// the entire published set atomically; re-enabling does not retroactively
// republish, diagnostics reappear on the next receive call.
func (m *Manager) SetValidate(validate bool) {
	m.mu.Lock()
	changed := m.validate != validate
	m.validate = validate
	if changed && !validate {
		m.syntax = make(map[string][]protocol.Diagnostic)
		m.semantic = make(map[string][]protocol.Diagnostic)
	}
	m.mu.Unlock()
	if changed && !validate {
		m.sink.Clear()
	}
}

// ReInitialize drops all stored and published diagnostics unconditionally.
// Used when the language service restarts.
func (m *Manager) ReInitialize() {
	m.mu.Lock()
	m.syntax = make(map[string][]protocol.Diagnostic)
	m.semantic = make(map[string][]protocol.Diagnostic)
	m.mu.Unlock()
	m.sink.Clear()
	m.logger.Printf("diagnostics: reinitialized")
}

// mergedLocked recomputes semantic ++ syntax for file; missing entries are
// treated as empty.
func (m *Manager) mergedLocked(file string) []protocol.Diagnostic {
	semantic := m.semantic[file]
	syntax := m.syntax[file]
	merged := make([]protocol.Diagnostic, 0, len(semantic)+len(syntax))
	merged = append(merged, semantic...)
	merged = append(merged, syntax...)
	return merged
}
