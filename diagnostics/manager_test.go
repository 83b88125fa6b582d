package diagnostics

import (
	"io"
	"log"
	"testing"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func diag(msg string) protocol.Diagnostic {
	return protocol.Diagnostic{Message: msg}
}

func newTestManager() (*Manager, *MemorySink) {
	sink := NewMemorySink()
	return NewManager(sink, log.New(io.Discard, "", 0)), sink
}

func TestMergedOrderIsSemanticThenSyntax(t *testing.T) {
	m, sink := newTestManager()

	m.SyntaxReceived("a.ts", []protocol.Diagnostic{diag("s1")})
	m.SemanticReceived("a.ts", []protocol.Diagnostic{diag("m1")})

	got := sink.Get(uri.File("a.ts"))
	if len(got) != 2 || got[0].Message != "m1" || got[1].Message != "s1" {
		t.Fatalf("expected [m1 s1], got %+v", got)
	}
}

func TestPartialUpdateRecomputesInFull(t *testing.T) {
	m, sink := newTestManager()

	m.SemanticReceived("a.ts", []protocol.Diagnostic{diag("m1"), diag("m2")})
	m.SyntaxReceived("a.ts", []protocol.Diagnostic{diag("s1")})
	m.SemanticReceived("a.ts", []protocol.Diagnostic{diag("m3")})

	got := sink.Get(uri.File("a.ts"))
	if len(got) != 2 || got[0].Message != "m3" || got[1].Message != "s1" {
		t.Fatalf("expected full recompute [m3 s1], got %+v", got)
	}
}

func TestDisableValidationClearsAndGates(t *testing.T) {
	m, sink := newTestManager()

	m.SyntaxReceived("a.ts", []protocol.Diagnostic{diag("s1")})
	m.SetValidate(false)
	if sink.Len() != 0 {
		t.Fatal("disabling validation must clear the published set")
	}

	m.SyntaxReceived("a.ts", []protocol.Diagnostic{diag("s2")})
	if sink.Count(uri.File("a.ts")) != 0 {
		t.Fatal("receive while disabled must be a no-op")
	}
}

func TestReEnableDoesNotRepublish(t *testing.T) {
	m, sink := newTestManager()

	m.SemanticReceived("a.ts", []protocol.Diagnostic{diag("m1")})
	m.SetValidate(false)
	m.SetValidate(true)
	if sink.Len() != 0 {
		t.Fatal("re-enabling must not retroactively republish")
	}

	m.SemanticReceived("a.ts", []protocol.Diagnostic{diag("m2")})
	got := sink.Get(uri.File("a.ts"))
	if len(got) != 1 || got[0].Message != "m2" {
		t.Fatalf("expected fresh publish after re-enable, got %+v", got)
	}
}

func TestConfigDiagnosticsBypassGate(t *testing.T) {
	m, sink := newTestManager()

	m.SetValidate(false)
	m.ConfigFileDiagnosticsReceived("tsconfig.json", []protocol.Diagnostic{diag("bad config")})
	if sink.Count(uri.File("tsconfig.json")) != 1 {
		t.Fatal("config errors are always shown")
	}

	m.Delete("tsconfig.json")
	if sink.Count(uri.File("tsconfig.json")) != 0 {
		t.Fatal("delete bypasses the gate too")
	}
}

func TestReInitializeClearsEverything(t *testing.T) {
	m, sink := newTestManager()

	m.SyntaxReceived("a.ts", []protocol.Diagnostic{diag("s1")})
	m.SemanticReceived("b.ts", []protocol.Diagnostic{diag("m1")})
	m.ReInitialize()
	if sink.Len() != 0 {
		t.Fatal("reinitialize must clear the published set")
	}

	// Stored maps are gone as well: the next syntax receive publishes
	// without stale semantic leftovers.
	m.SyntaxReceived("a.ts", []protocol.Diagnostic{diag("s2")})
	got := sink.Get(uri.File("a.ts"))
	if len(got) != 1 || got[0].Message != "s2" {
		t.Fatalf("expected only fresh syntax, got %+v", got)
	}
}
