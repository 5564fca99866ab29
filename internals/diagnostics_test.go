package internals

import (
	"testing"

	"github.com/go-test/deep"

	"strictasm/ast"
)

func TestCollectorAccumulates(t *testing.T) {
	c := NewCollector(0)
	pos := ast.Position{Line: 1, Column: 2}

	c.TypeError(pos, "bad type")
	c.DeclarationError(pos, "bad declaration")
	c.SyntaxError(pos, "bad syntax")

	want := []Diagnostic{
		{Kind: Type, Position: pos, Message: "bad type"},
		{Kind: Declaration, Position: pos, Message: "bad declaration"},
		{Kind: Syntax, Position: pos, Message: "bad syntax"},
	}

	if diff := deep.Equal(c.Diagnostics, want); diff != nil {
		t.Error(diff)
	}
	if !c.HasErrors() {
		t.Error("expected HasErrors to be true")
	}
	if c.Count() != 3 {
		t.Errorf("Count() = %d, want 3", c.Count())
	}
}

func TestCollectorEmpty(t *testing.T) {
	c := NewCollector(0)
	if c.HasErrors() {
		t.Error("fresh collector should have no errors")
	}
	if c.Count() != 0 {
		t.Errorf("Count() = %d, want 0", c.Count())
	}
}

func TestCollectorFatalCapacity(t *testing.T) {
	c := NewCollector(2)
	pos := ast.Position{}

	c.TypeError(pos, "one")
	c.TypeError(pos, "two")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic once capacity is exceeded")
		}
		if _, ok := r.(FatalCapacity); !ok {
			t.Fatalf("expected FatalCapacity, got %T", r)
		}
	}()
	c.TypeError(pos, "three")
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Kind: Type, Position: ast.Position{Line: 3, Column: 4}, Message: "oops"}
	want := "type:3:4: oops"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
