// Package internals implements the error-reporter contract the analyzer
// is built against. A real error sink belongs to the embedding compiler;
// Collector is the concrete, capacity-bounded implementation this
// module's own tests run the analyzer against.
package internals

import (
	"fmt"

	"strictasm/ast"
)

// Kind classifies a diagnostic.
type Kind int

const (
	Type Kind = iota
	Declaration
	Syntax
	Other
)

func (k Kind) String() string {
	switch k {
	case Type:
		return "type"
	case Declaration:
		return "declaration"
	case Syntax:
		return "syntax"
	default:
		return "other"
	}
}

// Diagnostic is one recorded violation: a kind, a source location, and a
// human-readable message.
type Diagnostic struct {
	Kind     Kind
	Position ast.Position
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Kind, d.Position.Line, d.Position.Column, d.Message)
}

// FatalCapacity is the distinguished non-local-exit condition a Reporter
// may raise when it has accumulated more diagnostics than it is willing
// to hold. The top-level Analyze entry point is the only place that
// recovers it.
type FatalCapacity struct{}

func (FatalCapacity) Error() string { return "error reporter exceeded its capacity" }

// Reporter is the contract the analyzer is built against. Count lets the analyzer detect whether a
// resolver callback already recorded its own diagnostic before the
// analyzer would otherwise add a generic one.
type Reporter interface {
	TypeError(pos ast.Position, message string)
	DeclarationError(pos ast.Position, message string)
	SyntaxError(pos ast.Position, message string)
	Report(kind Kind, pos ast.Position, message string)
	HasErrors() bool
	Count() int
}

// Collector is a Reporter that keeps every diagnostic in memory and
// panics with FatalCapacity once more than Capacity have accumulated.
// Capacity <= 0 means unlimited.
type Collector struct {
	Diagnostics []Diagnostic
	Capacity    int
}

// NewCollector returns an empty Collector. A non-positive capacity means
// unbounded.
func NewCollector(capacity int) *Collector {
	return &Collector{Capacity: capacity}
}

func (c *Collector) Report(kind Kind, pos ast.Position, message string) {
	c.Diagnostics = append(c.Diagnostics, Diagnostic{Kind: kind, Position: pos, Message: message})
	if c.Capacity > 0 && len(c.Diagnostics) > c.Capacity {
		panic(FatalCapacity{})
	}
}

func (c *Collector) TypeError(pos ast.Position, message string)        { c.Report(Type, pos, message) }
func (c *Collector) DeclarationError(pos ast.Position, message string) { c.Report(Declaration, pos, message) }
func (c *Collector) SyntaxError(pos ast.Position, message string)      { c.Report(Syntax, pos, message) }

func (c *Collector) HasErrors() bool { return len(c.Diagnostics) > 0 }

func (c *Collector) Count() int { return len(c.Diagnostics) }
