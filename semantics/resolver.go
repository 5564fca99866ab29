package semantics

import "strictasm/ast"

// Context distinguishes the three situations in which the analyzer may
// consult the resolver callback.
type Context int

const (
	RValue Context = iota
	LValue
	VariableDeclarationContext
)

func (c Context) String() string {
	switch c {
	case RValue:
		return "r-value"
	case LValue:
		return "l-value"
	case VariableDeclarationContext:
		return "variable-declaration"
	default:
		return "unknown"
	}
}

// IdentifierRef names the identifier a Resolver is being asked about.
type IdentifierRef struct {
	Name     string
	Position ast.Position
}

// Resolver is consulted for identifiers the scope chain cannot place —
// names supplied externally by the embedding compiler. It returns the
// number of stack slots the identifier occupies and true, or any value
// and false for the "unknown" sentinel. A resolver that wants to
// suppress the analyzer's generic diagnostic must record its own
// before returning.
type Resolver func(id IdentifierRef, ctx Context, insideFunction bool) (stackSize int, known bool)
