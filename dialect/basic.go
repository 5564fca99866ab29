package dialect

import (
	"math/big"
	"strictasm/ast"
)

// Basic is a small, self-contained Dialect used by this module's own test
// suite. It is not the dialect an embedding compiler is expected to use
// in production, but every analyzer behavior needs *some* concrete
// Dialect to exercise, the same way a type-checker's own test suite
// builds small throwaway symbol tables rather than importing a real
// runtime.
type Basic struct {
	Default  Type
	Bool     Type
	Types    map[Type]bool
	Builtins map[string]*BuiltinFunction
}

// NewBasic returns a dialect with a u256-like default type, a bool type,
// and no built-ins; call RegisterBuiltin to add them.
func NewBasic() *Basic {
	return &Basic{
		Default:  "u256",
		Bool:     "bool",
		Types:    map[Type]bool{"u256": true, "bool": true},
		Builtins: map[string]*BuiltinFunction{},
	}
}

func (b *Basic) DefaultType() Type { return b.Default }
func (b *Basic) BoolType() Type    { return b.Bool }

func (b *Basic) ValidType(t Type) bool { return b.Types[t] }

func (b *Basic) Builtin(name string) (*BuiltinFunction, bool) {
	fn, ok := b.Builtins[name]
	return fn, ok
}

// RegisterBuiltin adds or replaces a built-in function descriptor.
func (b *Basic) RegisterBuiltin(fn *BuiltinFunction) {
	b.Builtins[fn.Name] = fn
}

// RegisterType adds a primitive type to the dialect's valid set.
func (b *Basic) RegisterType(t Type) {
	b.Types[t] = true
}

// ValidTypeForLiteral enforces the rules left to the dialect: every
// literal needs a declared type the dialect recognizes; numbers must also
// parse as non-negative decimal integers (the 256-bit range check itself
// is the analyzer's job, see semantics.Analyzer.analyzeLiteral), booleans
// must be "true" or "false", and strings need nothing further.
func (b *Basic) ValidTypeForLiteral(kind ast.LiteralKind, value string, declared Type) bool {
	if !b.Types[declared] {
		return false
	}
	switch kind {
	case ast.NumberLiteral:
		n, ok := new(big.Int).SetString(value, 10)
		return ok && n.Sign() >= 0
	case ast.StringLiteral:
		return true
	case ast.BooleanLiteral:
		return value == "true" || value == "false"
	default:
		return false
	}
}
