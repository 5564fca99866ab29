// Package dialect describes the pluggable contract the analyzer consults
// for primitive types and built-in operations. The dialect itself —
// concrete type sets, concrete built-in tables for a real target — is an
// external collaborator; this package fixes the interface, a small
// reference table used for the legacy-instruction warnings, and Basic, a
// small concrete dialect used by this module's tests.
package dialect

import "strictasm/ast"

// Type identifies a primitive type by name. Dialects are free to use any
// string; the analyzer only ever compares types for equality.
type Type = string

// BuiltinFunction describes one built-in operation: its parameter and
// return type vectors, whether it demands literal arguments (the
// data-object special case), and, for a legacy reference dialect, the
// machine instruction it lowers to.
type BuiltinFunction struct {
	Name             string
	Parameters       []Type
	Returns          []Type
	LiteralArguments bool
	Instruction      Instruction
}

// Dialect is the external contract the analyzer is built against. A real
// dialect (target primitive types, default/boolean type, built-in table,
// literal validity rules) is supplied by the embedding compiler.
type Dialect interface {
	// DefaultType is assigned to expressions the analyzer cannot type
	// more precisely (externally resolved identifiers, recovery after a
	// failed call-argument check).
	DefaultType() Type
	// BoolType is the type if and for-loop conditions must produce.
	BoolType() Type
	// ValidType reports whether t is one of the dialect's primitive
	// types.
	ValidType(t Type) bool
	// Builtin looks up a built-in function by name.
	Builtin(name string) (*BuiltinFunction, bool)
	// ValidTypeForLiteral reports whether the (kind, value, type) triple
	// is admissible for this dialect.
	ValidTypeForLiteral(kind ast.LiteralKind, value string, declared Type) bool
}
