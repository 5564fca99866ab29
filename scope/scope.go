// Package scope implements the lexical scope chain and the scope-filler
// pre-pass that builds it. A Scope maps names to variable or function
// bindings and holds a non-owning pointer to its enclosing scope; no
// scope ever needs to know its children, so the whole tree can be torn
// down in one step by discarding the analysis record that references it.
package scope

import "strictasm/dialect"

// Variable is a binding for a declared variable.
type Variable struct {
	Name string
	Type dialect.Type
}

// Function is a binding for a declared function's signature.
type Function struct {
	Name    string
	Args    []dialect.Type
	Returns []dialect.Type
}

// Binding is exactly one of Variable or Function, never both.
type Binding struct {
	Variable *Variable
	Function *Function
}

func VariableBinding(v *Variable) *Binding { return &Binding{Variable: v} }
func FunctionBinding(f *Function) *Binding { return &Binding{Function: f} }

// Scope is one lexical scope: a flat name table plus a back-pointer to
// its enclosing scope. InsideFunction records whether this scope (or an
// ancestor) is a function body or virtual block, consulted by the
// resolver callback's insideFunction argument.
type Scope struct {
	Parent         *Scope
	InsideFunction bool
	names          map[string]*Binding
	order          []string // declaration order, for NumberOfVariables accounting
}

func newScope(parent *Scope, insideFunction bool) *Scope {
	return &Scope{
		Parent:         parent,
		InsideFunction: insideFunction,
		names:          make(map[string]*Binding),
	}
}

// Define inserts name -> binding if name is not already bound in this
// scope. It reports whether the insertion happened; a caller that cares
// about redeclaration can inspect the return value, but the analyzer
// itself never treats redeclaration within the same scope as an error,
// so the default behavior (first wins) is silent.
func (s *Scope) Define(name string, b *Binding) bool {
	if _, exists := s.names[name]; exists {
		return false
	}
	s.names[name] = b
	s.order = append(s.order, name)
	return true
}

// Lookup resolves name in this scope only (no walk to Parent).
func (s *Scope) Lookup(name string) (*Binding, bool) {
	b, ok := s.names[name]
	return b, ok
}

// Resolve walks the scope chain starting at s, returning the nearest
// binding for name.
func (s *Scope) Resolve(name string) (*Binding, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.names[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// NumberOfVariables counts the variable bindings declared directly in
// this scope (not ancestors). Function bindings never occupy stack slots
// and are excluded.
func (s *Scope) NumberOfVariables() int {
	n := 0
	for _, name := range s.order {
		if s.names[name].Variable != nil {
			n++
		}
	}
	return n
}
