package scope

import "strictasm/ast"

// Info is the part of the analysis record the filler is responsible for:
// one Scope per block, one virtual Scope per function definition.
type Info struct {
	Scopes        map[*ast.Block]*Scope
	VirtualBlocks map[*ast.FunctionDefinition]*Scope
}

func newInfo() *Info {
	return &Info{
		Scopes:        make(map[*ast.Block]*Scope),
		VirtualBlocks: make(map[*ast.FunctionDefinition]*Scope),
	}
}

// Filler is the scope-filler pre-pass. It walks
// the tree once, creating a scope for every block and every function's
// virtual block, and populating each with the variables and functions
// declared directly inside it. It never inspects types beyond copying
// their names into bindings, and it never activates a variable — that is
// the analyzer's job during the real walk.
type Filler struct {
	info *Info
}

// NewFiller returns a filler ready to run once over a root block.
func NewFiller() *Filler {
	return &Filler{info: newInfo()}
}

// Fill runs the pre-pass over root and returns the populated Info. This
// implementation has no failure mode of its own — malformed input is a
// parsing concern, handled upstream — but keeps a boolean result so a
// future filler that does validate structural invariants can report
// failure without changing callers.
func (f *Filler) Fill(root *ast.Block) (*Info, bool) {
	f.fillBlock(root, nil, false)
	return f.info, true
}

func (f *Filler) fillBlock(block *ast.Block, parent *Scope, insideFunction bool) *Scope {
	sc := newScope(parent, insideFunction)
	f.info.Scopes[block] = sc
	for _, stmt := range block.Statements {
		f.registerDeclaration(stmt, sc, insideFunction)
	}
	return sc
}

func (f *Filler) registerDeclaration(stmt ast.Statement, sc *Scope, insideFunction bool) {
	switch node := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, tn := range node.Variables {
			sc.Define(tn.Name, VariableBinding(&Variable{Name: tn.Name, Type: tn.Type}))
		}
	case *ast.FunctionDefinition:
		sc.Define(node.Name, FunctionBinding(&Function{
			Name:    node.Name,
			Args:    typesOf(node.Params),
			Returns: typesOf(node.Returns),
		}))

		virtual := newScope(sc, true)
		for _, p := range node.Params {
			virtual.Define(p.Name, VariableBinding(&Variable{Name: p.Name, Type: p.Type}))
		}
		for _, r := range node.Returns {
			virtual.Define(r.Name, VariableBinding(&Variable{Name: r.Name, Type: r.Type}))
		}
		f.info.VirtualBlocks[node] = virtual

		if node.Body != nil {
			f.fillBlock(node.Body, virtual, true)
		}
	case *ast.Block:
		f.fillBlock(node, sc, insideFunction)
	case *ast.If:
		f.fillBlock(node.Body, sc, insideFunction)
	case *ast.Switch:
		for _, c := range node.Cases {
			f.fillBlock(c.Body, sc, insideFunction)
		}
	case *ast.ForLoop:
		preScope := f.fillBlock(node.Pre, sc, insideFunction)
		f.fillBlock(node.Body, preScope, insideFunction)
		f.fillBlock(node.Post, preScope, insideFunction)
	default:
		// ExpressionStatement, Assignment, FunctionCall-as-statement,
		// Break, Continue, Leave declare nothing.
	}
}

func typesOf(names []*ast.TypedName) []string {
	types := make([]string, len(names))
	for i, n := range names {
		types[i] = n.Type
	}
	return types
}
