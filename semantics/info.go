package semantics

import (
	"strictasm/ast"
	"strictasm/scope"
)

// AnalysisInfo is the analyzer's output: one scope per block, one
// virtual scope per function definition, and the abstract stack height
// recorded after analyzing each node. Scopes and VirtualBlocks are
// populated by the scope filler as the first step of Analyze;
// StackHeights is populated by the walk itself.
type AnalysisInfo struct {
	Scopes        map[*ast.Block]*scope.Scope
	VirtualBlocks map[*ast.FunctionDefinition]*scope.Scope
	StackHeights  map[ast.Node]int
}

// NewInfo returns an analysis-info record ready for a single Analyze
// call. A fresh one is required per invocation: analyzer state is
// confined to one analysis and is never reused across programs.
func NewInfo() *AnalysisInfo {
	return &AnalysisInfo{
		Scopes:        map[*ast.Block]*scope.Scope{},
		VirtualBlocks: map[*ast.FunctionDefinition]*scope.Scope{},
		StackHeights:  map[ast.Node]int{},
	}
}
