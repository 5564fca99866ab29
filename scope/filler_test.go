package scope

import (
	"testing"

	"strictasm/ast"
)

func TestFillBlockRegistersVariable(t *testing.T) {
	decl := &ast.VariableDeclaration{
		Variables: []*ast.TypedName{{Name: "x", Type: "u256"}},
	}
	root := &ast.Block{Statements: []ast.Statement{decl}}

	info, ok := NewFiller().Fill(root)
	if !ok {
		t.Fatal("Fill should always succeed")
	}

	sc, found := info.Scopes[root]
	if !found {
		t.Fatal("expected a scope for the root block")
	}
	b, found := sc.Lookup("x")
	if !found || b.Variable == nil || b.Variable.Type != "u256" {
		t.Errorf("Lookup(x) = %+v, %v", b, found)
	}
}

func TestFillFunctionDefinitionCreatesVirtualBlock(t *testing.T) {
	body := &ast.Block{}
	fn := &ast.FunctionDefinition{
		Name:    "f",
		Params:  []*ast.TypedName{{Name: "a", Type: "u256"}},
		Returns: []*ast.TypedName{{Name: "r", Type: "bool"}},
		Body:    body,
	}
	root := &ast.Block{Statements: []ast.Statement{fn}}

	info, _ := NewFiller().Fill(root)

	rootScope := info.Scopes[root]
	binding, found := rootScope.Lookup("f")
	if !found || binding.Function == nil {
		t.Fatalf("expected f to be registered as a function in the root scope")
	}
	if len(binding.Function.Args) != 1 || len(binding.Function.Returns) != 1 {
		t.Errorf("unexpected function signature: %+v", binding.Function)
	}

	virtual, found := info.VirtualBlocks[fn]
	if !found {
		t.Fatal("expected a virtual block for f")
	}
	if !virtual.InsideFunction {
		t.Error("a function's virtual block must be marked InsideFunction")
	}
	if _, found := virtual.Lookup("a"); !found {
		t.Error("expected parameter a in the virtual block")
	}
	if _, found := virtual.Lookup("r"); !found {
		t.Error("expected return variable r in the virtual block")
	}

	bodyScope, found := info.Scopes[body]
	if !found {
		t.Fatal("expected a scope for the function body")
	}
	if bodyScope.Parent != virtual {
		t.Error("the function body's scope must be parented under the virtual block")
	}
}

func TestFillForLoopSharesScopeBetweenBodyAndPost(t *testing.T) {
	pre := &ast.Block{}
	body := &ast.Block{}
	post := &ast.Block{}
	loop := &ast.ForLoop{Pre: pre, Body: body, Post: post}
	root := &ast.Block{Statements: []ast.Statement{loop}}

	info, _ := NewFiller().Fill(root)

	preScope := info.Scopes[pre]
	bodyScope := info.Scopes[body]
	postScope := info.Scopes[post]

	if bodyScope.Parent != preScope {
		t.Error("the loop body's scope must be a child of the pre-block's scope")
	}
	if postScope.Parent != preScope {
		t.Error("the loop post-block's scope must be a sibling of the body, both children of pre")
	}
}

func TestFillIfAndSwitchNestUnderEnclosingScope(t *testing.T) {
	ifBody := &ast.Block{}
	caseBody := &ast.Block{}
	stmt := &ast.If{Body: ifBody}
	sw := &ast.Switch{Cases: []*ast.Case{{Body: caseBody}}}
	root := &ast.Block{Statements: []ast.Statement{stmt, sw}}

	info, _ := NewFiller().Fill(root)

	if info.Scopes[ifBody].Parent != info.Scopes[root] {
		t.Error("an if body's scope must be a child of the enclosing block's scope")
	}
	if info.Scopes[caseBody].Parent != info.Scopes[root] {
		t.Error("a switch case's scope must be a child of the enclosing block's scope")
	}
}
