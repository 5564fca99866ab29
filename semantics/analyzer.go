// Package semantics implements the tree walk: name resolution against
// the scope chain, type checking, abstract stack-balance verification,
// and per-node stack-height annotation. One method per node kind, a
// single error collector threaded through the whole walk, and a type
// switch driving dispatch.
package semantics

import (
	"fmt"
	"math/big"

	"strictasm/ast"
	"strictasm/dialect"
	"strictasm/internals"
	"strictasm/scope"
)

var maxUint256 = func() *big.Int {
	n := new(big.Int).Lsh(big.NewInt(1), 256)
	return n.Sub(n, big.NewInt(1))
}()

// Analyzer holds every piece of state the walk maintains simultaneously:
// the current scope, the analysis record under
// construction, the dialect and reporter collaborators, the abstract
// stack height, the current-expression type vector, the active-variable
// set, the optional resolver callback, the current for-loop (if any),
// and the target-machine feature flags.
type Analyzer struct {
	current   *scope.Scope
	info      *AnalysisInfo
	dialect   dialect.Dialect
	reporter  internals.Reporter
	resolver  Resolver
	dataNames map[string]struct{}
	version   dialect.Version

	stackHeight    int
	exprTypes      []dialect.Type
	active         map[*scope.Variable]bool
	currentForLoop *ast.ForLoop
}

// New constructs an analyzer for a single Analyze invocation. resolver and dataNames may be nil/empty.
func New(
	info *AnalysisInfo,
	reporter internals.Reporter,
	dia dialect.Dialect,
	resolver Resolver,
	dataNames map[string]struct{},
	version dialect.Version,
) *Analyzer {
	if dataNames == nil {
		dataNames = map[string]struct{}{}
	}
	return &Analyzer{
		info:      info,
		reporter:  reporter,
		dialect:   dia,
		resolver:  resolver,
		dataNames: dataNames,
		version:   version,
		active:    make(map[*scope.Variable]bool),
	}
}

// Analyze runs the scope filler and then the walk over root.
// It recovers internals.FatalCapacity, the reporter's one permitted
// non-local exit, and asserts the invariant that "no success" implies
// "at least one reported error".
func (a *Analyzer) Analyze(root *ast.Block) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(internals.FatalCapacity); ok {
				if !a.reporter.HasErrors() {
					panic("strictasm: fatal error detected, but no error is reported")
				}
				success = false
				return
			}
			panic(r)
		}
	}()

	filled, ok := scope.NewFiller().Fill(root)
	if !ok {
		return false
	}
	a.info.Scopes = filled.Scopes
	a.info.VirtualBlocks = filled.VirtualBlocks

	success = a.analyzeBlock(root)
	if !success && !a.reporter.HasErrors() {
		panic("strictasm: no success but no error")
	}
	return success && !a.reporter.HasErrors()
}

// AnalyzeStrict is the convenience entry point for callers that already
// know the program must be valid. It panics if the program is not
// accepted without diagnostics.
func AnalyzeStrict(dia dialect.Dialect, root *ast.Block, dataNames map[string]struct{}, version dialect.Version) *AnalysisInfo {
	reporter := internals.NewCollector(0)
	info := NewInfo()
	analyzer := New(info, reporter, dia, nil, dataNames, version)
	if !analyzer.Analyze(root) || reporter.HasErrors() {
		panic("strictasm: invalid assembly/strictasm code")
	}
	return info
}

func (a *Analyzer) record(n ast.Node, height int) {
	a.info.StackHeights[n] = height
}

// --- dispatch ---------------------------------------------------------

func (a *Analyzer) analyzeStatement(stmt ast.Statement) bool {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		return a.analyzeExpressionStatement(node)
	case *ast.Assignment:
		return a.analyzeAssignment(node)
	case *ast.VariableDeclaration:
		return a.analyzeVariableDeclaration(node)
	case *ast.FunctionDefinition:
		return a.analyzeFunctionDefinition(node)
	case *ast.If:
		return a.analyzeIf(node)
	case *ast.Switch:
		return a.analyzeSwitch(node)
	case *ast.ForLoop:
		return a.analyzeForLoop(node)
	case *ast.Break:
		a.record(node, a.stackHeight)
		return true
	case *ast.Continue:
		a.record(node, a.stackHeight)
		return true
	case *ast.Leave:
		a.record(node, a.stackHeight)
		return true
	case *ast.Block:
		return a.analyzeBlock(node)
	default:
		panic(fmt.Sprintf("strictasm: unexpected statement kind %T", stmt))
	}
}

func (a *Analyzer) analyzeExpression(expr ast.Expression) bool {
	switch node := expr.(type) {
	case *ast.Literal:
		return a.analyzeLiteral(node)
	case *ast.Identifier:
		return a.analyzeIdentifier(node)
	case *ast.FunctionCall:
		return a.analyzeFunctionCall(node)
	default:
		panic(fmt.Sprintf("strictasm: unexpected expression kind %T", expr))
	}
}

// --- literal expressions -----------------------------------------------

func (a *Analyzer) analyzeLiteral(lit *ast.Literal) bool {
	a.expectValidType(lit.Type, lit.Position)
	a.stackHeight++
	success := true

	switch lit.Kind {
	case ast.StringLiteral:
		if len(lit.Value) > 32 {
			a.reporter.TypeError(lit.Position, fmt.Sprintf("String literal too long (%d > 32)", len(lit.Value)))
			success = false
		}
	case ast.NumberLiteral:
		n, valid := new(big.Int).SetString(lit.Value, 10)
		if !valid || n.Sign() < 0 || n.Cmp(maxUint256) > 0 {
			a.reporter.TypeError(lit.Position, "Number literal too large (> 256 bits)")
			success = false
		}
	case ast.BooleanLiteral:
		if lit.Value != "true" && lit.Value != "false" {
			panic("strictasm: malformed boolean literal reached the analyzer")
		}
	}

	if success && !a.dialect.ValidTypeForLiteral(lit.Kind, lit.Value, lit.Type) {
		a.reporter.TypeError(lit.Position, fmt.Sprintf("Invalid type %q for literal %q.", lit.Type, lit.Value))
		success = false
	}

	a.record(lit, a.stackHeight)
	a.exprTypes = []dialect.Type{lit.Type}
	return success
}

// --- identifier expressions ----------------------------------------------

func (a *Analyzer) analyzeIdentifier(id *ast.Identifier) bool {
	success := true
	a.exprTypes = []dialect.Type{a.dialect.DefaultType()}

	if b, ok := a.current.Resolve(id.Name); ok {
		switch {
		case b.Variable != nil:
			if !a.active[b.Variable] {
				a.reporter.DeclarationError(id.Position, fmt.Sprintf("Variable %s used before it was declared.", id.Name))
				success = false
			}
			a.exprTypes = []dialect.Type{b.Variable.Type}
			a.stackHeight++
		case b.Function != nil:
			a.reporter.TypeError(id.Position, fmt.Sprintf("Function %s used without being called.", id.Name))
			success = false
		}
	} else {
		stackSize := 1
		known := false
		if a.resolver != nil {
			before := a.reporter.Count()
			size, ok := a.resolver(IdentifierRef{id.Name, id.Position}, RValue, a.current.InsideFunction)
			known = ok
			if ok {
				stackSize = size
			} else if before == a.reporter.Count() {
				a.reporter.DeclarationError(id.Position, "Identifier not found.")
			}
		} else {
			a.reporter.DeclarationError(id.Position, "Identifier not found.")
		}
		if !known {
			success = false
			stackSize = 1
		}
		a.stackHeight += stackSize
	}

	a.record(id, a.stackHeight)
	return success
}

// --- expression statements -----------------------------------------------

func (a *Analyzer) analyzeExpressionStatement(stmt *ast.ExpressionStatement) bool {
	initial := a.stackHeight
	success := a.analyzeExpression(stmt.Expression)
	if success && a.stackHeight != initial {
		diff := a.stackHeight - initial
		plural := "s"
		if diff == 1 {
			plural = ""
		}
		a.reporter.TypeError(stmt.Position, fmt.Sprintf(
			"Top-level expressions are not supposed to return values (this expression returns %d value%s). Use pop() or assign them.",
			diff, plural,
		))
		success = false
	}
	a.record(stmt, a.stackHeight)
	return success
}

// --- assignment -------------------------------------------------------

func (a *Analyzer) analyzeAssignment(asg *ast.Assignment) bool {
	expected := len(asg.Targets)
	height := a.stackHeight
	success := a.analyzeExpression(asg.Value)

	if a.stackHeight-height != expected {
		a.reporter.DeclarationError(asg.Position, fmt.Sprintf(
			"Variable count does not match number of values (%d vs. %d)", expected, a.stackHeight-height,
		))
		a.record(asg, a.stackHeight)
		return false
	}

	for i, target := range asg.Targets {
		givenType := a.dialect.DefaultType()
		if i < len(a.exprTypes) {
			givenType = a.exprTypes[i]
		}
		if !a.checkAssignment(target, givenType) {
			success = false
		}
	}
	a.record(asg, a.stackHeight)
	return success
}

// --- variable declaration ------------------------------------------------

func (a *Analyzer) analyzeVariableDeclaration(decl *ast.VariableDeclaration) bool {
	success := true

	if a.resolver != nil {
		for _, v := range decl.Variables {
			a.resolver(IdentifierRef{v.Name, v.Position}, VariableDeclarationContext, a.current.InsideFunction)
		}
	}

	numVars := len(decl.Variables)
	if decl.Value != nil {
		height := a.stackHeight
		success = a.analyzeExpression(decl.Value)
		numValues := a.stackHeight - height
		if numValues != numVars {
			a.reporter.DeclarationError(decl.Position, fmt.Sprintf(
				"Variable count mismatch: %d variables and %d values.", numVars, numValues,
			))
			a.stackHeight += numVars - numValues
			a.record(decl, a.stackHeight)
			return false
		}
	} else {
		a.stackHeight += numVars
	}

	for i, v := range decl.Variables {
		givenType := a.dialect.DefaultType()
		if i < len(a.exprTypes) {
			givenType = a.exprTypes[i]
		}
		a.expectValidType(v.Type, v.Position)
		if v.Type != givenType {
			a.reporter.TypeError(v.Position, fmt.Sprintf(
				"Assigning value of type %q to variable of type %q.", givenType, v.Type,
			))
			success = false
		}
		if b, ok := a.current.Lookup(v.Name); ok && b.Variable != nil {
			a.active[b.Variable] = true
		}
	}
	a.record(decl, a.stackHeight)
	return success
}

// --- function definition -------------------------------------------------

func (a *Analyzer) analyzeFunctionDefinition(fn *ast.FunctionDefinition) bool {
	virtual := a.info.VirtualBlocks[fn]

	for _, p := range fn.Params {
		a.expectValidType(p.Type, p.Position)
		if b, ok := virtual.Lookup(p.Name); ok && b.Variable != nil {
			a.active[b.Variable] = true
		}
	}
	for _, r := range fn.Returns {
		a.expectValidType(r.Type, r.Position)
		if b, ok := virtual.Lookup(r.Name); ok && b.Variable != nil {
			a.active[b.Variable] = true
		}
	}

	outerHeight := a.stackHeight
	a.stackHeight = len(fn.Params) + len(fn.Returns)

	success := true
	if fn.Body != nil {
		success = a.analyzeBlock(fn.Body)
	}

	a.stackHeight = outerHeight
	a.record(fn, a.stackHeight)
	return success
}

// --- function calls ------------------------------------------------------

func (a *Analyzer) analyzeFunctionCall(call *ast.FunctionCall) bool {
	success := true
	var paramTypes, returnTypes []dialect.Type
	needsLiteralArgs := false

	if bf, ok := a.dialect.Builtin(call.Callee); ok {
		paramTypes = bf.Parameters
		returnTypes = bf.Returns
		needsLiteralArgs = bf.LiteralArguments
	} else if b, ok := a.current.Resolve(call.Callee); ok {
		switch {
		case b.Variable != nil:
			a.reporter.TypeError(call.NamePos, "Attempt to call variable instead of function.")
			success = false
		case b.Function != nil:
			paramTypes = b.Function.Args
			returnTypes = b.Function.Returns
		}
	} else {
		if !a.warnOnInstructions(call.Callee, call.NamePos) {
			a.reporter.DeclarationError(call.NamePos, "Function not found.")
		}
		success = false
	}

	if success && len(call.Args) != len(paramTypes) {
		a.reporter.TypeError(call.NamePos, fmt.Sprintf(
			"Function expects %d arguments but got %d.", len(paramTypes), len(call.Args),
		))
		success = false
	}

	argTypes := make([]dialect.Type, len(call.Args))
	for i := len(call.Args) - 1; i >= 0; i-- {
		arg := call.Args[i]
		if !a.expectExpression(arg) {
			success = false
			continue
		}
		argTypes[i] = a.exprTypes[0]

		if needsLiteralArgs {
			lit, isLiteral := arg.(*ast.Literal)
			if !isLiteral {
				a.reporter.TypeError(call.NamePos, "Function expects direct literals as arguments.")
				success = false
			} else if _, known := a.dataNames[lit.Value]; !known {
				a.reporter.TypeError(call.NamePos, fmt.Sprintf("Unknown data object %q.", lit.Value))
				success = false
			}
		}
	}

	if success {
		for i := range paramTypes {
			if !a.expectType(paramTypes[i], argTypes[i], call.Args[i].Pos()) {
				success = false
			}
		}
	}

	a.stackHeight += len(returnTypes) - len(call.Args)
	a.record(call, a.stackHeight)

	if success {
		a.exprTypes = append([]dialect.Type(nil), returnTypes...)
	} else {
		a.exprTypes = make([]dialect.Type, len(returnTypes))
		for i := range a.exprTypes {
			a.exprTypes[i] = a.dialect.DefaultType()
		}
	}
	return success
}

// --- if statements ---------------------------------------------------------

func (a *Analyzer) analyzeIf(node *ast.If) bool {
	success := true
	initial := a.stackHeight

	if !a.expectExpression(node.Condition) {
		success = false
	} else if !a.expectType(a.dialect.BoolType(), a.exprTypes[0], node.Condition.Pos()) {
		success = false
	}
	a.stackHeight = initial

	if !a.analyzeBlock(node.Body) {
		success = false
	}
	a.record(node, a.stackHeight)
	return success
}

// --- switch statements -------------------------------------------------------

func (a *Analyzer) analyzeSwitch(sw *ast.Switch) bool {
	success := true
	initial := a.stackHeight

	if !a.expectExpression(sw.Expression) {
		success = false
	}
	valueType := a.dialect.DefaultType()
	if success {
		valueType = a.exprTypes[0]
	}

	for _, c := range sw.Cases {
		if c.Value != nil {
			if !a.expectType(valueType, c.Value.Type, c.Value.Position) {
				success = false
			}
		}
	}

	seen := map[string]bool{}
	for _, c := range sw.Cases {
		if c.Value != nil {
			caseHeight := a.stackHeight
			validCase := a.analyzeLiteral(c.Value)
			if !validCase {
				success = false
			}
			if !a.expectDeposit(1, caseHeight, c.Value.Position) {
				success = false
			}
			a.stackHeight--

			if validCase {
				key := literalDedupeKey(c.Value)
				if seen[key] {
					a.reporter.DeclarationError(c.Position, "Duplicate case defined.")
					success = false
				} else {
					seen[key] = true
				}
			}
		}
		if !a.analyzeBlock(c.Body) {
			success = false
		}
	}

	a.stackHeight = initial
	a.record(sw, a.stackHeight)
	return success
}

// literalDedupeKey computes the value a case literal is compared under
// for duplicate-case detection. Numbers are normalized through big.Int so "007" and
// "7" collide; strings and booleans use their literal text tagged with
// the literal kind, since the
// dialect-level encoding of non-numeric switch values is outside this
// analyzer's concern.
func literalDedupeKey(lit *ast.Literal) string {
	if lit.Kind == ast.NumberLiteral {
		if n, ok := new(big.Int).SetString(lit.Value, 10); ok {
			return n.String()
		}
	}
	return fmt.Sprintf("%d:%s", lit.Kind, lit.Value)
}

// --- for loops --------------------------------------------------------------

func (a *Analyzer) analyzeForLoop(loop *ast.ForLoop) bool {
	outerScope := a.current
	initial := a.stackHeight
	success := true

	if !a.analyzeBlock(loop.Pre) {
		success = false
	}

	preScope := a.info.Scopes[loop.Pre]
	a.stackHeight += preScope.NumberOfVariables()
	a.current = preScope

	if !a.expectExpression(loop.Condition) {
		success = false
	} else if !a.expectType(a.dialect.BoolType(), a.exprTypes[0], loop.Condition.Pos()) {
		success = false
	}
	a.stackHeight--

	outerForLoop := a.currentForLoop
	a.currentForLoop = loop

	if !a.analyzeBlock(loop.Body) {
		success = false
	}
	if !a.analyzeBlock(loop.Post) {
		success = false
	}

	a.stackHeight = initial
	a.record(loop, a.stackHeight)
	a.current = outerScope
	a.currentForLoop = outerForLoop
	return success
}

// --- blocks -------------------------------------------------------------------

func (a *Analyzer) analyzeBlock(block *ast.Block) bool {
	success := true
	previous := a.current
	a.current = a.info.Scopes[block]

	initial := a.stackHeight
	for _, stmt := range block.Statements {
		if !a.analyzeStatement(stmt) {
			success = false
		}
	}

	a.stackHeight -= a.current.NumberOfVariables()

	diff := a.stackHeight - initial
	if success && diff != 0 {
		var msg string
		if diff > 0 {
			msg = fmt.Sprintf("Unbalanced stack at the end of a block: %d surplus item(s).", diff)
		} else {
			msg = fmt.Sprintf("Unbalanced stack at the end of a block: %d missing item(s).", -diff)
		}
		a.reporter.DeclarationError(block.Position, msg)
		success = false
	}

	a.record(block, a.stackHeight)
	a.current = previous
	return success
}

// --- shared helpers ----------------------------------------------------

func (a *Analyzer) expectExpression(expr ast.Expression) bool {
	initial := a.stackHeight
	if !a.analyzeExpression(expr) {
		return false
	}
	return a.expectDeposit(1, initial, expr.Pos())
}

func (a *Analyzer) expectDeposit(deposit, oldHeight int, pos ast.Position) bool {
	if a.stackHeight-oldHeight != deposit {
		a.reporter.TypeError(pos, fmt.Sprintf(
			"Expected expression to return one item to the stack, but did return %d items.",
			a.stackHeight-oldHeight,
		))
		return false
	}
	return true
}

func (a *Analyzer) expectValidType(t dialect.Type, pos ast.Position) {
	if !a.dialect.ValidType(t) {
		a.reporter.TypeError(pos, fmt.Sprintf("%q is not a valid type (user defined types are not yet supported).", t))
	}
}

// expectType deliberately reproduces the upstream message's missing
// closing quote and period.
func (a *Analyzer) expectType(expected, given dialect.Type, pos ast.Position) bool {
	if expected != given {
		a.reporter.TypeError(pos, fmt.Sprintf(`Expected a value of type "%s" but got "%s`, expected, given))
		return false
	}
	return true
}

// --- assignment-target checking ------------------------------------------

func (a *Analyzer) checkAssignment(target *ast.Identifier, valueType dialect.Type) bool {
	success := true
	variableType := a.dialect.DefaultType()
	size := -1
	known := false

	if b, ok := a.current.Resolve(target.Name); ok {
		known = true
		size = 1
		if b.Variable == nil {
			a.reporter.TypeError(target.Position, "Assignment requires variable.")
			success = false
		} else if !a.active[b.Variable] {
			a.reporter.DeclarationError(target.Position, fmt.Sprintf("Variable %s used before it was declared.", target.Name))
			success = false
		} else {
			variableType = b.Variable.Type
		}
	} else if a.resolver != nil {
		before := a.reporter.Count()
		got, ok := a.resolver(IdentifierRef{target.Name, target.Position}, LValue, a.current.InsideFunction)
		known = ok
		if ok {
			size = got
		} else if before == a.reporter.Count() {
			a.reporter.DeclarationError(target.Position, "Variable not found or variable not lvalue.")
		}
	} else {
		a.reporter.DeclarationError(target.Position, "Variable not found or variable not lvalue.")
	}

	a.stackHeight--

	if !known {
		success = false
	} else if size != 1 {
		a.reporter.TypeError(target.Position, fmt.Sprintf("Variable size (%d) and value size (1) do not match.", size))
		success = false
	}

	if success && variableType != valueType {
		a.reporter.TypeError(target.Position, fmt.Sprintf(
			"Assigning a value of type %q to a variable of type %q.", valueType, variableType,
		))
		success = false
	}
	return success
}

// --- legacy-instruction warnings -------------------------------------------

func (a *Analyzer) warnOnInstructions(name string, pos ast.Position) bool {
	instr, ok := dialect.LookupReferenceInstruction(name)
	if !ok {
		return false
	}
	before := a.reporter.Count()

	// We assume returndata support and staticcall go together, and
	// bitwise shifting and create2 go together.
	if a.version.SupportsReturndata != a.version.HasStaticCall {
		panic("strictasm: inconsistent target version: returndata support must match staticcall support")
	}
	if a.version.HasBitwiseShifting != a.version.HasCreate2 {
		panic("strictasm: inconsistent target version: bitwise shifting support must match create2 support")
	}

	switch instr {
	case dialect.RETURNDATACOPY, dialect.RETURNDATASIZE:
		if !a.version.SupportsReturndata {
			a.vmError(instr, pos, "only available for Byzantium-compatible")
		}
	case dialect.STATICCALL:
		if !a.version.HasStaticCall {
			a.vmError(instr, pos, "only available for Byzantium-compatible")
		}
	case dialect.SHL, dialect.SHR, dialect.SAR:
		if !a.version.HasBitwiseShifting {
			a.vmError(instr, pos, "only available for Constantinople-compatible")
		}
	case dialect.CREATE2:
		if !a.version.HasCreate2 {
			a.vmError(instr, pos, "only available for Constantinople-compatible")
		}
	case dialect.EXTCODEHASH:
		if !a.version.HasExtCodeHash {
			a.vmError(instr, pos, "only available for Constantinople-compatible")
		}
	case dialect.CHAINID:
		if !a.version.HasChainID {
			a.vmError(instr, pos, "only available for Istanbul-compatible")
		}
	case dialect.SELFBALANCE:
		if !a.version.HasSelfBalance {
			a.vmError(instr, pos, "only available for Istanbul-compatible")
		}
	case dialect.JUMP, dialect.JUMPI, dialect.JUMPDEST:
		a.reporter.SyntaxError(pos,
			"Jump instructions and labels are low-level EVM features that can lead to incorrect "+
				"stack access. Because of that they are disallowed in strict assembly. Use functions, "+
				`"switch", "if" or "for" statements instead.`)
	default:
		return false
	}
	return a.reporter.Count() != before
}

func (a *Analyzer) vmError(instr dialect.Instruction, pos ast.Position, vmKind string) {
	a.reporter.TypeError(pos, fmt.Sprintf(
		"The %q instruction is %s VMs (you are currently compiling for %q).",
		instr.Name(), vmKind, a.version.Name,
	))
}
