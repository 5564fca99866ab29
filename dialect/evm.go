package dialect

import "strictasm/ast"

// Instruction identifies a target machine instruction a legacy built-in
// lowers to. The zero value means "no instruction" (an ordinary
// built-in or user function).
type Instruction int

const (
	NoInstruction Instruction = iota
	RETURNDATACOPY
	RETURNDATASIZE
	STATICCALL
	SHL
	SHR
	SAR
	CREATE2
	EXTCODEHASH
	CHAINID
	SELFBALANCE
	JUMP
	JUMPI
	JUMPDEST
)

// Name returns the lower-case mnemonic used in diagnostic text.
func (i Instruction) Name() string {
	switch i {
	case RETURNDATACOPY:
		return "returndatacopy"
	case RETURNDATASIZE:
		return "returndatasize"
	case STATICCALL:
		return "staticcall"
	case SHL:
		return "shl"
	case SHR:
		return "shr"
	case SAR:
		return "sar"
	case CREATE2:
		return "create2"
	case EXTCODEHASH:
		return "extcodehash"
	case CHAINID:
		return "chainid"
	case SELFBALANCE:
		return "selfbalance"
	case JUMP:
		return "jump"
	case JUMPI:
		return "jumpi"
	case JUMPDEST:
		return "jumpdest"
	default:
		return ""
	}
}

// Version is the target-machine feature-flag vector consulted by the
// legacy-instruction warnings. Callers
// are expected to keep supportsReturndata in lockstep with hasStaticCall,
// and bitwise shifting in lockstep with create2, mirroring the assumption
// the original analyzer asserts.
type Version struct {
	Name               string
	SupportsReturndata bool
	HasStaticCall      bool
	HasBitwiseShifting bool
	HasCreate2         bool
	HasExtCodeHash     bool
	HasChainID         bool
	HasSelfBalance     bool
}

// referenceEVMBuiltins maps legacy instruction mnemonics to the
// instruction they identify, independent of any particular Version. This
// is the table the legacy-instruction warning check consults when a
// call's callee matches nothing in scope or in the active dialect.
var referenceEVMBuiltins = map[string]Instruction{
	"returndatacopy": RETURNDATACOPY,
	"returndatasize": RETURNDATASIZE,
	"staticcall":     STATICCALL,
	"shl":            SHL,
	"shr":            SHR,
	"sar":            SAR,
	"create2":        CREATE2,
	"extcodehash":    EXTCODEHASH,
	"chainid":        CHAINID,
	"selfbalance":    SELFBALANCE,
	"jump":           JUMP,
	"jumpi":          JUMPI,
	"jumpdest":       JUMPDEST,
}

// LookupReferenceInstruction reports the instruction a name maps to under
// the reference EVM dialect, independent of the active dialect or
// target version. It never reports parameter/return types: those are
// irrelevant once warnOnInstructions decides to fire.
func LookupReferenceInstruction(name string) (Instruction, bool) {
	instr, ok := referenceEVMBuiltins[name]
	return instr, ok
}

// referenceEVM is a self-contained Dialect used only to host the table
// above; nothing in this module hands it to an Analyzer as the active
// dialect (the legacy-warning check calls LookupReferenceInstruction
// directly).
type referenceEVM struct{}

// ReferenceEVM returns the reference dialect backing the legacy
// instruction table.
func ReferenceEVM() Dialect { return referenceEVM{} }

func (referenceEVM) DefaultType() Type { return "u256" }
func (referenceEVM) BoolType() Type    { return "bool" }
func (referenceEVM) ValidType(t Type) bool {
	return t == "u256" || t == "bool"
}

func (referenceEVM) Builtin(name string) (*BuiltinFunction, bool) {
	instr, ok := referenceEVMBuiltins[name]
	if !ok {
		return nil, false
	}
	return &BuiltinFunction{Name: name, Instruction: instr}, true
}

func (referenceEVM) ValidTypeForLiteral(ast.LiteralKind, string, Type) bool { return true }
