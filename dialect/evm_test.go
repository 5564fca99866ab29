package dialect

import "testing"

func TestLookupReferenceInstruction(t *testing.T) {
	instr, ok := LookupReferenceInstruction("staticcall")
	if !ok || instr != STATICCALL {
		t.Errorf("LookupReferenceInstruction(staticcall) = %v, %v", instr, ok)
	}

	if _, ok := LookupReferenceInstruction("add"); ok {
		t.Error("add is not a legacy instruction")
	}
}

func TestInstructionName(t *testing.T) {
	cases := map[Instruction]string{
		RETURNDATACOPY: "returndatacopy",
		SHL:            "shl",
		CREATE2:        "create2",
		JUMP:           "jump",
		NoInstruction:  "",
	}
	for instr, want := range cases {
		if got := instr.Name(); got != want {
			t.Errorf("%v.Name() = %q, want %q", instr, got, want)
		}
	}
}

func TestReferenceEVMDialect(t *testing.T) {
	d := ReferenceEVM()
	if d.DefaultType() != "u256" {
		t.Errorf("DefaultType() = %q", d.DefaultType())
	}
	if !d.ValidType("bool") {
		t.Error("bool should be a valid reference EVM type")
	}

	bf, ok := d.Builtin("shl")
	if !ok || bf.Instruction != SHL {
		t.Errorf("Builtin(shl) = %+v, %v", bf, ok)
	}
}
