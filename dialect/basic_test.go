package dialect

import "testing"

func TestBasicValidType(t *testing.T) {
	d := NewBasic()

	if !d.ValidType("u256") {
		t.Error("u256 should be valid")
	}
	if !d.ValidType("bool") {
		t.Error("bool should be valid")
	}
	if d.ValidType("u128") {
		t.Error("u128 should not be valid")
	}

	d.RegisterType("u128")
	if !d.ValidType("u128") {
		t.Error("u128 should be valid after RegisterType")
	}
}

func TestBasicBuiltinLookup(t *testing.T) {
	d := NewBasic()
	d.RegisterBuiltin(&BuiltinFunction{
		Name:       "add",
		Parameters: []Type{"u256", "u256"},
		Returns:    []Type{"u256"},
	})

	bf, ok := d.Builtin("add")
	if !ok {
		t.Fatal("expected add to be found")
	}
	if len(bf.Parameters) != 2 || len(bf.Returns) != 1 {
		t.Errorf("unexpected builtin shape: %+v", bf)
	}

	if _, ok := d.Builtin("nope"); ok {
		t.Error("expected nope to be absent")
	}
}

func TestBasicValidTypeForLiteral(t *testing.T) {
	d := NewBasic()

	if !d.ValidTypeForLiteral(0, "0", "u256") {
		t.Error("0 should be a valid u256 number literal")
	}
	if d.ValidTypeForLiteral(0, "-1", "u256") {
		t.Error("negative number literals should be rejected")
	}
	if !d.ValidTypeForLiteral(2, "true", "bool") {
		t.Error("true should be a valid bool literal")
	}
	if d.ValidTypeForLiteral(2, "maybe", "bool") {
		t.Error("maybe is not a valid boolean literal")
	}
	if d.ValidTypeForLiteral(1, "hi", "missing") {
		t.Error("undeclared type should never validate")
	}
}
