package sem

import (
	"testing"

	"github.com/gogpu/shaderfront/ir"
)

func TestTableScoping(t *testing.T) {
	var ids IDAllocator
	tbl := NewTable(&ids)

	outer := NewVariable(ids.Next(), "x", ir.Scalar(ir.KindFloat))
	if !tbl.Insert(outer) {
		t.Fatal("insert into open scope should succeed")
	}
	if tbl.Insert(NewVariable(ids.Next(), "x", ir.Scalar(ir.KindInt))) {
		t.Error("duplicate name in the same scope should fail")
	}

	tbl.Push()
	inner := NewVariable(ids.Next(), "x", ir.Scalar(ir.KindInt))
	if !tbl.Insert(inner) {
		t.Fatal("shadowing in a nested scope should succeed")
	}
	if got := tbl.Lookup("x"); got != Symbol(inner) {
		t.Error("lookup should find the innermost binding")
	}

	tbl.Pop()
	if got := tbl.Lookup("x"); got != Symbol(outer) {
		t.Error("popping should restore the outer binding")
	}
}

func TestTableOverloadsCoexist(t *testing.T) {
	var ids IDAllocator
	tbl := NewTable(&ids)

	f1 := NewFunction(ids.Next(), "f", ir.Void(), Parameter{Name: "a", Type: ir.Scalar(ir.KindFloat)})
	f2 := NewFunction(ids.Next(), "f", ir.Void(), Parameter{Name: "a", Type: ir.Scalar(ir.KindInt)})
	if !tbl.Insert(f1) || !tbl.Insert(f2) {
		t.Fatal("overloads with distinct signatures should both insert")
	}
	if tbl.Insert(NewFunction(ids.Next(), "f", ir.Void(), Parameter{Name: "b", Type: ir.Scalar(ir.KindInt)})) {
		t.Error("identical signature should be rejected regardless of parameter names")
	}

	if got := len(tbl.Candidates("f")); got != 2 {
		t.Errorf("Expected 2 candidates, got %d", got)
	}
	if tbl.LookupExact("f(int)") != f2 {
		t.Error("exact mangled lookup should find the int overload")
	}
}

func TestParsingBuiltinsRedeclaration(t *testing.T) {
	var ids IDAllocator
	tbl := NewTable(&ids)

	first := NewFunction(ids.Next(), "clamp", ir.Scalar(ir.KindFloat),
		Parameter{Name: "x", Type: ir.Scalar(ir.KindFloat)})
	if !tbl.Insert(first) {
		t.Fatal("initial declaration should insert")
	}
	refined := NewFunction(ids.Next(), "clamp", ir.Scalar(ir.KindFloat),
		Parameter{Name: "x", Type: ir.Scalar(ir.KindFloat)})
	if tbl.Insert(refined) {
		t.Fatal("redeclaration outside built-in mode should fail")
	}

	tbl.SetParsingBuiltins(true)
	if !tbl.ParsingBuiltins() {
		t.Fatal("built-in mode should be reported")
	}
	if !tbl.Insert(refined) {
		t.Fatal("redeclaration in built-in mode should replace")
	}
	if tbl.LookupExact("clamp(float)") != refined {
		t.Error("the refined declaration should win")
	}

	tbl.SetParsingBuiltins(false)
	if tbl.Insert(first) {
		t.Error("leaving built-in mode restores collision rejection")
	}
}

func TestReadOnlyLevels(t *testing.T) {
	var baseIDs IDAllocator
	base := NewTable(&baseIDs)
	builtin := NewVariable(baseIDs.Next(), "gl_Position", ir.Vector(ir.KindFloat, 4))
	base.Insert(builtin)
	base.SetReadOnly()

	if base.Insert(NewVariable(baseIDs.Next(), "y", ir.Scalar(ir.KindInt))) {
		t.Error("insert into a frozen level should fail")
	}
	depth := base.Depth()
	base.Pop()
	if base.Depth() != depth {
		t.Error("read-only levels must never pop")
	}

	var ids IDAllocator
	user := NewTable(&ids)
	user.PushFrom(base)
	if user.Lookup("gl_Position") == nil {
		t.Fatal("layered table should see base symbols")
	}
	if !user.AtGlobalLevel() {
		t.Error("the first writable scope above built-ins is the global level")
	}
}

func TestCopyUp(t *testing.T) {
	var baseIDs IDAllocator
	base := NewTable(&baseIDs)
	members := &ir.MemberList{Members: []ir.Member{{Name: "pos", Type: ir.Vector(ir.KindFloat, 4)}}}
	orig := NewVariable(baseIDs.Next(), "v", ir.Struct("V", members))
	base.Insert(orig)
	base.SetReadOnly()

	var ids IDAllocator
	user := NewTable(&ids)
	user.PushFrom(base)

	got := user.Lookup("v")
	copied := user.CopyUp(got).(*Variable)
	if copied == orig {
		t.Fatal("CopyUp of a read-only symbol must clone")
	}
	if copied.ID() == orig.ID() {
		t.Error("clone should get a fresh id")
	}
	if copied.ReadOnly() {
		t.Error("clone should be writable")
	}

	// Decorating the copy must not leak into the shared member list.
	copied.SpecializeMember(0, func(m *ir.Member) {
		m.Type.Qual.Builtin = ir.BuiltinPosition
	})
	if orig.Typ.Members.Members[0].Type.Qual.Builtin != ir.BuiltinNone {
		t.Error("specialization leaked into the frozen original")
	}
	if copied.Typ.Members.Members[0].Type.Qual.Builtin != ir.BuiltinPosition {
		t.Error("specialization did not apply to the copy")
	}

	if user.CopyUp(copied) != Symbol(copied) {
		t.Error("CopyUp of a writable symbol should be a no-op")
	}
}
