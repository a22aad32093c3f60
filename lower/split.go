package lower

import (
	"github.com/gogpu/shaderfront/ir"
	"github.com/gogpu/shaderfront/sem"
)

// SplitRecord separates a struct variable whose members mix interstage
// built-ins with ordinary data. The plain variable retains the ordinary
// members in order; each built-in member redirects to a side variable
// shared program-wide per (built-in tag, direction) pair. Records are
// immutable once created.
type SplitRecord struct {
	Plain *sem.Variable

	// memberMap maps original member index to the member's index in the
	// retained struct, or -1 when the member moved to a side variable.
	memberMap []int
	side      []*sem.Variable // original member index → side variable or nil
}

// PlainIndex returns the retained-struct index for an original member
// index, or -1 when the member was moved out.
func (r *SplitRecord) PlainIndex(member int) int {
	if member < 0 || member >= len(r.memberMap) {
		return -1
	}
	return r.memberMap[member]
}

// SideVariable returns the interface side variable an original member
// moved to, or nil.
func (r *SplitRecord) SideVariable(member int) *sem.Variable {
	if member < 0 || member >= len(r.side) {
		return nil
	}
	return r.side[member]
}

// ShouldSplit reports a struct mixing interstage built-in members with
// ordinary data members.
func (l *Lowerer) ShouldSplit(t ir.Type) bool {
	if !t.IsStruct() || !t.ContainsBuiltinInterstageIO() {
		return false
	}
	for _, m := range t.Members.Members {
		if m.Type.Qual.Builtin == ir.BuiltinNone {
			return true
		}
	}
	return false
}

// Split partitions the variable's members and returns the record.
// Repeated calls for the same variable return the same record.
func (l *Lowerer) Split(v *sem.Variable, storage ir.Storage) *SplitRecord {
	if rec, ok := l.splitVars[v.ID()]; ok {
		return rec
	}

	members := v.Typ.Members.Members
	rec := &SplitRecord{
		memberMap: make([]int, len(members)),
		side:      make([]*sem.Variable, len(members)),
	}

	retained := &ir.MemberList{}
	for i, m := range members {
		if b := m.Type.Qual.Builtin; b != ir.BuiltinNone {
			rec.memberMap[i] = -1
			rec.side[i] = l.interfaceBuiltin(b, storage, m)
			continue
		}
		rec.memberMap[i] = len(retained.Members)
		retained.Members = append(retained.Members, m)
	}

	plainType := v.Typ
	plainType.Members = retained
	plainType.Qual = ir.DefaultQualifier()
	plainType.Qual.Storage = storage
	rec.Plain = l.newInternalVariable(v.Name(), plainType)

	l.splitVars[v.ID()] = rec
	return rec
}

// WasSplit reports whether the variable id has a split record.
func (l *Lowerer) WasSplit(id int) bool {
	_, ok := l.splitVars[id]
	return ok
}

// SplitRecordFor returns the record for a split variable id.
func (l *Lowerer) SplitRecordFor(id int) (*SplitRecord, bool) {
	rec, ok := l.splitVars[id]
	return rec, ok
}

// interfaceBuiltin returns the side variable for one (built-in tag,
// direction) pair, allocating it on first encounter anywhere in the unit.
func (l *Lowerer) interfaceBuiltin(b ir.Builtin, storage ir.Storage, m ir.Member) *sem.Variable {
	key := splitKey{builtin: b, storage: storage}
	if v, ok := l.splitIO[key]; ok {
		return v
	}
	t := m.Type
	t.Qual = ir.DefaultQualifier()
	t.Qual.Storage = storage
	t.Qual.Builtin = b
	v := l.newInternalVariable(m.Name, t)
	l.splitIO[key] = v
	l.addLinkage(v)
	return v
}

// SplitAccess redirects a member access on a split variable: retained
// members index the plain struct, built-in members redirect to their side
// variable.
func (l *Lowerer) SplitAccess(id int, member int) (ir.Node, bool) {
	rec, ok := l.splitVars[id]
	if !ok {
		return nil, false
	}
	if v := rec.SideVariable(member); v != nil {
		return v.Ref(), true
	}
	idx := rec.PlainIndex(member)
	if idx < 0 {
		return nil, false
	}
	memberType := rec.Plain.Typ.Members.Members[idx].Type
	return &ir.MemberNode{Base: rec.Plain.Ref(), Member: idx, Typ: memberType}, true
}
