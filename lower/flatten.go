package lower

import (
	"fmt"

	"github.com/gogpu/shaderfront/diag"
	"github.com/gogpu/shaderfront/ir"
	"github.com/gogpu/shaderfront/sem"
)

// FlattenRecord maps one flattened aggregate variable to its leaf
// variables. The index tree is a flat integer array: an aggregate block
// stores its child count followed by one slot per child, each slot either
// pointing at a nested block or encoding a leaf index as -(leaf+1). A
// member/index access path therefore resolves to its leaf in O(depth).
type FlattenRecord struct {
	Leaves []*sem.Variable
	tree   []int
	root   int
}

// LeafAt resolves an access path of [array-index | member-index] steps to
// the leaf variable it lands on. The second result is false when the path
// does not reach a leaf.
func (r *FlattenRecord) LeafAt(path ...int) (*sem.Variable, bool) {
	pos := r.root
	if pos < 0 {
		if len(path) == 0 {
			return r.Leaves[-pos-1], true
		}
		return nil, false
	}
	for i, step := range path {
		if step < 0 || step >= r.tree[pos] {
			return nil, false
		}
		v := r.tree[pos+1+step]
		if v < 0 {
			if i == len(path)-1 {
				return r.Leaves[-v-1], true
			}
			return nil, false
		}
		pos = v
	}
	return nil, false
}

// ShouldFlatten reports whether a variable of this type must be fully
// expanded to leaf variables: a uniform array when array flattening is
// requested, or any aggregate transitively containing an opaque handle.
// Opaque handles cannot travel as aggregate members downstream.
func (l *Lowerer) ShouldFlatten(t ir.Type) bool {
	if l.FlattenUniformArrays && t.IsArray() && t.Qual.Storage == ir.StorageUniform {
		return true
	}
	return t.IsStruct() && t.ContainsOpaque()
}

// Flatten expands an aggregate variable into leaf variables and returns
// the record. Records are immutable once created; repeated calls for the
// same variable return the same record.
func (l *Lowerer) Flatten(v *sem.Variable) *FlattenRecord {
	if rec, ok := l.flattened[v.ID()]; ok {
		return rec
	}
	rec := &FlattenRecord{}
	rec.root = l.flattenWorker(rec, v.Typ, v.Typ.Qual, v.Name())
	l.flattened[v.ID()] = rec
	return rec
}

// WasFlattened reports whether the variable id has a flatten record.
func (l *Lowerer) WasFlattened(id int) bool {
	_, ok := l.flattened[id]
	return ok
}

// FlattenRecordFor returns the record for a flattened variable id.
func (l *Lowerer) FlattenRecordFor(id int) (*FlattenRecord, bool) {
	rec, ok := l.flattened[id]
	return rec, ok
}

// flattenWorker recursively expands t, allocating leaves for final
// (non-aggregate) positions and tree blocks for aggregates. rootQual is
// the flattened root's qualifier, merged into every leaf.
func (l *Lowerer) flattenWorker(rec *FlattenRecord, t ir.Type, rootQual ir.Qualifier, name string) int {
	switch {
	case t.IsArray():
		n := int(t.OuterArraySize())
		if n == 0 {
			// Runtime and specialization-sized dimensions defeat
			// flattening; keep a single element so access still resolves.
			l.Bag.Errorf(diag.Loc{}, "cannot flatten unsized array %q", name)
			n = 1
		}
		pos := len(rec.tree)
		rec.tree = append(rec.tree, make([]int, 1+n)...)
		rec.tree[pos] = n
		elem := t.ElementType()
		for i := 0; i < n; i++ {
			rec.tree[pos+1+i] = l.flattenWorker(rec, elem, rootQual, fmt.Sprintf("%s[%d]", name, i))
		}
		return pos

	case t.IsStruct():
		members := t.Members.Members
		pos := len(rec.tree)
		rec.tree = append(rec.tree, make([]int, 1+len(members))...)
		rec.tree[pos] = len(members)
		for i, m := range members {
			rec.tree[pos+1+i] = l.flattenWorker(rec, m.Type, rootQual, name+"."+m.Name)
		}
		return pos

	default:
		leaf := t
		leaf.Qual.MergeInterstage(rootQual)
		v := l.newInternalVariable(name, leaf)
		rec.Leaves = append(rec.Leaves, v)
		return -len(rec.Leaves)
	}
}

// ReconstructFlattened rebuilds a whole aggregate value from a flattened
// variable's leaves, for the places a flattened variable must still travel
// as one value (passing it to a function, returning it). The leaves are
// copied into a fresh temporary of the original aggregate type; the result
// sequence yields a reference to that temporary.
func (l *Lowerer) ReconstructFlattened(id int, t ir.Type) (ir.Node, bool) {
	rec, ok := l.flattened[id]
	if !ok {
		return nil, false
	}
	tmp := l.newTemp(tempFlatten, t)
	var nodes []ir.Node
	l.reconstructWorker(rec, rec.root, tmp.Ref(), &nodes)
	nodes = append(nodes, tmp.Ref())
	return l.seq(diag.Loc{}, nodes...), true
}

// reconstructWorker mirrors flattenWorker's tree walk, emitting one store
// per leaf into the matching position of target.
func (l *Lowerer) reconstructWorker(rec *FlattenRecord, pos int, target ir.Node, nodes *[]ir.Node) {
	if pos < 0 {
		*nodes = append(*nodes, l.assign(target, rec.Leaves[-pos-1].Ref()))
		return
	}
	t := target.Type()
	switch {
	case t.IsArray():
		elem := t.ElementType()
		for i := 0; i < int(t.OuterArraySize()); i++ {
			at := &ir.IndexNode{Base: target, Index: ir.NewIntConstant(int64(i)), Typ: elem}
			l.reconstructWorker(rec, rec.tree[pos+1+i], at, nodes)
		}
	case t.IsStruct():
		for i, m := range t.Members.Members {
			at := &ir.MemberNode{Base: target, Member: i, Typ: m.Type}
			l.reconstructWorker(rec, rec.tree[pos+1+i], at, nodes)
		}
	}
}

// FlattenAccess redirects a member/index access path on a flattened
// variable to a reference to the corresponding leaf variable.
func (l *Lowerer) FlattenAccess(id int, path ...int) (ir.Node, bool) {
	rec, ok := l.flattened[id]
	if !ok {
		return nil, false
	}
	leaf, ok := rec.LeafAt(path...)
	if !ok {
		return nil, false
	}
	return leaf.Ref(), true
}
