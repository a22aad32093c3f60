package lower

import (
	"github.com/gogpu/shaderfront/ir"
	"github.com/gogpu/shaderfront/sem"
)

// TransformEntryPoint rewrites the user function declared as the shader
// entry point into the canonical shape: a synthesized zero-argument void
// function that communicates exclusively through global interface
// variables, copies each varying input into a local temporary, calls the
// renamed user function, and stores outputs back. The user function keeps
// its body but becomes invisible under its original name.
//
// A function that merely resembles the entry point by name is not
// rewritten; any IO qualifiers it picked up are stripped instead.
//
// outputVertices is the tessellation-control patch size, sizing the
// entry-point output array in that stage; zero leaves it runtime-sized.
func (l *Lowerer) TransformEntryPoint(def *FunctionDef, outputVertices uint32) *FunctionDef {
	if def.Fn.Name() != l.EntryPointName {
		l.RemapNonEntryPointIO(def)
		return nil
	}

	userFn := def.Fn
	origName := userFn.Name()
	userFn.Rename(entryRenamePrefix + origName)

	entry := sem.NewFunction(l.IDs.Next(), origName, ir.Void())
	l.caller = entry.MangledName()

	var copyIn, copyOut []ir.Node
	args := make([]ir.Node, len(def.ParamVars))

	for i, pv := range def.ParamVars {
		p := userFn.Params[i]
		localType := p.Type
		localType.Qual = ir.DefaultQualifier()
		local := l.newInternalVariable(pv.Name(), localType)
		args[i] = local.Ref()

		if p.Direction == sem.DirIn || p.Direction == sem.DirInOut {
			copyIn = append(copyIn, l.copyParam(local.Ref(), pv.Name(), p.Type, ir.StorageIn, true)...)
		}
		if p.Direction == sem.DirOut || p.Direction == sem.DirInOut {
			copyOut = append(copyOut, l.copyParam(local.Ref(), pv.Name(), p.Type, ir.StorageOut, false)...)
		}
	}

	call := &ir.CallNode{Op: ir.OpNull, Callee: userFn.MangledName(), Args: args, Typ: userFn.Ret, Loc: def.Loc}
	l.RecordCall(userFn.MangledName())

	body := copyIn
	if userFn.Ret.Basic == ir.KindVoid {
		body = append(body, call)
	} else {
		body = append(body, l.storeReturn(call, userFn.Ret, outputVertices)...)
	}
	body = append(body, copyOut...)

	return &FunctionDef{Fn: entry, Body: l.seq(def.Loc, body...), Loc: def.Loc}
}

// RemapNonEntryPointIO strips accidental IO qualification from a function
// that is not the entry point.
func (l *Lowerer) RemapNonEntryPointIO(def *FunctionDef) {
	for _, pv := range def.ParamVars {
		pv.Typ.Qual.ClearInterstage()
	}
	for i := range def.Fn.Params {
		def.Fn.Params[i].Type.Qual.ClearInterstage()
	}
	def.Fn.Ret.Qual.ClearInterstage()
}

// flattenBoundary reports a boundary whose aggregates must be fully
// expanded: vertex-stage inputs and fragment-stage outputs.
func (l *Lowerer) flattenBoundary(storage ir.Storage) bool {
	return (l.Stage == sem.StageVertex && storage == ir.StorageIn) ||
		(l.Stage == sem.StageFragment && storage == ir.StorageOut)
}

// copyParam creates (or reuses) the global interface variables behind one
// parameter and returns the copy nodes: interface→local when toLocal,
// local→interface otherwise.
func (l *Lowerer) copyParam(local ir.Node, name string, t ir.Type, storage ir.Storage, toLocal bool) []ir.Node {
	var out []ir.Node
	switch {
	case l.ShouldSplit(t):
		iov := l.makeIOVariable(name, t, storage)
		rec := l.Split(iov, storage)
		l.assignLocation(rec.Plain)
		l.addLinkage(rec.Plain)
		for i, m := range t.Members.Members {
			src, ok := l.SplitAccess(iov.ID(), i)
			if !ok {
				continue
			}
			dst := ir.Node(&ir.MemberNode{Base: local, Member: i, Typ: m.Type})
			out = append(out, l.directedCopy(dst, src, toLocal))
		}

	case t.IsStruct() && l.flattenBoundary(storage):
		iov := l.makeIOVariable(name, t, storage)
		rec := l.Flatten(iov)
		for _, leaf := range rec.Leaves {
			l.assignLocation(leaf)
			l.addLinkage(leaf)
		}
		l.copyFlattened(rec, local, t, nil, toLocal, &out)

	default:
		iov := l.makeIOVariable(name, t, storage)
		l.assignLocation(iov)
		l.addLinkage(iov)
		out = append(out, l.directedCopy(local, iov.Ref(), toLocal))
	}
	return out
}

// makeIOVariable allocates a global varying variable of the given type and
// direction, preserving the declaration's built-in tag and layout numbers.
func (l *Lowerer) makeIOVariable(name string, t ir.Type, storage ir.Storage) *sem.Variable {
	t.Qual.Storage = storage
	return l.newInternalVariable(name, t)
}

// directedCopy orders one copy: src into dst when toLocal, dst into src
// otherwise. Conversion covers declared-versus-interface type mismatch.
func (l *Lowerer) directedCopy(local, iface ir.Node, toLocal bool) ir.Node {
	if toLocal {
		return l.assign(local, l.convert(iface, local.Type()))
	}
	return l.assign(iface, l.convert(local, iface.Type()))
}

// copyFlattened mirrors the flatten traversal to pair every leaf variable
// with its access chain on the local aggregate.
func (l *Lowerer) copyFlattened(rec *FlattenRecord, local ir.Node, t ir.Type, path []int, toLocal bool, out *[]ir.Node) {
	switch {
	case t.IsArray():
		n := int(t.OuterArraySize())
		if n == 0 {
			n = 1
		}
		elem := t.ElementType()
		for i := 0; i < n; i++ {
			child := &ir.IndexNode{Base: local, Index: ir.NewIntConstant(int64(i)), Typ: elem}
			l.copyFlattened(rec, child, elem, append(path, i), toLocal, out)
		}
	case t.IsStruct():
		for i, m := range t.Members.Members {
			child := &ir.MemberNode{Base: local, Member: i, Typ: m.Type}
			l.copyFlattened(rec, child, m.Type, append(path, i), toLocal, out)
		}
	default:
		leaf, ok := rec.LeafAt(path...)
		if !ok {
			return
		}
		*out = append(*out, l.directedCopy(local, leaf.Ref(), toLocal))
	}
}

// storeReturn routes the user function's return value into the entry
// output interface. In the tessellation-control stage the output is an
// array indexed by the invocation id; elsewhere it is stored directly.
func (l *Lowerer) storeReturn(call *ir.CallNode, ret ir.Type, outputVertices uint32) []ir.Node {
	if l.Stage == sem.StageTessControl {
		arrType := ret
		arrType.Qual = ir.DefaultQualifier()
		if outputVertices > 0 {
			arrType.Arrays = append([]ir.ArraySize{ir.FixedSize(outputVertices)}, arrType.Arrays...)
		} else {
			arrType.Arrays = append([]ir.ArraySize{ir.RuntimeSize()}, arrType.Arrays...)
		}
		arrType.Qual.Storage = ir.StorageOut
		arrType.Qual.Builtin = ret.Qual.Builtin
		out := l.newInternalVariable(entryOutputName, arrType)
		l.assignLocation(out)
		l.addLinkage(out)

		invocation := l.interfaceBuiltin(ir.BuiltinInvocationID, ir.StorageIn, ir.Member{
			Name: "InvocationID",
			Type: ir.Scalar(ir.KindUint),
		})
		slot := &ir.IndexNode{Base: out.Ref(), Index: invocation.Ref(), Typ: ret, Loc: call.Loc}
		return []ir.Node{l.assign(slot, call)}
	}

	if l.ShouldSplit(ret) {
		outVar := l.makeIOVariable(entryOutputName, ret, ir.StorageOut)
		rec := l.Split(outVar, ir.StorageOut)
		l.assignLocation(rec.Plain)
		l.addLinkage(rec.Plain)
		tmp := l.newTemp(tempStore, ret)
		nodes := []ir.Node{l.assign(tmp.Ref(), call)}
		for i, m := range ret.Members.Members {
			dst, ok := l.SplitAccess(outVar.ID(), i)
			if !ok {
				continue
			}
			src := &ir.MemberNode{Base: tmp.Ref(), Member: i, Typ: m.Type}
			nodes = append(nodes, l.assign(dst, src))
		}
		return nodes
	}

	if ret.IsStruct() && l.flattenBoundary(ir.StorageOut) {
		outVar := l.makeIOVariable(entryOutputName, ret, ir.StorageOut)
		rec := l.Flatten(outVar)
		for _, leaf := range rec.Leaves {
			l.assignLocation(leaf)
			l.addLinkage(leaf)
		}
		tmp := l.newTemp(tempStore, ret)
		nodes := []ir.Node{l.assign(tmp.Ref(), call)}
		var copies []ir.Node
		l.copyFlattened(rec, tmp.Ref(), ret, nil, false, &copies)
		return append(nodes, copies...)
	}

	out := l.makeIOVariable(entryOutputName, ret, ir.StorageOut)
	l.assignLocation(out)
	l.addLinkage(out)
	return []ir.Node{l.assign(out.Ref(), call)}
}

// LowerPatchConstant appends the patch-constant invocation to a
// tessellation-control entry point. Exactly one invocation computes the
// per-patch values: invocation zero calls fn, holds the result in a
// temporary, and copies it out to the patch-qualified output variable.
func (l *Lowerer) LowerPatchConstant(entry *FunctionDef, fn *sem.Function) {
	if l.Stage != sem.StageTessControl {
		l.Bag.Errorf(entry.Loc, "patch constant function %q requires the tessellation-control stage", fn.Name())
		return
	}

	outType := fn.Ret
	outType.Qual = ir.DefaultQualifier()
	outType.Qual.Patch = true
	out := l.makeIOVariable(patchOutputName, outType, ir.StorageOut)
	l.assignLocation(out)
	l.addLinkage(out)

	call := &ir.CallNode{Op: ir.OpNull, Callee: fn.MangledName(), Typ: fn.Ret, Loc: entry.Loc}
	l.RecordCall(fn.MangledName())

	result := l.newTemp(patchResultName, fn.Ret)
	invocation := l.interfaceBuiltin(ir.BuiltinInvocationID, ir.StorageIn, ir.Member{
		Name: "InvocationID",
		Type: ir.Scalar(ir.KindUint),
	})
	guard := l.binary(ir.OpEqual, invocation.Ref(), ir.NewUintConstant(0), ir.Scalar(ir.KindBool))

	body := l.seq(entry.Loc,
		l.assign(result.Ref(), call),
		l.assign(out.Ref(), result.Ref()),
	)
	entry.Body.Nodes = append(entry.Body.Nodes, &ir.BranchNode{
		Cond: guard,
		Then: body,
		Typ:  ir.Void(),
		Loc:  entry.Loc,
	})
}

// assignLocation gives an interface variable its location slot. Built-ins
// with an explicit semantic never consume a slot. The per-direction
// counter advances by the variable's component-derived slot size.
func (l *Lowerer) assignLocation(v *sem.Variable) {
	q := &v.Typ.Qual
	if q.Builtin != ir.BuiltinNone {
		return
	}
	var counter *int32
	switch q.Storage {
	case ir.StorageIn:
		counter = &l.inLocation
	case ir.StorageOut:
		counter = &l.outLocation
	default:
		return
	}
	if !q.HasLocation() {
		q.Location = *counter
		*counter += int32(v.Typ.LocationSlots())
	}
	if q.Location > l.Limits.MaxLocation {
		l.Bag.Errorf(ir.NodeLoc(v.Ref()), "location %d for %q exceeds the maximum of %d",
			q.Location, v.Name(), l.Limits.MaxLocation)
	}
	if q.Binding != ir.LayoutUnset && q.Binding > l.Limits.MaxBinding {
		l.Bag.Errorf(ir.NodeLoc(v.Ref()), "binding %d for %q exceeds the maximum of %d",
			q.Binding, v.Name(), l.Limits.MaxBinding)
	}
}
