package lower

import (
	"github.com/gogpu/shaderfront/ir"
	"github.com/gogpu/shaderfront/sem"
)

// Decompose rewrites a resolved call carrying a high-level method tag into
// primitive operations. Calls without a method tag pass through unchanged.
// Every rewrite preserves the call's static type and evaluates each source
// sub-expression exactly once.
func (l *Lowerer) Decompose(call *ir.CallNode) ir.Node {
	switch {
	case call.Op == ir.OpMul:
		return l.decomposeMul(call)
	case call.Op == ir.OpSaturate:
		return l.decomposeSaturate(call)
	case call.Op == ir.OpRcp:
		return l.decomposeRcp(call)
	case call.Op == ir.OpSinCos:
		return l.decomposeSinCos(call)
	case call.Op == ir.OpClip:
		return l.decomposeClip(call)
	case call.Op.IsBufferMethod():
		return l.decomposeBufferMethod(call)
	case call.Op.IsAtomicMethod():
		return l.decomposeAtomic(call)
	case call.Op.IsSampleMethod():
		return l.decomposeSampleMethod(call)
	case call.Op == ir.OpMethodAppend || call.Op == ir.OpMethodRestartStrip:
		return l.decomposeGeometryMethod(call)
	default:
		return call
	}
}

// decomposeMul reverses the operand order (the source's row-vector
// convention against the target's column-vector convention) and dispatches
// on operand shapes.
func (l *Lowerer) decomposeMul(call *ir.CallNode) ir.Node {
	if len(call.Args) != 2 {
		l.Bag.Errorf(call.Loc, "mul expects 2 arguments, got %d", len(call.Args))
		return call
	}
	left, right := call.Args[1], call.Args[0] // reversed
	lt, rt := left.Type(), right.Type()

	var op ir.Op
	switch {
	case lt.IsMatrix() && rt.IsMatrix():
		op = ir.OpMatrixTimesMatrix
	case lt.IsMatrix() && rt.IsVector():
		op = ir.OpMatrixTimesVector
	case lt.IsVector() && rt.IsMatrix():
		op = ir.OpVectorTimesMatrix
	case lt.IsMatrix() && rt.IsScalar():
		op = ir.OpMatrixTimesScalar
	case lt.IsScalar() && rt.IsMatrix():
		op, left, right = ir.OpMatrixTimesScalar, right, left
	case lt.IsVector() && rt.IsVector():
		op = ir.OpDot
	case lt.IsVector() && rt.IsScalar():
		op = ir.OpVectorTimesScalar
	case lt.IsScalar() && rt.IsVector():
		op, left, right = ir.OpVectorTimesScalar, right, left
	default:
		op = ir.OpMulComponents
	}
	return l.binary(op, left, right, call.Typ)
}

// decomposeSaturate rewrites saturate(x) as clamp(x, 0, 1).
func (l *Lowerer) decomposeSaturate(call *ir.CallNode) ir.Node {
	x := call.Args[0]
	zero := l.convert(ir.NewFloatConstant(0), x.Type())
	one := l.convert(ir.NewFloatConstant(1), x.Type())
	return &ir.CallNode{Op: ir.OpClamp, Args: []ir.Node{x, zero, one}, Typ: call.Typ, Loc: call.Loc}
}

// decomposeRcp rewrites rcp(x) as 1/x.
func (l *Lowerer) decomposeRcp(call *ir.CallNode) ir.Node {
	x := call.Args[0]
	one := l.convert(ir.NewFloatConstant(1), x.Type())
	return l.binary(ir.OpDiv, one, x, call.Typ)
}

// decomposeSinCos rewrites sincos(x, s, c) into the two assignments from
// sin(x) and cos(x), wrapped in a side-effect sequence. x is evaluated
// once.
func (l *Lowerer) decomposeSinCos(call *ir.CallNode) ir.Node {
	if len(call.Args) != 3 {
		l.Bag.Errorf(call.Loc, "sincos expects 3 arguments, got %d", len(call.Args))
		return call
	}
	var pre []ir.Node
	x := l.hoist(call.Args[0], tempStore, &pre)
	sinCall := &ir.CallNode{Op: ir.OpSin, Args: []ir.Node{x}, Typ: x.Type(), Loc: call.Loc}
	cosCall := &ir.CallNode{Op: ir.OpCos, Args: []ir.Node{x}, Typ: x.Type(), Loc: call.Loc}
	nodes := append(pre,
		l.assign(call.Args[1], sinCall),
		l.assign(call.Args[2], cosCall),
	)
	return l.seq(call.Loc, nodes...)
}

// decomposeClip rewrites clip(x) into a conditional kill: any component
// below zero discards the fragment.
func (l *Lowerer) decomposeClip(call *ir.CallNode) ir.Node {
	x := call.Args[0]
	xt := x.Type()

	var cond ir.Node
	boolType := ir.Scalar(ir.KindBool)
	if xt.IsScalar() {
		cond = l.binary(ir.OpLessThan, x, l.convert(ir.NewFloatConstant(0), xt), boolType)
	} else {
		compType := xt
		compType.Basic = ir.KindBool
		compare := l.binary(ir.OpLessThan, x, l.convert(ir.NewFloatConstant(0), xt), compType)
		cond = &ir.CallNode{Op: ir.OpAnyTrue, Args: []ir.Node{compare}, Typ: boolType, Loc: call.Loc}
	}
	kill := &ir.CallNode{Op: ir.OpKill, Typ: ir.Void(), Loc: call.Loc}
	return &ir.BranchNode{Cond: cond, Then: kill, Typ: ir.Void(), Loc: call.Loc}
}

// decomposeBufferMethod lowers structured/byte-address buffer methods.
// Byte offsets address 32-bit words, so the offset is shifted right by two
// into a cached index temporary, and one array access (plus one store for
// Store variants) is emitted per vector component.
func (l *Lowerer) decomposeBufferMethod(call *ir.CallNode) ir.Node {
	switch call.Op {
	case ir.OpMethodIncrementCounter, ir.OpMethodDecrementCounter:
		return l.decomposeCounter(call)
	}

	buffer := call.Args[0]
	offset := call.Args[1]
	elemType := ir.Scalar(call.Typ.Basic)
	if call.Typ.Basic == ir.KindVoid { // Store variants return void
		elemType = ir.Scalar(call.Args[2].Type().Basic)
	}

	// Multi-component variants reference the word index several times, so
	// it is computed once into a temporary; the single-component forms use
	// the shifted offset in place.
	var pre []ir.Node
	index := ir.Node(l.binary(ir.OpShiftRight, offset, ir.NewIntConstant(2), offset.Type()))
	if call.Op != ir.OpMethodBufferLoad && call.Op != ir.OpMethodBufferStore {
		index = l.hoist(index, tempCoord, &pre)
	}

	elementAt := func(i int) ir.Node {
		idx := index
		if i > 0 {
			idx = l.binary(ir.OpAdd, index, ir.NewIntConstant(int64(i)), index.Type())
		}
		return &ir.IndexNode{Base: buffer, Index: idx, Typ: elemType, Loc: call.Loc}
	}

	switch call.Op {
	case ir.OpMethodBufferLoad:
		if len(pre) == 0 {
			return elementAt(0)
		}
		return l.seq(call.Loc, append(pre, elementAt(0))...)

	case ir.OpMethodBufferLoad2, ir.OpMethodBufferLoad3, ir.OpMethodBufferLoad4:
		n := 2 + int(call.Op-ir.OpMethodBufferLoad2)
		comps := make([]ir.Node, n)
		for i := 0; i < n; i++ {
			comps[i] = elementAt(i)
		}
		compose := &ir.CallNode{Op: ir.OpConstructComposite, Args: comps, Typ: call.Typ, Loc: call.Loc}
		if len(pre) == 0 {
			return compose
		}
		return l.seq(call.Loc, append(pre, compose)...)

	case ir.OpMethodBufferStore, ir.OpMethodBufferStore2, ir.OpMethodBufferStore3, ir.OpMethodBufferStore4:
		n := 1
		if call.Op != ir.OpMethodBufferStore {
			n = 2 + int(call.Op-ir.OpMethodBufferStore2)
		}
		value := l.hoist(call.Args[2], tempStore, &pre)
		nodes := pre
		for i := 0; i < n; i++ {
			src := value
			if n > 1 {
				src = &ir.IndexNode{Base: value, Index: ir.NewIntConstant(int64(i)), Typ: elemType, Loc: call.Loc}
			}
			nodes = append(nodes, l.assign(elementAt(i), src))
		}
		return l.seq(call.Loc, nodes...)
	}
	return call
}

// decomposeCounter lowers IncrementCounter/DecrementCounter into an atomic
// add on the buffer's hidden counter.
func (l *Lowerer) decomposeCounter(call *ir.CallNode) ir.Node {
	sym, ok := call.Args[0].(*ir.SymbolNode)
	if !ok {
		l.Bag.Errorf(call.Loc, "counter method requires a buffer variable")
		return call
	}
	counter := l.counterBuffer(sym)
	delta := int64(1)
	if call.Op == ir.OpMethodDecrementCounter {
		delta = -1
	}
	value := l.convert(ir.NewIntConstant(delta), ir.Scalar(ir.KindUint))
	return &ir.CallNode{
		Op:   ir.OpAtomicAdd,
		Args: []ir.Node{counter.Ref(), value},
		Typ:  call.Typ,
		Loc:  call.Loc,
	}
}

// resourceLoadParts recognizes a direct load from an indexable opaque
// resource and returns its (resource, coordinate) pair.
func resourceLoadParts(n ir.Node) (res, coord ir.Node, ok bool) {
	switch n := n.(type) {
	case *ir.IndexNode:
		bt := n.Base.Type()
		if bt.Basic == ir.KindTexture && bt.Texture != nil &&
			(bt.Texture.Storage || bt.Texture.Structured || bt.Texture.ByteAddress) {
			return n.Base, n.Index, true
		}
	case *ir.CallNode:
		if (n.Op == ir.OpImageLoad || n.Op == ir.OpTextureFetch) && len(n.Args) >= 2 {
			return n.Args[0], n.Args[1], true
		}
	}
	return nil, nil, false
}

// decomposeAtomic lowers an Interlocked* call. When the destination is
// itself a resource load, its (resource, coordinate) pair is spliced into
// the atomic directly so the atomic targets the image location rather than
// a materialized value; the optional previous-value output argument
// becomes an assignment from the atomic's result.
func (l *Lowerer) decomposeAtomic(call *ir.CallNode) ir.Node {
	prim := call.Op.AtomicPrimitive()
	dest := call.Args[0]
	operands := call.Args[1:]

	// Peel the optional previous-value output argument.
	var original ir.Node
	switch call.Op {
	case ir.OpInterlockedCompareExchange:
		original = operands[len(operands)-1]
		operands = operands[:len(operands)-1]
	case ir.OpInterlockedCompareStore:
		// compare + value only, no output
	default:
		if len(operands) == 2 {
			original = operands[1]
			operands = operands[:1]
		}
	}

	var args []ir.Node
	if res, coord, ok := resourceLoadParts(dest); ok {
		var pre []ir.Node
		coord = l.hoist(coord, tempCoord, &pre)
		args = append([]ir.Node{res, coord}, operands...)
		atomic := &ir.CallNode{Op: prim, Args: args, Typ: operands[0].Type(), Loc: call.Loc}
		return l.finishAtomic(atomic, original, pre, call)
	}

	args = append([]ir.Node{dest}, operands...)
	atomic := &ir.CallNode{Op: prim, Args: args, Typ: operands[0].Type(), Loc: call.Loc}
	return l.finishAtomic(atomic, original, nil, call)
}

func (l *Lowerer) finishAtomic(atomic *ir.CallNode, original ir.Node, pre []ir.Node, call *ir.CallNode) ir.Node {
	if original == nil {
		if len(pre) == 0 {
			return atomic
		}
		return l.seq(call.Loc, append(pre, atomic)...)
	}
	nodes := append(pre, l.assign(original, atomic))
	return l.seq(call.Loc, nodes...)
}

// decomposeGeometryMethod lowers stream Append/RestartStrip. Outside the
// geometry stage both are discarded.
func (l *Lowerer) decomposeGeometryMethod(call *ir.CallNode) ir.Node {
	if l.Stage != sem.StageGeometry {
		return l.seq(call.Loc)
	}
	if call.Op == ir.OpMethodRestartStrip {
		return &ir.CallNode{Op: ir.OpEndPrimitive, Typ: ir.Void(), Loc: call.Loc}
	}

	payload := call.Args[len(call.Args)-1]
	out := l.streamOutput(payload.Type())
	emit := &ir.CallNode{Op: ir.OpEmitVertex, Typ: ir.Void(), Loc: call.Loc}
	return l.seq(call.Loc, l.assign(out.Ref(), payload), emit)
}
