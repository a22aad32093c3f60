package lower

import (
	"github.com/gogpu/shaderfront/ir"
)

// RewriteLValue rewrites an assignment whose target is an opaque resource
// element into explicit load/modify/store form, because image memory has no
// addressable l-values. Plain memory targets pass through after a
// writability check. The rewritten node yields the same value the source
// assignment would: the stored value for stores and compound forms, the
// original value for post-increment and post-decrement.
func (l *Lowerer) RewriteLValue(an *ir.AssignNode) ir.Node {
	target := an.Target
	if sw, ok := target.(*ir.SwizzleNode); ok {
		if _, _, isResource := resourceLoadParts(sw.Base); isResource {
			l.Bag.Errorf(an.Loc, "partial write to a resource element is not supported")
			return an
		}
	}

	res, coord, ok := resourceLoadParts(target)
	if !ok {
		l.checkWritable(target, an)
		return an
	}

	var pre []ir.Node
	coord = l.hoist(coord, tempCoord, &pre)
	elemType := target.Type()

	store := func(value ir.Node) *ir.CallNode {
		return &ir.CallNode{
			Op:   ir.OpImageStore,
			Args: []ir.Node{res, coord, value},
			Typ:  ir.Void(),
			Loc:  an.Loc,
		}
	}
	load := func() *ir.CallNode {
		return &ir.CallNode{
			Op:   ir.OpImageLoad,
			Args: []ir.Node{res, coord},
			Typ:  elemType,
			Loc:  an.Loc,
		}
	}

	tmp := l.newTemp(tempStore, elemType)

	switch an.Op {
	case ir.OpAssign:
		nodes := append(pre,
			l.assign(tmp.Ref(), an.Value),
			store(tmp.Ref()),
			tmp.Ref(),
		)
		return l.seq(an.Loc, nodes...)

	case ir.OpAddAssign, ir.OpSubAssign, ir.OpMulAssign, ir.OpDivAssign:
		modified := l.binary(an.Op.CompoundBinary(), load(), an.Value, elemType)
		nodes := append(pre,
			l.assign(tmp.Ref(), modified),
			store(tmp.Ref()),
			tmp.Ref(),
		)
		return l.seq(an.Loc, nodes...)

	case ir.OpPreIncrement, ir.OpPreDecrement:
		one := l.convert(ir.NewIntConstant(1), ir.Scalar(elemType.Basic))
		modified := l.binary(an.Op.CompoundBinary(), load(), one, elemType)
		nodes := append(pre,
			l.assign(tmp.Ref(), modified),
			store(tmp.Ref()),
			tmp.Ref(),
		)
		return l.seq(an.Loc, nodes...)

	case ir.OpPostIncrement, ir.OpPostDecrement:
		one := l.convert(ir.NewIntConstant(1), ir.Scalar(elemType.Basic))
		modified := l.binary(an.Op.CompoundBinary(), tmp.Ref(), one, elemType)
		nodes := append(pre,
			l.assign(tmp.Ref(), load()),
			store(modified),
			tmp.Ref(),
		)
		return l.seq(an.Loc, nodes...)

	default:
		l.Bag.Internalf(an.Loc, "unhandled assignment op %d on resource element", an.Op)
		return an
	}
}

// checkWritable diagnoses stores into read-only storage classes.
func (l *Lowerer) checkWritable(target ir.Node, an *ir.AssignNode) {
	root := target
	for stripped := true; stripped; {
		switch n := root.(type) {
		case *ir.IndexNode:
			root = n.Base
		case *ir.MemberNode:
			root = n.Base
		case *ir.SwizzleNode:
			root = n.Base
		default:
			stripped = false
		}
	}
	sym, ok := root.(*ir.SymbolNode)
	if !ok {
		return
	}
	switch sym.Typ.Qual.Storage {
	case ir.StorageConst, ir.StorageUniform, ir.StorageIn:
		l.Bag.Errorf(an.Loc, "cannot assign to read-only variable %q", sym.Name)
	}
}
