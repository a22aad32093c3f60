package lower

import (
	"github.com/gogpu/shaderfront/ir"
)

// decomposeSampleMethod lowers texture and sampler object methods into the
// primitive image vocabulary. Separate texture/sampler argument pairs
// become a synthesized combined sampler; the remaining rewrites are per
// method below.
func (l *Lowerer) decomposeSampleMethod(call *ir.CallNode) ir.Node {
	switch call.Op {
	case ir.OpMethodSample:
		return l.decomposeSample(call, ir.OpTextureSample)
	case ir.OpMethodSampleLevel:
		return l.decomposeSample(call, ir.OpTextureSampleLevel)
	case ir.OpMethodSampleGrad:
		return l.decomposeSample(call, ir.OpTextureSampleGrad)
	case ir.OpMethodSampleCmp, ir.OpMethodSampleCmpLevelZero:
		return l.decomposeSampleCmp(call)
	case ir.OpMethodLoad:
		return l.decomposeTextureLoad(call)
	case ir.OpMethodGather, ir.OpMethodGatherRed, ir.OpMethodGatherGreen,
		ir.OpMethodGatherBlue, ir.OpMethodGatherAlpha:
		return l.decomposeGather(call)
	case ir.OpMethodGetDimensions:
		return l.decomposeGetDimensions(call)
	case ir.OpMethodCalculateLevelOfDetail:
		combined := l.combinedSampler(call.Args[0], call.Args[1], false)
		return &ir.CallNode{
			Op:   ir.OpTextureQueryLod,
			Args: []ir.Node{combined, call.Args[2]},
			Typ:  call.Typ,
			Loc:  call.Loc,
		}
	default:
		return call
	}
}

// combinedSampler pairs a texture with a sampler state. The result carries
// the texture's type; shadow marks comparison sampling.
func (l *Lowerer) combinedSampler(texture, sampler ir.Node, shadow bool) ir.Node {
	t := texture.Type()
	if t.Texture != nil {
		info := *t.Texture
		info.Shadow = shadow
		t.Texture = &info
	}
	return &ir.CallNode{
		Op:   ir.OpConstructCombinedSampler,
		Args: []ir.Node{texture, sampler},
		Typ:  t,
		Loc:  ir.NodeLoc(texture),
	}
}

// decomposeSample handles Sample, SampleLevel, and SampleGrad. The
// arguments after the coordinate (level, gradients, offset, bias) are
// passed through in order.
func (l *Lowerer) decomposeSample(call *ir.CallNode, op ir.Op) ir.Node {
	if len(call.Args) < 3 {
		l.Bag.Errorf(call.Loc, "sample method expects texture, sampler, and coordinate")
		return call
	}
	combined := l.combinedSampler(call.Args[0], call.Args[1], false)
	args := append([]ir.Node{combined}, call.Args[2:]...)
	return &ir.CallNode{Op: op, Args: args, Typ: call.Typ, Loc: call.Loc}
}

// decomposeSampleCmp handles SampleCmp and SampleCmpLevelZero. The compare
// reference folds into the coordinate's trailing component; a coordinate
// that is already four wide (cube arrays) keeps the reference as a
// separate trailing argument. SampleCmpLevelZero pins an explicit zero
// level of detail.
func (l *Lowerer) decomposeSampleCmp(call *ir.CallNode) ir.Node {
	if len(call.Args) < 4 {
		l.Bag.Errorf(call.Loc, "comparison sample expects texture, sampler, coordinate, and reference")
		return call
	}
	texture, sampler, coord, compare := call.Args[0], call.Args[1], call.Args[2], call.Args[3]
	combined := l.combinedSampler(texture, sampler, true)

	args := []ir.Node{combined}
	n := coord.Type().ComponentCount()
	if n >= 4 {
		args = append(args, coord, compare)
	} else {
		wide := ir.Vector(coord.Type().Basic, uint8(n+1))
		merged := &ir.CallNode{
			Op:   ir.OpConstructComposite,
			Args: []ir.Node{coord, l.convert(compare, ir.Scalar(coord.Type().Basic))},
			Typ:  wide,
			Loc:  call.Loc,
		}
		args = append(args, merged)
	}
	if call.Op == ir.OpMethodSampleCmpLevelZero {
		args = append(args, ir.NewFloatConstant(0))
	}
	args = append(args, call.Args[4:]...)
	return &ir.CallNode{Op: ir.OpTextureSampleCmp, Args: args, Typ: call.Typ, Loc: call.Loc}
}

// decomposeTextureLoad handles the Load method. Storage and buffer
// resources load directly; sampled textures carry the mip level in the
// location's trailing component, which is peeled off into an explicit
// fetch level. The location is evaluated once.
func (l *Lowerer) decomposeTextureLoad(call *ir.CallNode) ir.Node {
	if len(call.Args) < 2 {
		l.Bag.Errorf(call.Loc, "Load expects a location argument")
		return call
	}
	texture := call.Args[0]
	info := texture.Type().Texture
	if info == nil {
		l.Bag.Errorf(call.Loc, "Load on non-resource type %s", texture.Type().String())
		return call
	}
	if info.Storage || info.Structured || info.ByteAddress {
		args := append([]ir.Node{texture}, call.Args[1:]...)
		return &ir.CallNode{Op: ir.OpImageLoad, Args: args, Typ: call.Typ, Loc: call.Loc}
	}
	if info.Multisampled {
		// Location plus explicit sample index; no mip component to peel.
		args := append([]ir.Node{texture}, call.Args[1:]...)
		return &ir.CallNode{Op: ir.OpTextureFetch, Args: args, Typ: call.Typ, Loc: call.Loc}
	}

	location := call.Args[1]
	n := location.Type().ComponentCount()
	if n < 2 {
		l.Bag.Errorf(call.Loc, "Load location must carry a mip component")
		return call
	}

	var pre []ir.Node
	loc := l.hoist(location, tempCoord, &pre)
	coord := l.swizzlePrefix(loc, n-1)
	level := l.swizzleComponent(loc, n-1)
	fetch := &ir.CallNode{
		Op:   ir.OpTextureFetch,
		Args: append([]ir.Node{texture, coord, level}, call.Args[2:]...),
		Typ:  call.Typ,
		Loc:  call.Loc,
	}
	if len(pre) == 0 {
		return fetch
	}
	return l.seq(call.Loc, append(pre, fetch)...)
}

// decomposeGather handles the Gather family. The gathered component index
// rides as an explicit constant argument.
func (l *Lowerer) decomposeGather(call *ir.CallNode) ir.Node {
	if len(call.Args) < 3 {
		l.Bag.Errorf(call.Loc, "gather expects texture, sampler, and coordinate")
		return call
	}
	var component int64
	switch call.Op {
	case ir.OpMethodGatherGreen:
		component = 1
	case ir.OpMethodGatherBlue:
		component = 2
	case ir.OpMethodGatherAlpha:
		component = 3
	}
	combined := l.combinedSampler(call.Args[0], call.Args[1], false)
	args := []ir.Node{combined, call.Args[2], ir.NewIntConstant(component)}
	args = append(args, call.Args[3:]...)
	return &ir.CallNode{Op: ir.OpTextureGather, Args: args, Typ: call.Typ, Loc: call.Loc}
}

// queryDims returns the component count of a size query for the resource.
func queryDims(info *ir.TextureInfo) int {
	d := 2
	switch info.Dim {
	case ir.Dim1D, ir.DimBuffer:
		d = 1
	case ir.Dim3D:
		d = 3
	}
	if info.Arrayed {
		d++
	}
	return d
}

// decomposeGetDimensions expands GetDimensions into size/levels/samples
// queries assigned component-by-component into the output arguments. The
// overload shape decides the extras: dims+2 outputs means a leading mip
// level and a trailing level count; dims+1 means a trailing level or
// sample count.
func (l *Lowerer) decomposeGetDimensions(call *ir.CallNode) ir.Node {
	texture := call.Args[0]
	info := texture.Type().Texture
	if info == nil {
		l.Bag.Errorf(call.Loc, "GetDimensions on non-resource type %s", texture.Type().String())
		return call
	}
	dims := queryDims(info)
	outs := call.Args[1:]

	var mip, tail ir.Node
	switch len(outs) {
	case dims:
	case dims + 1:
		tail, outs = outs[dims], outs[:dims]
	case dims + 2:
		mip, tail, outs = outs[0], outs[dims+1], outs[1:dims+1]
	default:
		l.Bag.Errorf(call.Loc, "GetDimensions: %d outputs do not match a %d-dimensional resource", len(outs), dims)
		return call
	}

	queryArgs := []ir.Node{texture}
	if mip != nil {
		queryArgs = append(queryArgs, mip)
	}
	sizeType := ir.Vector(ir.KindUint, uint8(dims))
	query := &ir.CallNode{Op: ir.OpImageQuerySize, Args: queryArgs, Typ: sizeType, Loc: call.Loc}

	var nodes []ir.Node
	if dims == 1 {
		nodes = append(nodes, l.assign(outs[0], l.convert(query, outs[0].Type())))
	} else {
		tmp := l.newTemp(tempStore, sizeType)
		nodes = append(nodes, l.assign(tmp.Ref(), query))
		for i, out := range outs {
			comp := l.swizzleComponent(tmp.Ref(), i)
			nodes = append(nodes, l.assign(out, l.convert(comp, out.Type())))
		}
	}
	if tail != nil {
		op := ir.OpImageQueryLevels
		if info.Multisampled {
			op = ir.OpImageQuerySamples
		}
		q := &ir.CallNode{Op: op, Args: []ir.Node{texture}, Typ: ir.Scalar(ir.KindUint), Loc: call.Loc}
		nodes = append(nodes, l.assign(tail, l.convert(q, tail.Type())))
	}
	return l.seq(call.Loc, nodes...)
}

// swizzlePrefix extracts the leading n components of a vector.
func (l *Lowerer) swizzlePrefix(v ir.Node, n int) ir.Node {
	comps := make([]uint8, n)
	for i := range comps {
		comps[i] = uint8(i)
	}
	t := ir.Vector(v.Type().Basic, uint8(n))
	if n == 1 {
		t = ir.Scalar(v.Type().Basic)
	}
	return &ir.SwizzleNode{Base: v, Components: comps, Typ: t, Loc: ir.NodeLoc(v)}
}

// swizzleComponent extracts a single component of a vector.
func (l *Lowerer) swizzleComponent(v ir.Node, i int) ir.Node {
	return &ir.SwizzleNode{
		Base:       v,
		Components: []uint8{uint8(i)},
		Typ:        ir.Scalar(v.Type().Basic),
		Loc:        ir.NodeLoc(v),
	}
}
