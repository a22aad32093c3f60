package lower

import (
	"testing"

	"github.com/gogpu/shaderfront/ir"
	"github.com/gogpu/shaderfront/sem"
)

func textureNode(l *Lowerer, name string, info ir.TextureInfo) *ir.SymbolNode {
	t := ir.Type{Basic: ir.KindTexture, VectorSize: 1, Qual: ir.DefaultQualifier(), Texture: &info}
	return sem.NewVariable(l.IDs.Next(), name, t).Ref()
}

func samplerNode(l *Lowerer, name string) *ir.SymbolNode {
	t := ir.Type{Basic: ir.KindSampler, VectorSize: 1, Qual: ir.DefaultQualifier()}
	return sem.NewVariable(l.IDs.Next(), name, t).Ref()
}

func TestDecomposeSample(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	smp := samplerNode(l, "smp")
	coord := symNode(l, "uv", ir.Vector(ir.KindFloat, 2))

	call := &ir.CallNode{Op: ir.OpMethodSample, Args: []ir.Node{tex, smp, coord}, Typ: ir.Vector(ir.KindFloat, 4)}
	got, ok := l.Decompose(call).(*ir.CallNode)
	if !ok || got.Op != ir.OpTextureSample {
		t.Fatalf("Sample should become a texture sample, got %#v", got)
	}
	combined, ok := got.Args[0].(*ir.CallNode)
	if !ok || combined.Op != ir.OpConstructCombinedSampler {
		t.Fatal("argument 0 should be the synthesized combined sampler")
	}
	if combined.Args[0] != ir.Node(tex) || combined.Args[1] != ir.Node(smp) {
		t.Error("the combined sampler pairs the texture with the sampler state")
	}
	if got.Args[1] != ir.Node(coord) {
		t.Error("the coordinate should pass through")
	}
}

func TestDecomposeSampleCmpWidensCoordinate(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	smp := samplerNode(l, "smpCmp")
	ref := symNode(l, "ref", ir.Scalar(ir.KindFloat))

	tests := []struct {
		name     string
		info     ir.TextureInfo
		coord    ir.Type
		wantWide uint8 // 0 means the reference stays separate
	}{
		{"1d", ir.TextureInfo{Dim: ir.Dim1D, Element: ir.KindFloat}, ir.Scalar(ir.KindFloat), 2},
		{"2d", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat}, ir.Vector(ir.KindFloat, 2), 3},
		{"2d-array", ir.TextureInfo{Dim: ir.Dim2D, Arrayed: true, Element: ir.KindFloat}, ir.Vector(ir.KindFloat, 3), 4},
		{"cube-array", ir.TextureInfo{Dim: ir.DimCube, Arrayed: true, Element: ir.KindFloat}, ir.Vector(ir.KindFloat, 4), 0},
	}

	for _, tt := range tests {
		tex := textureNode(l, "tex", tt.info)
		coord := symNode(l, "uv", tt.coord)
		call := &ir.CallNode{
			Op:   ir.OpMethodSampleCmp,
			Args: []ir.Node{tex, smp, coord, ref},
			Typ:  ir.Scalar(ir.KindFloat),
		}
		got := l.Decompose(call).(*ir.CallNode)
		if got.Op != ir.OpTextureSampleCmp {
			t.Errorf("%s: expected a comparison sample, got op %d", tt.name, got.Op)
			continue
		}
		combined := got.Args[0].(*ir.CallNode)
		if combined.Typ.Texture == nil || !combined.Typ.Texture.Shadow {
			t.Errorf("%s: the combined sampler should be marked shadow", tt.name)
		}
		if tt.wantWide == 0 {
			if len(got.Args) != 3 || got.Args[2] != ir.Node(ref) {
				t.Errorf("%s: a four-wide coordinate keeps the reference separate", tt.name)
			}
			continue
		}
		merged, ok := got.Args[1].(*ir.CallNode)
		if !ok || merged.Op != ir.OpConstructComposite {
			t.Errorf("%s: the reference should fold into the coordinate", tt.name)
			continue
		}
		if merged.Typ.VectorSize != tt.wantWide {
			t.Errorf("%s: expected a %d-wide coordinate, got %d", tt.name, tt.wantWide, merged.Typ.VectorSize)
		}
	}
}

func TestDecomposeSampleCmpLevelZero(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	smp := samplerNode(l, "smp")
	coord := symNode(l, "uv", ir.Vector(ir.KindFloat, 2))
	ref := symNode(l, "ref", ir.Scalar(ir.KindFloat))

	call := &ir.CallNode{
		Op:   ir.OpMethodSampleCmpLevelZero,
		Args: []ir.Node{tex, smp, coord, ref},
		Typ:  ir.Scalar(ir.KindFloat),
	}
	got := l.Decompose(call).(*ir.CallNode)
	last := got.Args[len(got.Args)-1]
	lod, ok := last.(*ir.ConstantNode)
	if !ok || lod.Values[0].Float() != 0 {
		t.Error("SampleCmpLevelZero should pin an explicit zero level")
	}
}

func TestDecomposeTextureLoadPeelsMip(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	loc := symNode(l, "loc", ir.Vector(ir.KindInt, 3))

	call := &ir.CallNode{Op: ir.OpMethodLoad, Args: []ir.Node{tex, loc}, Typ: ir.Vector(ir.KindFloat, 4)}
	fetch, ok := l.Decompose(call).(*ir.CallNode)
	if !ok || fetch.Op != ir.OpTextureFetch {
		t.Fatalf("Load on a sampled texture should fetch, got %#v", fetch)
	}
	coord, ok := fetch.Args[1].(*ir.SwizzleNode)
	if !ok || len(coord.Components) != 2 {
		t.Error("the texel coordinate should drop the trailing mip component")
	}
	level, ok := fetch.Args[2].(*ir.SwizzleNode)
	if !ok || len(level.Components) != 1 || level.Components[0] != 2 {
		t.Error("the mip level should come from the trailing component")
	}
}

func TestDecomposeTextureLoadStorage(t *testing.T) {
	l := newTestLowerer(sem.StageCompute)
	img := textureNode(l, "img", ir.TextureInfo{Dim: ir.Dim2D, Storage: true, Element: ir.KindFloat})
	loc := symNode(l, "loc", ir.Vector(ir.KindInt, 2))

	call := &ir.CallNode{Op: ir.OpMethodLoad, Args: []ir.Node{img, loc}, Typ: ir.Vector(ir.KindFloat, 4)}
	got, ok := l.Decompose(call).(*ir.CallNode)
	if !ok || got.Op != ir.OpImageLoad {
		t.Fatalf("Load on a storage image loads directly, got %#v", got)
	}
	if got.Args[1] != ir.Node(loc) {
		t.Error("storage loads keep the full location; there is no mip component")
	}
}

func TestDecomposeGatherComponents(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	smp := samplerNode(l, "smp")
	coord := symNode(l, "uv", ir.Vector(ir.KindFloat, 2))

	tests := []struct {
		op   ir.Op
		want int64
	}{
		{ir.OpMethodGather, 0},
		{ir.OpMethodGatherRed, 0},
		{ir.OpMethodGatherGreen, 1},
		{ir.OpMethodGatherBlue, 2},
		{ir.OpMethodGatherAlpha, 3},
	}
	for _, tt := range tests {
		call := &ir.CallNode{Op: tt.op, Args: []ir.Node{tex, smp, coord}, Typ: ir.Vector(ir.KindFloat, 4)}
		got := l.Decompose(call).(*ir.CallNode)
		if got.Op != ir.OpTextureGather {
			t.Errorf("op %d: expected a gather, got %d", tt.op, got.Op)
			continue
		}
		comp, ok := got.Args[2].(*ir.ConstantNode)
		if !ok || comp.Values[0].Int() != tt.want {
			t.Errorf("op %d: expected component %d", tt.op, tt.want)
		}
	}
}

func TestDecomposeGetDimensions(t *testing.T) {
	l := newTestLowerer(sem.StageCompute)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	w := symNode(l, "w", ir.Scalar(ir.KindUint))
	h := symNode(l, "h", ir.Scalar(ir.KindUint))

	call := &ir.CallNode{Op: ir.OpMethodGetDimensions, Args: []ir.Node{tex, w, h}, Typ: ir.Void()}
	seq, ok := l.Decompose(call).(*ir.SequenceNode)
	if !ok {
		t.Fatal("GetDimensions should become a sequence")
	}
	if len(seq.Nodes) != 3 {
		t.Fatalf("Expected [query, w, h], got %d nodes", len(seq.Nodes))
	}
	first := seq.Nodes[0].(*ir.AssignNode)
	tmp, ok := first.Target.(*ir.SymbolNode)
	if !ok || tmp.Name != "storeTemp" {
		t.Error("the size query result should land in the reserved temporary")
	}
	if q, ok := first.Value.(*ir.CallNode); !ok || q.Op != ir.OpImageQuerySize {
		t.Error("the first node should run the size query")
	}
}

func TestDecomposeGetDimensionsWithMipAndLevels(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	mip := symNode(l, "mip", ir.Scalar(ir.KindUint))
	w := symNode(l, "w", ir.Scalar(ir.KindUint))
	h := symNode(l, "h", ir.Scalar(ir.KindUint))
	levels := symNode(l, "levels", ir.Scalar(ir.KindUint))

	call := &ir.CallNode{Op: ir.OpMethodGetDimensions, Args: []ir.Node{tex, mip, w, h, levels}, Typ: ir.Void()}
	seq := l.Decompose(call).(*ir.SequenceNode)

	first := seq.Nodes[0].(*ir.AssignNode)
	query := first.Value.(*ir.CallNode)
	if len(query.Args) != 2 || query.Args[1] != ir.Node(mip) {
		t.Error("the mip level should parameterize the size query")
	}

	last := seq.Nodes[len(seq.Nodes)-1].(*ir.AssignNode)
	if last.Target != ir.Node(levels) {
		t.Fatal("the trailing output receives the level count")
	}
	levelQuery := unwrapConvert(last.Value)
	if q, ok := levelQuery.(*ir.CallNode); !ok || q.Op != ir.OpImageQueryLevels {
		t.Error("the level count should come from a levels query")
	}
}

func TestDecomposeGetDimensionsMultisampled(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Multisampled: true, Element: ir.KindFloat})
	w := symNode(l, "w", ir.Scalar(ir.KindUint))
	h := symNode(l, "h", ir.Scalar(ir.KindUint))
	samples := symNode(l, "n", ir.Scalar(ir.KindUint))

	call := &ir.CallNode{Op: ir.OpMethodGetDimensions, Args: []ir.Node{tex, w, h, samples}, Typ: ir.Void()}
	seq := l.Decompose(call).(*ir.SequenceNode)
	last := seq.Nodes[len(seq.Nodes)-1].(*ir.AssignNode)
	q, ok := unwrapConvert(last.Value).(*ir.CallNode)
	if !ok || q.Op != ir.OpImageQuerySamples {
		t.Error("a multisampled resource reports its sample count")
	}
}

func TestDecomposeCalculateLevelOfDetail(t *testing.T) {
	l := newTestLowerer(sem.StageFragment)
	tex := textureNode(l, "tex", ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat})
	smp := samplerNode(l, "smp")
	coord := symNode(l, "uv", ir.Vector(ir.KindFloat, 2))

	call := &ir.CallNode{Op: ir.OpMethodCalculateLevelOfDetail, Args: []ir.Node{tex, smp, coord}, Typ: ir.Scalar(ir.KindFloat)}
	got, ok := l.Decompose(call).(*ir.CallNode)
	if !ok || got.Op != ir.OpTextureQueryLod {
		t.Fatalf("Expected a LOD query, got %#v", got)
	}
	if combined, ok := got.Args[0].(*ir.CallNode); !ok || combined.Op != ir.OpConstructCombinedSampler {
		t.Error("the query should run on the combined sampler")
	}
}

// unwrapConvert strips an inserted conversion wrapper, if any.
func unwrapConvert(n ir.Node) ir.Node {
	if u, ok := n.(*ir.UnaryNode); ok && u.Op == ir.OpConvert {
		return u.Operand
	}
	return n
}
