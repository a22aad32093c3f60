package sem

import (
	"errors"
	"testing"

	"github.com/gogpu/shaderfront/ir"
)

func makeFn(ids *IDAllocator, name string, ret ir.Type, params ...ir.Type) *Function {
	ps := make([]Parameter, len(params))
	for i, p := range params {
		ps[i] = Parameter{Type: p}
	}
	return NewFunction(ids.Next(), name, ret, ps...)
}

func TestResolveExactMatch(t *testing.T) {
	var ids IDAllocator
	f := ir.Scalar(ir.KindFloat)
	i := ir.Scalar(ir.KindInt)

	fi := makeFn(&ids, "g", ir.Void(), i)
	ff := makeFn(&ids, "g", ir.Void(), f)

	got, err := Resolve([]*Function{fi, ff}, []ir.Type{f})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != ff {
		t.Error("exact float overload should win for a float argument")
	}
}

func TestResolveUpwardOnlyFirstPass(t *testing.T) {
	var ids IDAllocator
	f := ir.Scalar(ir.KindFloat)
	i := ir.Scalar(ir.KindInt)
	d := ir.Scalar(ir.KindDouble)

	fi := makeFn(&ids, "g", ir.Void(), i)
	fd := makeFn(&ids, "g", ir.Void(), d)

	// float->int is narrowing, float->double promotes; the first pass must
	// pick the promotion even though int is "closer" by rank distance.
	got, err := Resolve([]*Function{fi, fd}, []ir.Type{f})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != fd {
		t.Error("first pass must not consider narrowing candidates")
	}
}

func TestResolveNarrowingFallback(t *testing.T) {
	var ids IDAllocator
	f := ir.Scalar(ir.KindFloat)
	i := ir.Scalar(ir.KindInt)

	fi := makeFn(&ids, "g", ir.Void(), i)

	got, err := Resolve([]*Function{fi}, []ir.Type{f})
	if err != nil {
		t.Fatalf("narrowing fallback should find the int overload: %v", err)
	}
	if got != fi {
		t.Error("Expected the int overload")
	}

	_, err = Resolve([]*Function{fi}, []ir.Type{ir.Struct("S", &ir.MemberList{})})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	var ids IDAllocator
	f := ir.Scalar(ir.KindFloat)
	i := ir.Scalar(ir.KindInt)

	a := makeFn(&ids, "g", ir.Void(), i, f)
	b := makeFn(&ids, "g", ir.Void(), f, i)

	// Each candidate wins one argument; neither dominates.
	_, err := Resolve([]*Function{a, b}, []ir.Type{i, i})
	if !errors.Is(err, ErrAmbiguous) {
		t.Errorf("Expected ErrAmbiguous, got %v", err)
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	var ids IDAllocator
	f := ir.Scalar(ir.KindFloat)
	i := ir.Scalar(ir.KindInt)
	d := ir.Scalar(ir.KindDouble)
	v3 := ir.Vector(ir.KindFloat, 3)

	cands := []*Function{
		makeFn(&ids, "g", ir.Void(), i),
		makeFn(&ids, "g", ir.Void(), f),
		makeFn(&ids, "g", ir.Void(), d),
		makeFn(&ids, "g", ir.Void(), v3),
	}
	args := []ir.Type{ir.Scalar(ir.KindUint)}

	want, err := Resolve(cands, args)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Every rotation of the candidate list must elect the same winner.
	for r := 1; r < len(cands); r++ {
		rotated := append(append([]*Function{}, cands[r:]...), cands[:r]...)
		got, err := Resolve(rotated, args)
		if err != nil {
			t.Fatalf("rotation %d: unexpected error: %v", r, err)
		}
		if got != want {
			t.Errorf("rotation %d: winner changed from %s to %s", r, want.MangledName(), got.MangledName())
		}
	}
}

func TestResolveExactResourceArgument(t *testing.T) {
	var ids IDAllocator
	tex2d := ir.Type{Basic: ir.KindTexture, VectorSize: 1, Texture: &ir.TextureInfo{Dim: ir.Dim2D, Element: ir.KindFloat}}
	tex3d := ir.Type{Basic: ir.KindTexture, VectorSize: 1, Texture: &ir.TextureInfo{Dim: ir.Dim3D, Element: ir.KindFloat}}
	v2 := ir.Vector(ir.KindFloat, 2)
	v3 := ir.Vector(ir.KindFloat, 3)

	s2 := makeFn(&ids, "Sample", ir.Vector(ir.KindFloat, 4), tex2d, v2)
	s2.Op = ir.OpMethodSample
	s3 := makeFn(&ids, "Sample", ir.Vector(ir.KindFloat, 4), tex3d, v3)
	s3.Op = ir.OpMethodSample

	got, err := Resolve([]*Function{s3, s2}, []ir.Type{tex2d, v2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != s2 {
		t.Error("the resource argument must select its exact overload")
	}

	_, err = Resolve([]*Function{s3}, []ir.Type{tex2d, v2})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("a mismatched resource must never convert, got %v", err)
	}
}

func TestResolveCallFastPath(t *testing.T) {
	var ids IDAllocator
	tbl := NewTable(&ids)
	f := ir.Scalar(ir.KindFloat)

	ff := makeFn(&ids, "g", ir.Void(), f)
	tbl.Insert(ff)
	tbl.Insert(makeFn(&ids, "g", ir.Void(), ir.Scalar(ir.KindDouble)))

	got, err := tbl.ResolveCall("g", []ir.Type{f})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != ff {
		t.Error("exact mangled lookup should short-circuit ranking")
	}
}

func TestResolveCallBuiltinRePromotion(t *testing.T) {
	var ids IDAllocator
	tbl := NewTable(&ids)
	f := ir.Scalar(ir.KindFloat)
	v3 := ir.Vector(ir.KindFloat, 3)

	scalarMax := makeFn(&ids, "max", f, f, f)
	scalarMax.Op = ir.OpClamp
	vecMax := makeFn(&ids, "max", v3, v3, v3)
	vecMax.Op = ir.OpClamp
	tbl.Insert(scalarMax)
	tbl.Insert(vecMax)

	// Mixed int/float scalars promote to the scalar float signature.
	got, err := tbl.ResolveCall("max", []ir.Type{ir.Scalar(ir.KindInt), f})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != scalarMax {
		t.Errorf("Expected the scalar overload, got %s", got.MangledName())
	}

	// Vector arguments with an int element stay on the vector signature
	// after re-promotion.
	got, err = tbl.ResolveCall("max", []ir.Type{ir.Vector(ir.KindInt, 3), v3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != vecMax {
		t.Errorf("Expected the vector overload, got %s", got.MangledName())
	}
}

func TestAppendDefaults(t *testing.T) {
	var ids IDAllocator
	f := ir.Scalar(ir.KindFloat)
	def := ir.NewFloatConstant(1)

	fn := NewFunction(ids.Next(), "g", ir.Void(),
		Parameter{Name: "a", Type: f},
		Parameter{Name: "b", Type: f, Default: def},
	)
	if fn.RequiredArgs() != 1 {
		t.Fatalf("Expected 1 required arg, got %d", fn.RequiredArgs())
	}

	args := AppendDefaults(fn, []ir.Node{ir.NewFloatConstant(2)})
	if len(args) != 2 {
		t.Fatalf("Expected 2 args after padding, got %d", len(args))
	}
	filled, ok := args[1].(*ir.ConstantNode)
	if !ok || filled.Values[0] != def.Values[0] {
		t.Error("the trailing default should fill the missing argument")
	}

	// Each call site owns its default subtree; two resolutions of the
	// same candidate must not share one node.
	again := AppendDefaults(fn, []ir.Node{ir.NewFloatConstant(3)})
	if args[1] == again[1] {
		t.Error("padded defaults must be distinct nodes per call site")
	}
	if args[1] == ir.Node(def) {
		t.Error("the stored default itself must never enter an argument list")
	}
}
