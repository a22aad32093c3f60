package ir

import (
	"testing"

	"github.com/gogpu/shaderfront/diag"
)

func TestScalarValueAccessors(t *testing.T) {
	if got := FloatValue(1.5).Float(); got != 1.5 {
		t.Errorf("Expected 1.5, got %v", got)
	}
	if got := DoubleValue(2.25).Float(); got != 2.25 {
		t.Errorf("Expected 2.25, got %v", got)
	}
	if got := IntValue(-7).Int(); got != -7 {
		t.Errorf("Expected -7, got %v", got)
	}
	if !BoolValue(true).Bool() || BoolValue(false).Bool() {
		t.Error("bool accessors should round-trip")
	}
}

func TestConstantInterning(t *testing.T) {
	a := NewFloatConstant(0)
	b := NewFloatConstant(0)
	if &a.Values[0] != &b.Values[0] {
		t.Error("zero float payloads should share storage")
	}
	if a == b {
		t.Error("constant nodes themselves must stay distinct")
	}

	x := NewFloatConstant(3.5)
	y := NewFloatConstant(3.5)
	if x.Values[0] != y.Values[0] {
		t.Error("equal payloads should compare equal")
	}
}

func TestPlaceholder(t *testing.T) {
	if n, ok := Placeholder(Scalar(KindInt), diag.Loc{Line: 2}).(*ConstantNode); !ok {
		t.Error("a scalar placeholder should be a zero constant")
	} else if n.Typ.Basic != KindInt || n.Values[0].Int() != 0 {
		t.Error("the placeholder should keep the intended scalar type")
	}

	if n, ok := Placeholder(Void(), diag.Loc{}).(*SequenceNode); !ok {
		t.Error("a void placeholder should be an empty sequence")
	} else if n.Type().Basic != KindVoid {
		t.Error("the void placeholder should stay void-typed")
	}

	tex := Type{Basic: KindTexture, VectorSize: 1, Qual: DefaultQualifier(),
		Texture: &TextureInfo{Dim: Dim2D, Element: KindFloat}}
	if n, ok := Placeholder(tex, diag.Loc{}).(*ConstantNode); !ok || n.Typ.Basic != KindFloat {
		t.Error("an opaque placeholder should fall back to a float zero")
	}
}

func TestZeroConstant(t *testing.T) {
	z := ZeroConstant(Vector(KindFloat, 3))
	if len(z.Values) != 3 {
		t.Fatalf("Expected 3 components, got %d", len(z.Values))
	}
	for i, v := range z.Values {
		if v.Float() != 0 {
			t.Errorf("component %d: expected 0, got %v", i, v.Float())
		}
	}
}
