package ir

import (
	"math"

	"github.com/gogpu/shaderfront/diag"
)

// ScalarValue is one scalar component of a constant payload, stored as its
// bit representation.
type ScalarValue struct {
	Kind BasicKind
	Bits uint64
}

// Float returns the value as float64 for float/double kinds.
func (v ScalarValue) Float() float64 {
	if v.Kind == KindFloat {
		return float64(math.Float32frombits(uint32(v.Bits)))
	}
	return math.Float64frombits(v.Bits)
}

// Int returns the value as int64 for integer kinds.
func (v ScalarValue) Int() int64 { return int64(v.Bits) }

// Bool returns the value as bool.
func (v ScalarValue) Bool() bool { return v.Bits != 0 }

// FloatValue builds a float scalar value.
func FloatValue(f float64) ScalarValue {
	return ScalarValue{Kind: KindFloat, Bits: uint64(math.Float32bits(float32(f)))}
}

// DoubleValue builds a double scalar value.
func DoubleValue(f float64) ScalarValue {
	return ScalarValue{Kind: KindDouble, Bits: math.Float64bits(f)}
}

// IntValue builds an int scalar value.
func IntValue(i int64) ScalarValue { return ScalarValue{Kind: KindInt, Bits: uint64(i)} }

// UintValue builds a uint scalar value.
func UintValue(u uint64) ScalarValue { return ScalarValue{Kind: KindUint, Bits: u} }

// BoolValue builds a bool scalar value.
func BoolValue(b bool) ScalarValue {
	v := ScalarValue{Kind: KindBool}
	if b {
		v.Bits = 1
	}
	return v
}

// Interned single-component payloads. The zero and one of each numeric
// kind come up constantly in decompositions (clamp bounds, increments);
// sharing the payload slice keeps them cheap. The nodes themselves are
// still built per use site because nodes own their tree position.
var internedScalars = map[ScalarValue][]ScalarValue{
	FloatValue(0): {FloatValue(0)}, FloatValue(1): {FloatValue(1)},
	IntValue(0): {IntValue(0)}, IntValue(1): {IntValue(1)},
	UintValue(0): {UintValue(0)}, UintValue(1): {UintValue(1)},
}

func singleValue(v ScalarValue) []ScalarValue {
	if s, ok := internedScalars[v]; ok {
		return s
	}
	return []ScalarValue{v}
}

// NewConstant builds a constant node of type t from component values.
func NewConstant(t Type, values ...ScalarValue) *ConstantNode {
	if len(values) == 1 {
		return &ConstantNode{Typ: t, Values: singleValue(values[0])}
	}
	return &ConstantNode{Typ: t, Values: values}
}

// NewIntConstant builds a scalar int constant.
func NewIntConstant(i int64) *ConstantNode {
	return NewConstant(Scalar(KindInt), IntValue(i))
}

// NewUintConstant builds a scalar uint constant.
func NewUintConstant(u uint64) *ConstantNode {
	return NewConstant(Scalar(KindUint), UintValue(u))
}

// NewFloatConstant builds a scalar float constant.
func NewFloatConstant(f float64) *ConstantNode {
	return NewConstant(Scalar(KindFloat), FloatValue(f))
}

// NewBoolConstant builds a scalar bool constant.
func NewBoolConstant(b bool) *ConstantNode {
	return NewConstant(Scalar(KindBool), BoolValue(b))
}

// Placeholder builds the neutral substitute node used where an expression
// could not be analyzed. The diagnostic has already been recorded; the
// placeholder lets the rest of the unit keep collecting diagnostics.
func Placeholder(t Type, loc diag.Loc) Node {
	if t.Basic == KindVoid {
		return &SequenceNode{Loc: loc}
	}
	if t.IsOpaque() || t.IsStruct() || t.IsArray() {
		t = Scalar(KindFloat)
	}
	n := ZeroConstant(t)
	n.Loc = loc
	return n
}

// ZeroConstant builds the all-zero constant of a non-aggregate type.
func ZeroConstant(t Type) *ConstantNode {
	n := t.ComponentCount()
	values := make([]ScalarValue, n)
	for i := range values {
		values[i] = ScalarValue{Kind: t.Basic}
	}
	return NewConstant(t, values...)
}
