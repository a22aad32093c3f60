package sem

import "github.com/gogpu/shaderfront/ir"

// promotionRank orders basic kinds for implicit conversion. A first
// resolution pass only converts upward along this order; the narrowing
// fallback pass also allows downward conversion, which HLSL permits.
func promotionRank(k ir.BasicKind) int {
	switch k {
	case ir.KindBool:
		return 0
	case ir.KindInt:
		return 1
	case ir.KindUint:
		return 2
	case ir.KindInt64:
		return 3
	case ir.KindUint64:
		return 4
	case ir.KindFloat:
		return 5
	case ir.KindDouble:
		return 6
	default:
		return -1
	}
}

// kindConvertible reports whether the basic kind can implicitly convert.
func kindConvertible(from, to ir.BasicKind, allowNarrowing bool) bool {
	if from == to {
		return true
	}
	rf, rt := promotionRank(from), promotionRank(to)
	if rf < 0 || rt < 0 {
		return false
	}
	if rt > rf {
		return true
	}
	return allowNarrowing
}

// shapeConvertible reports whether the value shape can implicitly convert:
// identical shapes, scalar broadcast to vector or matrix, and vector
// truncation. Vectors never widen implicitly, and matrix-to-matrix shape
// conversion is unsupported.
func shapeConvertible(from, to ir.Type) bool {
	if from.SameShape(to) {
		return true
	}
	if from.IsArray() || to.IsArray() {
		return false
	}
	if from.IsScalar() {
		return true // broadcast
	}
	if from.IsVector() && to.IsVector() {
		return to.VectorSize < from.VectorSize // truncation only
	}
	if from.IsVector() && to.IsScalar() {
		return true // take the first component
	}
	return false
}

// Convertible reports whether an argument of type from can be passed to a
// parameter of type to for a call with operation tag op. argIndex is the
// argument position; resource/sampler method families require position
// zero to match the resource exactly.
func Convertible(from, to ir.Type, op ir.Op, argIndex int, allowNarrowing bool) bool {
	if from.Identical(to) {
		return true
	}
	if op.RequiresExactResource() && argIndex == 0 {
		return false // non-identical resource argument never converts
	}
	if from.IsOpaque() || to.IsOpaque() {
		return false
	}
	if from.IsStruct() || to.IsStruct() || from.IsArray() || to.IsArray() {
		return false // aggregates never implicitly convert
	}
	if from.Basic == ir.KindVoid || to.Basic == ir.KindVoid {
		return false
	}
	return kindConvertible(from.Basic, to.Basic, allowNarrowing) && shapeConvertible(from, to)
}

// shapeDistance measures how far a shape conversion reaches: zero for the
// same shape, otherwise the component-count difference.
func shapeDistance(from, to ir.Type) int {
	if from.SameShape(to) {
		return 0
	}
	d := to.ComponentCount() - from.ComponentCount()
	if d < 0 {
		d = -d
	}
	if d == 0 {
		// Different shape with equal component count, e.g. vec4 vs mat2x2.
		d = 1
	}
	return d
}

func kindDistance(from, to ir.BasicKind) int {
	d := promotionRank(to) - promotionRank(from)
	if d < 0 {
		d = -d
	}
	return d
}

// Better reports whether, for an argument of type from, converting to to1
// is strictly better than converting to to2. Exact match beats any
// conversion; a smaller shape change beats a larger one; for equal shape
// change, the shorter promotion distance wins.
func Better(from, to1, to2 ir.Type) bool {
	exact1, exact2 := from.Identical(to1), from.Identical(to2)
	if exact1 || exact2 {
		return exact1 && !exact2
	}
	s1, s2 := shapeDistance(from, to1), shapeDistance(from, to2)
	if s1 != s2 {
		return s1 < s2
	}
	return kindDistance(from.Basic, to1.Basic) < kindDistance(from.Basic, to2.Basic)
}
