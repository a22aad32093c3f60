package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// BasicKind is the basic kind of a value.
type BasicKind uint8

const (
	KindVoid BasicKind = iota
	KindBool
	KindInt
	KindUint
	KindInt64
	KindUint64
	KindFloat
	KindDouble
	KindSampler // opaque sampler handle
	KindTexture // opaque texture/image/buffer-resource handle
	KindStruct
)

func (k BasicKind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindSampler:
		return "sampler"
	case KindTexture:
		return "texture"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the kind participates in arithmetic promotion.
func (k BasicKind) IsNumeric() bool {
	switch k {
	case KindBool, KindInt, KindUint, KindInt64, KindUint64, KindFloat, KindDouble:
		return true
	default:
		return false
	}
}

// IsOpaque reports whether the kind is an opaque resource handle.
func (k BasicKind) IsOpaque() bool {
	return k == KindSampler || k == KindTexture
}

// ArraySizeKind distinguishes how one array dimension is sized.
type ArraySizeKind uint8

const (
	ArrayFixed ArraySizeKind = iota
	ArrayRuntime
	ArraySpecialized
)

// ArraySize is one dimension of an array type.
type ArraySize struct {
	Kind   ArraySizeKind
	Count  uint32 // valid for ArrayFixed
	SpecID uint32 // valid for ArraySpecialized
}

// FixedSize returns a fixed array dimension.
func FixedSize(n uint32) ArraySize { return ArraySize{Kind: ArrayFixed, Count: n} }

// RuntimeSize returns a runtime-sized array dimension.
func RuntimeSize() ArraySize { return ArraySize{Kind: ArrayRuntime} }

// Member is one struct member.
type Member struct {
	Name string
	Type Type
}

// MemberList is a struct's member list. Lists are shared by reference
// across identical declarations; a holder that needs a differing built-in
// decoration must call CloneForSpecialize first and decorate the clone.
type MemberList struct {
	Members []Member
	frozen  bool
}

// Freeze marks the list shared; further mutation must go through a clone.
func (l *MemberList) Freeze() { l.frozen = true }

// Frozen reports whether the list is shared.
func (l *MemberList) Frozen() bool { return l.frozen }

// CloneForSpecialize returns a writable deep copy of the member list.
// Holders of the original remain valid.
func (l *MemberList) CloneForSpecialize() *MemberList {
	clone := &MemberList{Members: make([]Member, len(l.Members))}
	copy(clone.Members, l.Members)
	return clone
}

// Dimension classifies a texture or buffer resource.
type Dimension uint8

const (
	Dim1D Dimension = iota
	Dim2D
	Dim3D
	DimCube
	DimBuffer
)

// TextureInfo describes an opaque texture, image, or buffer resource.
type TextureInfo struct {
	Dim          Dimension
	Arrayed      bool
	Multisampled bool
	Shadow       bool // comparison (depth) resource
	Storage      bool // UAV / writable image
	Structured   bool // structured buffer view
	ByteAddress  bool // byte-address buffer view
	HasCounter   bool // structured buffer with a hidden counter
	Element      BasicKind
}

// Type is the structural description of a value: basic kind, shape,
// optional array dimensions, optional struct members, and a Qualifier.
// Types have value semantics; the member list is structurally shared.
type Type struct {
	Basic      BasicKind
	VectorSize uint8 // 1 for scalars; 2..4 for vectors
	MatrixCols uint8 // 0 unless matrix
	MatrixRows uint8
	Arrays     []ArraySize  // outermost dimension first; nil when not an array
	Members    *MemberList  // non-nil only for KindStruct
	Texture    *TextureInfo // non-nil only for opaque resources
	Name       string       // struct/block name, if any
	Qual       Qualifier
}

// Scalar returns the scalar type of kind k with a default qualifier.
func Scalar(k BasicKind) Type {
	return Type{Basic: k, VectorSize: 1, Qual: DefaultQualifier()}
}

// Vector returns the n-component vector of kind k.
func Vector(k BasicKind, n uint8) Type {
	return Type{Basic: k, VectorSize: n, Qual: DefaultQualifier()}
}

// Matrix returns the cols×rows matrix of kind k.
func Matrix(k BasicKind, cols, rows uint8) Type {
	return Type{Basic: k, VectorSize: 1, MatrixCols: cols, MatrixRows: rows, Qual: DefaultQualifier()}
}

// Void returns the void type.
func Void() Type {
	return Type{Basic: KindVoid, VectorSize: 1, Qual: DefaultQualifier()}
}

// Struct returns a struct type over the given member list.
func Struct(name string, members *MemberList) Type {
	return Type{Basic: KindStruct, VectorSize: 1, Members: members, Name: name, Qual: DefaultQualifier()}
}

// IsScalar reports a non-aggregate single-component shape.
func (t Type) IsScalar() bool {
	return t.MatrixCols == 0 && t.VectorSize <= 1 && !t.IsArray() && t.Basic != KindStruct
}

// IsVector reports a vector shape (ignoring array-ness).
func (t Type) IsVector() bool { return t.MatrixCols == 0 && t.VectorSize > 1 }

// IsMatrix reports a matrix shape.
func (t Type) IsMatrix() bool { return t.MatrixCols > 0 }

// IsArray reports whether the type has array dimensions.
func (t Type) IsArray() bool { return len(t.Arrays) > 0 }

// IsStruct reports a struct type.
func (t Type) IsStruct() bool { return t.Basic == KindStruct }

// IsAggregate reports array or struct shape.
func (t Type) IsAggregate() bool { return t.IsArray() || t.IsStruct() }

// IsOpaque reports an opaque resource handle type.
func (t Type) IsOpaque() bool { return t.Basic.IsOpaque() }

// ContainsOpaque reports whether the type transitively contains an opaque
// handle member.
func (t Type) ContainsOpaque() bool {
	if t.IsOpaque() {
		return true
	}
	if t.Members != nil {
		for _, m := range t.Members.Members {
			if m.Type.ContainsOpaque() {
				return true
			}
		}
	}
	return false
}

// ContainsBuiltinInterstageIO reports whether the type transitively
// contains a member decorated with an interstage built-in.
func (t Type) ContainsBuiltinInterstageIO() bool {
	if t.Members == nil {
		return false
	}
	for _, m := range t.Members.Members {
		if m.Type.Qual.Builtin != BuiltinNone || m.Type.ContainsBuiltinInterstageIO() {
			return true
		}
	}
	return false
}

// ElementType returns the type of one element for arrays, one column for
// matrices, and one component for vectors.
func (t Type) ElementType() Type {
	elem := t
	switch {
	case t.IsArray():
		elem.Arrays = nil
		if len(t.Arrays) > 1 {
			elem.Arrays = t.Arrays[1:]
		}
	case t.IsMatrix():
		elem.MatrixCols = 0
		elem.MatrixRows = 0
		elem.VectorSize = t.MatrixRows
	case t.IsVector():
		elem.VectorSize = 1
	}
	elem.Qual = DefaultQualifier()
	elem.Qual.Storage = t.Qual.Storage
	return elem
}

// OuterArraySize returns the outermost fixed array dimension, or 0.
func (t Type) OuterArraySize() uint32 {
	if !t.IsArray() || t.Arrays[0].Kind != ArrayFixed {
		return 0
	}
	return t.Arrays[0].Count
}

// ComponentCount returns the number of scalar components of a
// non-aggregate shape (matrix counts cols*rows).
func (t Type) ComponentCount() int {
	if t.IsMatrix() {
		return int(t.MatrixCols) * int(t.MatrixRows)
	}
	if t.VectorSize == 0 {
		return 1
	}
	return int(t.VectorSize)
}

// LocationSlots returns how many interface location slots the type
// consumes. Doubles beyond two components take two slots per row; arrays
// multiply by their fixed dimensions.
func (t Type) LocationSlots() int {
	slots := 1
	if t.IsMatrix() {
		slots = int(t.MatrixCols)
		if t.Basic == KindDouble && t.MatrixRows > 2 {
			slots *= 2
		}
	} else if t.Basic == KindDouble && t.VectorSize > 2 {
		slots = 2
	}
	for _, a := range t.Arrays {
		if a.Kind == ArrayFixed {
			slots *= int(a.Count)
		}
	}
	return slots
}

// SameShape reports identical shape (vector/matrix/array geometry),
// ignoring basic kind and qualifiers.
func (t Type) SameShape(o Type) bool {
	if t.VectorSize != o.VectorSize || t.MatrixCols != o.MatrixCols || t.MatrixRows != o.MatrixRows {
		return false
	}
	if len(t.Arrays) != len(o.Arrays) {
		return false
	}
	for i := range t.Arrays {
		if t.Arrays[i] != o.Arrays[i] {
			return false
		}
	}
	return true
}

// SameResource reports that two opaque types describe the same resource:
// same element kind, array-ness, multisample-ness, shadow-ness and
// dimensionality. Used for exact matching of resource arguments.
func (t Type) SameResource(o Type) bool {
	if t.Basic != o.Basic {
		return false
	}
	if t.Texture == nil || o.Texture == nil {
		return t.Texture == o.Texture
	}
	a, b := *t.Texture, *o.Texture
	return a.Dim == b.Dim && a.Arrayed == b.Arrayed && a.Multisampled == b.Multisampled &&
		a.Shadow == b.Shadow && a.Storage == b.Storage && a.Element == b.Element
}

// Identical reports full structural equality, ignoring qualifiers.
func (t Type) Identical(o Type) bool {
	if t.Basic != o.Basic || !t.SameShape(o) {
		return false
	}
	if t.IsOpaque() {
		return t.SameResource(o)
	}
	if t.Basic == KindStruct {
		if t.Members == o.Members {
			return true
		}
		if t.Members == nil || o.Members == nil || len(t.Members.Members) != len(o.Members.Members) {
			return false
		}
		for i, m := range t.Members.Members {
			om := o.Members.Members[i]
			if m.Name != om.Name || !m.Type.Identical(om.Type) {
				return false
			}
		}
	}
	return true
}

// Mangle appends the type's signature-mangling text, used to build
// function mangled names.
func (t Type) Mangle(b *strings.Builder) {
	for _, a := range t.Arrays {
		switch a.Kind {
		case ArrayFixed:
			b.WriteByte('[')
			b.WriteString(strconv.FormatUint(uint64(a.Count), 10))
			b.WriteByte(']')
		default:
			b.WriteString("[]")
		}
	}
	switch {
	case t.IsMatrix():
		fmt.Fprintf(b, "m%d%d%s", t.MatrixCols, t.MatrixRows, t.Basic)
	case t.IsVector():
		fmt.Fprintf(b, "v%d%s", t.VectorSize, t.Basic)
	case t.Basic == KindStruct:
		b.WriteString("s-" + t.Name)
	default:
		b.WriteString(t.Basic.String())
	}
}

func (t Type) String() string {
	var b strings.Builder
	t.Mangle(&b)
	return b.String()
}
