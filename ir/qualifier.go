package ir

// Storage is a value's storage class.
type Storage uint8

const (
	StorageTemp Storage = iota
	StorageGlobal
	StorageConst
	StorageUniform
	StorageBuffer
	StorageIn  // varying input at the stage boundary
	StorageOut // varying output at the stage boundary
)

func (s Storage) String() string {
	switch s {
	case StorageTemp:
		return "temp"
	case StorageGlobal:
		return "global"
	case StorageConst:
		return "const"
	case StorageUniform:
		return "uniform"
	case StorageBuffer:
		return "buffer"
	case StorageIn:
		return "in"
	case StorageOut:
		return "out"
	default:
		return "unknown"
	}
}

// Builtin tags a declaration with its canonical meaning in the execution
// environment, or BuiltinNone for ordinary user data.
type Builtin uint8

const (
	BuiltinNone Builtin = iota
	BuiltinPosition
	BuiltinPointSize
	BuiltinClipDistance
	BuiltinCullDistance
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinFragCoord
	BuiltinFragDepth
	BuiltinFrontFacing
	BuiltinSampleIndex
	BuiltinSampleMask
	BuiltinPrimitiveID
	BuiltinInvocationID
	BuiltinTessCoord
	BuiltinTessLevelOuter
	BuiltinTessLevelInner
	BuiltinLayer
	BuiltinViewportIndex
	BuiltinGlobalInvocationID
	BuiltinLocalInvocationID
	BuiltinLocalInvocationIndex
	BuiltinWorkGroupID
	BuiltinNumWorkGroups
)

// LayoutUnset marks an absent interface layout number.
const LayoutUnset int32 = -1

// Qualifier carries a declaration's storage class, built-in tag, interface
// layout numbers, and auxiliary interpolation/IO flags.
type Qualifier struct {
	Storage Storage
	Builtin Builtin

	// Interface layout numbers; LayoutUnset when not declared.
	Binding  int32
	Set      int32
	Location int32
	Offset   int32

	Patch         bool
	Centroid      bool
	Flat          bool
	NoPerspective bool

	// Stream is the geometry output stream index; LayoutUnset when absent.
	Stream int32

	// SpecID is the specialization-constant id; LayoutUnset when absent.
	SpecID int32
}

// DefaultQualifier returns a temporary-storage qualifier with every layout
// number unset.
func DefaultQualifier() Qualifier {
	return Qualifier{
		Storage:  StorageTemp,
		Binding:  LayoutUnset,
		Set:      LayoutUnset,
		Location: LayoutUnset,
		Offset:   LayoutUnset,
		Stream:   LayoutUnset,
		SpecID:   LayoutUnset,
	}
}

// IsIO reports a varying in/out storage class.
func (q Qualifier) IsIO() bool { return q.Storage == StorageIn || q.Storage == StorageOut }

// HasLocation reports a declared location number.
func (q Qualifier) HasLocation() bool { return q.Location != LayoutUnset }

// ClearInterstage strips IO-related qualification down to ordinary
// temporary data, keeping only the storage-independent flags.
func (q *Qualifier) ClearInterstage() {
	q.Storage = StorageTemp
	q.Builtin = BuiltinNone
	q.Location = LayoutUnset
	q.Patch = false
	q.Centroid = false
	q.Flat = false
	q.NoPerspective = false
	q.Stream = LayoutUnset
}

// MergeInterstage inherits root-level IO qualification into a flattened
// leaf: storage class, interpolation flags, and patch-ness propagate; the
// leaf keeps its own built-in tag and layout numbers.
func (q *Qualifier) MergeInterstage(root Qualifier) {
	q.Storage = root.Storage
	q.Patch = q.Patch || root.Patch
	q.Centroid = q.Centroid || root.Centroid
	q.Flat = q.Flat || root.Flat
	q.NoPerspective = q.NoPerspective || root.NoPerspective
}
