package ir

// Op is the operation tag carried by Call and Assign nodes.
//
// The vocabulary has two families. Method tags (OpMethod*, OpInterlocked*,
// OpMul, ...) are produced by overload resolution against the built-in
// tables and are consumed by intrinsic decomposition. Primitive tags are
// what decomposition emits; the code generator consumes primitive tags
// only.
type Op uint16

const (
	OpNull Op = iota // ordinary user call / simple assignment

	// Arithmetic and comparison primitives.
	OpAssign
	OpAdd
	OpSub
	OpMulComponents // component-wise multiply
	OpDiv
	OpMod
	OpShiftRight
	OpNegate
	OpLessThan // component-wise less-than, bool result
	OpEqual
	OpAnyTrue // horizontal "any component true" reduction

	// Increment/decrement; carried on Assign nodes by the l-value rewriter.
	OpPreIncrement
	OpPreDecrement
	OpPostIncrement
	OpPostDecrement
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign

	// Matrix/vector multiply dispatch targets.
	OpMatrixTimesMatrix
	OpMatrixTimesVector
	OpVectorTimesMatrix
	OpMatrixTimesScalar
	OpVectorTimesScalar
	OpDot

	// Scalar math primitives used by decompositions.
	OpClamp
	OpSin
	OpCos

	// Control primitives.
	OpKill
	OpSequence

	// Conversion and construction primitives.
	OpConvert
	OpConstructComposite

	// Resource access primitives.
	OpIndexDirect
	OpIndexIndirect
	OpImageLoad
	OpImageStore
	OpImageQuerySize
	OpImageQueryLevels
	OpImageQuerySamples
	OpConstructCombinedSampler
	OpTextureSample
	OpTextureSampleLevel
	OpTextureSampleGrad
	OpTextureSampleCmp
	OpTextureFetch
	OpTextureGather
	OpTextureQueryLod

	// Atomic primitives. Argument 0 is either a plain memory l-value or a
	// spliced (resource, coordinate) pair.
	OpAtomicAdd
	OpAtomicMin
	OpAtomicMax
	OpAtomicAnd
	OpAtomicOr
	OpAtomicXor
	OpAtomicExchange
	OpAtomicCompSwap

	// Geometry primitives.
	OpEmitVertex
	OpEndPrimitive

	// ---- Method tags below; none survives decomposition. ----

	OpMul
	OpSaturate
	OpRcp
	OpSinCos
	OpClip

	OpMethodSample
	OpMethodSampleLevel
	OpMethodSampleGrad
	OpMethodSampleCmp
	OpMethodSampleCmpLevelZero
	OpMethodLoad
	OpMethodGather
	OpMethodGatherRed
	OpMethodGatherGreen
	OpMethodGatherBlue
	OpMethodGatherAlpha
	OpMethodGetDimensions
	OpMethodCalculateLevelOfDetail

	OpMethodBufferLoad
	OpMethodBufferLoad2
	OpMethodBufferLoad3
	OpMethodBufferLoad4
	OpMethodBufferStore
	OpMethodBufferStore2
	OpMethodBufferStore3
	OpMethodBufferStore4
	OpMethodIncrementCounter
	OpMethodDecrementCounter

	OpMethodAppend
	OpMethodRestartStrip

	OpInterlockedAdd
	OpInterlockedMin
	OpInterlockedMax
	OpInterlockedAnd
	OpInterlockedOr
	OpInterlockedXor
	OpInterlockedExchange
	OpInterlockedCompareExchange
	OpInterlockedCompareStore
)

// IsMethod reports a high-level method tag that decomposition must rewrite.
func (op Op) IsMethod() bool { return op >= OpMul }

// IsAtomicMethod reports an Interlocked* method tag.
func (op Op) IsAtomicMethod() bool {
	return op >= OpInterlockedAdd && op <= OpInterlockedCompareStore
}

// IsSampleMethod reports a texture/sampler object method tag.
func (op Op) IsSampleMethod() bool {
	return op >= OpMethodSample && op <= OpMethodCalculateLevelOfDetail
}

// IsBufferMethod reports a structured/byte-address buffer method tag.
func (op Op) IsBufferMethod() bool {
	return op >= OpMethodBufferLoad && op <= OpMethodDecrementCounter
}

// RequiresExactResource reports that the op family special-cases argument
// zero: the resource/sampler argument must match exactly and is never
// promoted during overload resolution.
func (op Op) RequiresExactResource() bool {
	return op.IsAtomicMethod() || op.IsSampleMethod() || op.IsBufferMethod()
}

// AtomicPrimitive maps an Interlocked* method tag to its primitive.
func (op Op) AtomicPrimitive() Op {
	switch op {
	case OpInterlockedAdd:
		return OpAtomicAdd
	case OpInterlockedMin:
		return OpAtomicMin
	case OpInterlockedMax:
		return OpAtomicMax
	case OpInterlockedAnd:
		return OpAtomicAnd
	case OpInterlockedOr:
		return OpAtomicOr
	case OpInterlockedXor:
		return OpAtomicXor
	case OpInterlockedExchange:
		return OpAtomicExchange
	case OpInterlockedCompareExchange, OpInterlockedCompareStore:
		return OpAtomicCompSwap
	default:
		return OpNull
	}
}

// CompoundBinary maps a compound-assignment tag to its binary primitive.
func (op Op) CompoundBinary() Op {
	switch op {
	case OpAddAssign, OpPreIncrement, OpPostIncrement:
		return OpAdd
	case OpSubAssign, OpPreDecrement, OpPostDecrement:
		return OpSub
	case OpMulAssign:
		return OpMulComponents
	case OpDivAssign:
		return OpDiv
	default:
		return OpNull
	}
}
