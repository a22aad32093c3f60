// Package lower rewrites resolved shader ASTs into the canonical form the
// code generator consumes: aggregate interface variables are flattened or
// split into global interface variables, the user entry point is wrapped
// in a synthesized void entry point, high-level library methods are
// decomposed into primitive operations, and non-addressable assignment
// targets are rewritten into explicit load/modify/store sequences.
//
// A Lowerer holds the per-unit state of these passes and is owned by one
// compiling goroutine.
package lower
