// Package ir defines the typed AST that the shaderfront semantic core
// produces for a downstream binary code generator.
//
// The representation is stage-aware and canonical: after lowering, every
// node carries a fully resolved Type, calls are tagged with a primitive
// operation from a fixed vocabulary, and all interstage communication
// happens through global interface variables.
//
// Node kinds form a closed union over the Node interface; rewriting passes
// switch exhaustively over them. Nodes own their children: no node is
// referenced by two parents.
package ir
