// Package shaderfront provides the semantic core of a shader front end:
// builtin symbol tables, overload resolution, entry-point rewriting, and
// intrinsic decomposition over a typed tree representation.
//
// The package does not contain a parser. A grammar collaborator drives a
// compilation unit: it declares symbols into the unit's table, asks the
// table to resolve calls, and hands finished function definitions to the
// unit for lowering. The output is a set of lowered functions plus the
// interface variables and call graph a code generator needs.
//
// Example usage:
//
//	unit, err := shaderfront.NewUnit(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ... parser declares globals and functions into unit.Table ...
//	for _, def := range defs {
//	    unit.LowerFunction(def)
//	}
//	result, err := unit.Finish()
package shaderfront

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/gogpu/shaderfront/diag"
	"github.com/gogpu/shaderfront/lower"
	"github.com/gogpu/shaderfront/sem"
)

// Options configures a compilation unit.
type Options struct {
	// Version and TargetVersion select the builtin declaration set.
	Version       int
	TargetVersion int

	Profile sem.Profile
	Dialect sem.Dialect
	Stage   sem.Stage

	// EntryPoint is the user function rewritten into the canonical
	// entry-point shape (default: "main").
	EntryPoint string

	// OutputVertices sizes tessellation-control output arrays.
	OutputVertices uint32

	// PatchConstantFn names the tessellation patch-constant function, run
	// by one invocation per patch after the entry point. Empty means none.
	PatchConstantFn string

	// FlattenUniformArrays expands uniform arrays into individual
	// variables in addition to structs containing opaque members.
	FlattenUniformArrays bool

	Limits lower.Limits

	// Builtins supplies the builtin declaration text and symbol hooks for
	// the shared table cache. Parse turns declaration text into table
	// entries; the grammar collaborator provides it.
	Builtins sem.Provider
	Parse    sem.ParseFunc
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Version:        450,
		TargetVersion:  450,
		Dialect:        sem.DialectHLSL,
		Stage:          sem.StageVertex,
		EntryPoint:     "main",
		OutputVertices: 1,
		Limits:         lower.DefaultLimits(),
	}
}

// LoadLimits reads resource limits from a TOML profile file. Fields absent
// from the file keep their defaults.
func LoadLimits(path string) (lower.Limits, error) {
	limits := lower.DefaultLimits()
	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("limits profile: %w", err)
	}
	if err := toml.Unmarshal(data, &limits); err != nil {
		return limits, fmt.Errorf("limits profile %s: %w", path, err)
	}
	return limits, nil
}

// Source is one named shader input handed to the grammar collaborator.
// The name seeds diagnostic locations until a line directive overrides it.
type Source struct {
	Name string
	Text string
}

// MatrixPack is the default matrix packing order, selectable per unit with
// a pack_matrix pragma.
type MatrixPack uint8

const (
	PackColumnMajor MatrixPack = iota
	PackRowMajor
)

// ExtensionBehavior is the requested handling of one extension directive.
type ExtensionBehavior uint8

const (
	ExtDisable ExtensionBehavior = iota
	ExtWarn
	ExtEnable
	ExtRequire
)

// ParseExtensionBehavior maps directive text to a behavior.
func ParseExtensionBehavior(s string) (ExtensionBehavior, bool) {
	switch s {
	case "disable":
		return ExtDisable, true
	case "warn":
		return ExtWarn, true
	case "enable":
		return ExtEnable, true
	case "require":
		return ExtRequire, true
	}
	return ExtDisable, false
}

// Unit is one compilation unit. The unit owns its symbol table and
// diagnostics; the shared builtin tiers underneath the table are read-only
// and safe to share across units.
type Unit struct {
	Options Options
	Table   *sem.Table
	Bag     *diag.Bag
	Lowerer *lower.Lowerer

	ids       sem.IDAllocator
	functions []*lower.FunctionDef
	entry     *lower.FunctionDef
	patchFn   *sem.Function

	pack       MatrixPack
	extensions map[string]ExtensionBehavior
	sourceName string
}

// NewUnit builds a compilation unit for the given options. The builtin
// tables for the option key are created on first use and cached for the
// life of the process.
func NewUnit(opts Options) (*Unit, error) {
	if opts.Builtins == nil || opts.Parse == nil {
		return nil, fmt.Errorf("builtin tables: no provider or parse collaborator configured")
	}
	u := &Unit{Options: opts, Bag: &diag.Bag{}}

	key := sem.Key{
		Version:       opts.Version,
		TargetVersion: opts.TargetVersion,
		Profile:       opts.Profile,
		Dialect:       opts.Dialect,
		Stage:         opts.Stage,
	}
	tables, err := sem.EnsureBuiltinTables(key, opts.Builtins, opts.Parse)
	if err != nil {
		return nil, fmt.Errorf("builtin tables: %w", err)
	}

	// NewTable opens the user global scope; the frozen built-in tiers
	// layer underneath it.
	u.Table = sem.NewTable(&u.ids)
	u.Table.PushFrom(tables.Stage)

	u.Lowerer = lower.New(u.Table, u.Bag, &u.ids, opts.Stage)
	u.Lowerer.Limits = opts.Limits
	u.Lowerer.EntryPointName = opts.EntryPoint
	u.Lowerer.FlattenUniformArrays = opts.FlattenUniformArrays
	return u, nil
}

// Scanner event hooks. The grammar collaborator forwards the directives
// it scans; the unit reacts to the ones the semantic core owns.

// BeginSource starts reading one input, seeding the diagnostic source
// name.
func (u *Unit) BeginSource(src Source) {
	u.sourceName = src.Name
}

// HandleVersion records a version directive. A declared version that
// differs from the unit's configured one is a warning: the builtin tables
// were already selected by the options key.
func (u *Unit) HandleVersion(loc diag.Loc, version int, profile sem.Profile) {
	if version != u.Options.Version || profile != u.Options.Profile {
		u.Bag.Warnf(loc, "source declares version %d, unit is configured for %d", version, u.Options.Version)
	}
}

// HandlePragma reacts to a pragma directive. pack_matrix selects the
// default matrix packing; unrecognized pragmas are ignored.
func (u *Unit) HandlePragma(loc diag.Loc, tokens []string) {
	if len(tokens) < 2 || tokens[0] != "pack_matrix" {
		return
	}
	switch tokens[1] {
	case "row_major":
		u.pack = PackRowMajor
	case "column_major":
		u.pack = PackColumnMajor
	default:
		u.Bag.Warnf(loc, "unknown pack_matrix order %q", tokens[1])
	}
}

// MatrixPacking returns the packing selected by the last pack_matrix
// pragma, column-major when none was seen.
func (u *Unit) MatrixPacking() MatrixPack { return u.pack }

// HandleExtension records an extension directive. Requiring an extension
// the unit does not know is an error; other behaviors are recorded as
// requested.
func (u *Unit) HandleExtension(loc diag.Loc, name, behavior string) {
	b, ok := ParseExtensionBehavior(behavior)
	if !ok {
		u.Bag.Errorf(loc, "unknown extension behavior %q for %q", behavior, name)
		return
	}
	if b == ExtRequire {
		u.Bag.Errorf(loc, "extension %q is not supported", name)
		return
	}
	if u.extensions == nil {
		u.extensions = make(map[string]ExtensionBehavior)
	}
	u.extensions[name] = b
}

// ExtensionBehaviorFor returns the recorded behavior for an extension,
// disabled when never mentioned.
func (u *Unit) ExtensionBehaviorFor(name string) ExtensionBehavior {
	return u.extensions[name]
}

// HandleLineDirective overrides the source name reported in subsequent
// diagnostics. The scanner itself renumbers lines.
func (u *Unit) HandleLineDirective(file string) {
	u.sourceName = file
}

// SourceName returns the current diagnostic source name.
func (u *Unit) SourceName() string { return u.sourceName }

// LowerFunction runs the lowering passes over one finished function
// definition. The entry point is rewritten into the canonical shape; other
// functions have their interface qualifiers cleared.
func (u *Unit) LowerFunction(def *lower.FunctionDef) {
	entry := u.Lowerer.TransformEntryPoint(def, u.Options.OutputVertices)
	if entry != nil {
		if u.entry != nil {
			u.Bag.Errorf(def.Loc, "duplicate entry point %q", u.Options.EntryPoint)
			return
		}
		u.entry = entry
	}
	u.functions = append(u.functions, def)
	if entry != nil {
		u.functions = append(u.functions, entry)
	}
	if u.Options.PatchConstantFn != "" && def.Fn.Name() == u.Options.PatchConstantFn {
		u.patchFn = def.Fn
	}
}

// Result is the lowered output of a compilation unit, the contract between
// the front end and a code generator.
type Result struct {
	// Functions holds every lowered function; the synthesized entry point
	// is last among them.
	Functions []*lower.FunctionDef

	// EntryPoint is the synthesized void entry function.
	EntryPoint *lower.FunctionDef

	// Linkage is the ordered interface variable set: stage inputs,
	// outputs, and resource bindings.
	Linkage []*sem.Variable

	// CallGraph maps caller to callee mangled names for dead-function
	// elimination.
	CallGraph map[string][]string
}

// Finish validates that an entry point was seen and returns the lowered
// unit. Accumulated diagnostics become the returned error; the Result is
// still returned alongside errors so callers can display partial output.
func (u *Unit) Finish() (*Result, error) {
	if u.entry == nil {
		u.Bag.Errorf(diag.Loc{}, "entry point %q not found", u.Options.EntryPoint)
	}
	if u.Options.PatchConstantFn != "" {
		if u.patchFn == nil {
			u.Bag.Errorf(diag.Loc{}, "patch constant function %q not found", u.Options.PatchConstantFn)
		} else if u.entry != nil {
			u.Lowerer.LowerPatchConstant(u.entry, u.patchFn)
		}
	}
	res := &Result{
		Functions:  u.functions,
		EntryPoint: u.entry,
		Linkage:    u.Lowerer.Linkage(),
		CallGraph:  u.Lowerer.CallGraph(),
	}
	if u.Bag.HasErrors() {
		return res, fmt.Errorf("lowering failed: %w", u.Bag)
	}
	return res, nil
}
