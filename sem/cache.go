package sem

import (
	"fmt"
	"sync"
)

// Stage is a shader pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessControl
	StageTessEvaluation
	StageGeometry
	StageFragment
	StageCompute
	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessControl:
		return "tesscontrol"
	case StageTessEvaluation:
		return "tesseval"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// Profile is a language profile.
type Profile uint8

const (
	ProfileCore Profile = iota
	ProfileCompatibility
	ProfileES
)

// Dialect is the source language flavor.
type Dialect uint8

const (
	DialectGLSL Dialect = iota
	DialectHLSL
)

// Key identifies one built-in table configuration. Table construction is
// a pure function of the key.
type Key struct {
	Version       int // language version, e.g. 450
	TargetVersion int // target-format version
	Profile       Profile
	Dialect       Dialect
	Stage         Stage
}

// commonKey identifies a common-tier table: cross-stage built-ins have a
// fragment variant with different precision defaults.
type commonKey struct {
	Version       int
	TargetVersion int
	Profile       Profile
	Dialect       Dialect
	Fragment      bool
}

// Provider supplies built-in declaration text and the pass that tags
// parsed built-in symbols with their canonical kinds. It is the external
// collaborator of the cache; a well-formed provider never fails.
type Provider interface {
	// CommonDeclarations returns cross-stage built-in declaration text.
	CommonDeclarations(stage Stage) string
	// StageDeclarations returns per-stage built-in declaration text.
	StageDeclarations(stage Stage) string
	// IdentifyBuiltins tags the parsed symbols in the table with their
	// canonical built-in kinds.
	IdentifyBuiltins(key Key, table *Table) error
}

// ParseFunc parses built-in declaration text into a table. It is supplied
// by the caller and is the same scanner/parser pipeline that handles user
// source, run in parsing-built-ins mode.
type ParseFunc func(declarations string, table *Table) error

// BuiltinTables is one frozen cache entry: the common tier plus the
// per-stage tier that inherits it.
type BuiltinTables struct {
	Common *Table
	Stage  *Table
}

// builtinCache is the process-wide cache. Entries are installed fully
// frozen or not at all; once installed they are never mutated, so reads
// after the initial population need only the read lock.
var builtinCache = struct {
	sync.RWMutex
	common map[commonKey]*Table
	stages map[Key]*BuiltinTables
}{
	common: make(map[commonKey]*Table),
	stages: make(map[Key]*BuiltinTables),
}

// EnsureBuiltinTables returns the frozen built-in tables for key, building
// and installing them on first use. Concurrent callers for the same key
// observe exactly one installed instance. A provider or parse failure is
// fatal to the calling unit but leaves the cache entry absent, so a later
// unit retries the build.
func EnsureBuiltinTables(key Key, provider Provider, parse ParseFunc) (*BuiltinTables, error) {
	builtinCache.RLock()
	entry, ok := builtinCache.stages[key]
	builtinCache.RUnlock()
	if ok {
		return entry, nil
	}

	builtinCache.Lock()
	defer builtinCache.Unlock()
	// Another unit may have raced past the unlocked peek and installed
	// the entry before we acquired the lock.
	if entry, ok := builtinCache.stages[key]; ok {
		return entry, nil
	}

	common, err := ensureCommonLocked(key, provider, parse)
	if err != nil {
		return nil, err
	}

	var ids IDAllocator
	stage := NewTable(&ids)
	stage.PushFrom(common)
	stage.SetParsingBuiltins(true)
	if decls := provider.StageDeclarations(key.Stage); decls != "" {
		if err := parse(decls, stage); err != nil {
			return nil, fmt.Errorf("stage built-in declarations for %s: %w", key.Stage, err)
		}
	}
	stage.SetParsingBuiltins(false)
	if err := provider.IdentifyBuiltins(key, stage); err != nil {
		return nil, fmt.Errorf("identify built-ins for %s: %w", key.Stage, err)
	}
	stage.SetReadOnly()

	entry = &BuiltinTables{Common: common, Stage: stage}
	builtinCache.stages[key] = entry
	return entry, nil
}

func ensureCommonLocked(key Key, provider Provider, parse ParseFunc) (*Table, error) {
	ck := commonKey{
		Version:       key.Version,
		TargetVersion: key.TargetVersion,
		Profile:       key.Profile,
		Dialect:       key.Dialect,
		Fragment:      key.Stage == StageFragment,
	}
	if t, ok := builtinCache.common[ck]; ok {
		return t, nil
	}

	var ids IDAllocator
	t := NewTable(&ids)
	t.SetParsingBuiltins(true)
	if decls := provider.CommonDeclarations(key.Stage); decls != "" {
		if err := parse(decls, t); err != nil {
			return nil, fmt.Errorf("common built-in declarations: %w", err)
		}
	}
	t.SetParsingBuiltins(false)
	t.SetReadOnly()
	builtinCache.common[ck] = t
	return t, nil
}

// resetBuiltinCache empties the cache. Tests only.
func resetBuiltinCache() {
	builtinCache.Lock()
	builtinCache.common = make(map[commonKey]*Table)
	builtinCache.stages = make(map[Key]*BuiltinTables)
	builtinCache.Unlock()
}
