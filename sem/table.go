package sem

import "strings"

// scopeLevel is one nesting level of name bindings. Variables are stored
// under their plain name; functions under their mangled name, so
// overloads coexist in one level.
type scopeLevel struct {
	syms     map[string]Symbol
	readOnly bool
}

func newScopeLevel() *scopeLevel {
	return &scopeLevel{syms: make(map[string]Symbol, 8)}
}

// Table is a stack of scopes. Built-in levels are pushed once, marked
// read-only, and never popped; user levels come and go per block.
type Table struct {
	levels          []*scopeLevel
	ids             *IDAllocator
	parsingBuiltins bool
}

// NewTable creates a table with one open global scope.
func NewTable(ids *IDAllocator) *Table {
	return &Table{levels: []*scopeLevel{newScopeLevel()}, ids: ids}
}

// Push opens a nested scope.
func (t *Table) Push() {
	t.levels = append(t.levels, newScopeLevel())
}

// Pop closes the innermost scope, destroying its symbols. Read-only
// (built-in) levels are never popped.
func (t *Table) Pop() {
	if len(t.levels) == 0 || t.levels[len(t.levels)-1].readOnly {
		return
	}
	t.levels = t.levels[:len(t.levels)-1]
}

// Depth returns the number of open scopes.
func (t *Table) Depth() int { return len(t.levels) }

// AtGlobalLevel reports whether the innermost writable scope is the
// outermost user scope.
func (t *Table) AtGlobalLevel() bool {
	for i := len(t.levels) - 1; i >= 0; i-- {
		if !t.levels[i].readOnly {
			return i == 0 || t.levels[i-1].readOnly
		}
	}
	return false
}

func storageKey(s Symbol) string {
	if f, ok := s.(*Function); ok {
		return f.MangledName()
	}
	return s.Name()
}

// SetParsingBuiltins toggles built-in declaration mode for the table
// builder. While set, a redeclaration of an existing signature replaces
// the earlier binding instead of failing: stage declaration text
// legitimately refines signatures the common tier already declared.
func (t *Table) SetParsingBuiltins(on bool) { t.parsingBuiltins = on }

// ParsingBuiltins reports whether the table is in built-in declaration
// mode.
func (t *Table) ParsingBuiltins() bool { return t.parsingBuiltins }

// Insert binds a symbol in the current scope. It fails, without mutating
// anything, when an identical signature already exists in that scope or
// the scope is read-only.
func (t *Table) Insert(s Symbol) bool {
	level := t.levels[len(t.levels)-1]
	if level.readOnly {
		return false
	}
	key := storageKey(s)
	if _, exists := level.syms[key]; exists && !t.parsingBuiltins {
		return false
	}
	level.syms[key] = s
	return true
}

// Lookup searches scopes innermost to outermost for a plain name and
// returns nil when absent.
func (t *Table) Lookup(name string) Symbol {
	for i := len(t.levels) - 1; i >= 0; i-- {
		if s, ok := t.levels[i].syms[name]; ok {
			return s
		}
	}
	return nil
}

// LookupExact finds a function by exact mangled name, the fast path of
// call resolution.
func (t *Table) LookupExact(mangled string) *Function {
	for i := len(t.levels) - 1; i >= 0; i-- {
		if s, ok := t.levels[i].syms[mangled]; ok {
			if f, ok := s.(*Function); ok {
				return f
			}
			return nil
		}
	}
	return nil
}

// Candidates collects every function overload of the given plain name,
// innermost scopes first. An inner scope does not hide outer overloads;
// the resolver ranks the whole set.
func (t *Table) Candidates(name string) []*Function {
	var out []*Function
	prefix := name + "("
	for i := len(t.levels) - 1; i >= 0; i-- {
		for key, s := range t.levels[i].syms {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if f, ok := s.(*Function); ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// CopyUp produces a writable clone, with a fresh id, of a symbol found in
// a read-only built-in level, and inserts it into the current scope so it
// can be specialized without mutating the shared cache entry. A symbol
// that is already writable is returned unchanged.
func (t *Table) CopyUp(s Symbol) Symbol {
	if !s.ReadOnly() {
		return s
	}
	c := s.clone(t.ids.Next())
	t.levels[len(t.levels)-1].syms[storageKey(c)] = c
	return c
}

// SetReadOnly freezes every current level. Used once a built-in table tier
// is fully populated.
func (t *Table) SetReadOnly() {
	for _, level := range t.levels {
		level.readOnly = true
		for _, s := range level.syms {
			s.markReadOnly()
		}
	}
}

// PushFrom layers the levels of a frozen base table under this table's
// scopes. The base's levels are shared, not copied; they must be frozen.
func (t *Table) PushFrom(base *Table) {
	t.levels = append(base.levels[:len(base.levels):len(base.levels)], t.levels...)
}
