package sem

import (
	"strings"

	"github.com/gogpu/shaderfront/ir"
)

// Symbol is a name bound to a type: either a Variable or a Function.
type Symbol interface {
	Name() string
	ID() int
	ReadOnly() bool
	markReadOnly()
	// clone produces a writable copy with a fresh id.
	clone(id int) Symbol
	symbol()
}

// IDAllocator hands out unique symbol ids within one compilation unit.
// The zero value is ready to use.
type IDAllocator struct {
	next int
}

// Next returns a fresh unique id.
func (a *IDAllocator) Next() int {
	a.next++
	return a.next
}

// Variable is a named slot holding a value of some type. A Variable with a
// constant payload is a specialization or compile-time constant.
type Variable struct {
	name     string
	id       int
	Typ      ir.Type
	Constant []ir.ScalarValue // non-nil for compile-time constants
	readOnly bool
}

// NewVariable builds a variable symbol.
func NewVariable(id int, name string, t ir.Type) *Variable {
	return &Variable{name: name, id: id, Typ: t}
}

func (v *Variable) Name() string   { return v.name }
func (v *Variable) ID() int        { return v.id }
func (v *Variable) ReadOnly() bool { return v.readOnly }
func (*Variable) symbol()          {}

func (v *Variable) markReadOnly() {
	v.readOnly = true
	if v.Typ.Members != nil {
		v.Typ.Members.Freeze()
	}
}

// clone shares the member list; a later decoration that differs goes
// through SpecializeMember, which clones the frozen list first.
func (v *Variable) clone(id int) Symbol {
	c := *v
	c.id = id
	c.readOnly = false
	return &c
}

// SpecializeMember applies decorate to member i, cloning the member list
// first when it is shared so other holders keep the undecorated view.
func (v *Variable) SpecializeMember(i int, decorate func(*ir.Member)) {
	if v.Typ.Members == nil || i < 0 || i >= len(v.Typ.Members.Members) {
		return
	}
	if v.Typ.Members.Frozen() {
		v.Typ.Members = v.Typ.Members.CloneForSpecialize()
	}
	decorate(&v.Typ.Members.Members[i])
}

// Ref builds a symbol-reference node for the variable.
func (v *Variable) Ref() *ir.SymbolNode {
	return &ir.SymbolNode{ID: v.id, Name: v.name, Typ: v.Typ}
}

// Direction is a function parameter's passing direction.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
	DirInOut
)

// Parameter is one ordered function parameter.
type Parameter struct {
	Name      string
	Direction Direction
	Type      ir.Type
	Default   ir.Node // optional trailing default value
}

// Function is a callable symbol: ordered parameters, a return type, and
// optionally a primitive-operation tag marking a built-in intrinsic.
type Function struct {
	name     string
	id       int
	Ret      ir.Type
	Params   []Parameter
	Op       ir.Op // OpNull for user functions
	Defined  bool  // a body has been seen
	readOnly bool

	mangled string // cached mangled name
}

// NewFunction builds a function symbol.
func NewFunction(id int, name string, ret ir.Type, params ...Parameter) *Function {
	return &Function{name: name, id: id, Ret: ret, Params: params}
}

func (f *Function) Name() string   { return f.name }
func (f *Function) ID() int        { return f.id }
func (f *Function) ReadOnly() bool { return f.readOnly }
func (f *Function) markReadOnly()  { f.readOnly = true }
func (*Function) symbol()          {}

func (f *Function) clone(id int) Symbol {
	c := *f
	c.id = id
	c.readOnly = false
	c.Params = make([]Parameter, len(f.Params))
	copy(c.Params, f.Params)
	return &c
}

// Rename changes the function's name, invalidating the cached mangled
// name. The entry-point rewrite renames the user function out of the way.
func (f *Function) Rename(name string) {
	f.name = name
	f.mangled = ""
}

// IsBuiltinOp reports a built-in intrinsic rather than user code.
func (f *Function) IsBuiltinOp() bool { return f.Op != ir.OpNull }

// MangledName returns the name the function is stored and linked under:
// the plain name followed by a parenthesized per-parameter type mangling.
func (f *Function) MangledName() string {
	if f.mangled != "" {
		return f.mangled
	}
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteByte(';')
		}
		p.Type.Mangle(&b)
	}
	b.WriteByte(')')
	f.mangled = b.String()
	return f.mangled
}

// RequiredArgs returns the number of parameters without default values.
func (f *Function) RequiredArgs() int {
	n := len(f.Params)
	for n > 0 && f.Params[n-1].Default != nil {
		n--
	}
	return n
}
