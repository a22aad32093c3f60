package lower

import (
	"github.com/gogpu/shaderfront/diag"
	"github.com/gogpu/shaderfront/ir"
	"github.com/gogpu/shaderfront/sem"
)

// Reserved names the downstream tooling matches on. These must not change.
const (
	tempStore         = "storeTemp"
	tempCoord         = "coordTemp"
	tempFlatten       = "flattenTemp"
	entryOutputName   = "@entryPointOutput"
	patchOutputName   = "@patchConstantOutput"
	patchResultName   = "@patchConstantResult"
	counterSuffix     = "@count"
	entryRenamePrefix = "@"
)

// FunctionDef is one parsed user function handed to the lowering passes.
type FunctionDef struct {
	Fn        *sem.Function
	ParamVars []*sem.Variable // declared parameter variables, in order
	Body      *ir.SequenceNode
	Loc       diag.Loc
}

// splitKey dedups interface side-variables program-wide.
type splitKey struct {
	builtin ir.Builtin
	storage ir.Storage
}

// Lowerer holds per-unit lowering state.
type Lowerer struct {
	Table  *sem.Table
	Bag    *diag.Bag
	IDs    *sem.IDAllocator
	Stage  sem.Stage
	Limits Limits

	// EntryPointName is the user-declared entry function name; only that
	// function is rewritten into the canonical entry-point shape.
	EntryPointName string

	// FlattenUniformArrays expands uniform arrays in addition to structs
	// containing opaque members.
	FlattenUniformArrays bool

	flattened   map[int]*FlattenRecord
	splitVars   map[int]*SplitRecord
	splitIO     map[splitKey]*sem.Variable
	counterBufs map[string]*sem.Variable
	streamOut   *sem.Variable

	inLocation  int32
	outLocation int32

	linkage   []*sem.Variable
	callGraph map[string][]string
	caller    string
}

// New creates a Lowerer for one compilation unit.
func New(table *sem.Table, bag *diag.Bag, ids *sem.IDAllocator, stage sem.Stage) *Lowerer {
	return &Lowerer{
		Table:          table,
		Bag:            bag,
		IDs:            ids,
		Stage:          stage,
		Limits:         DefaultLimits(),
		EntryPointName: "main",
		flattened:      make(map[int]*FlattenRecord),
		splitVars:      make(map[int]*SplitRecord),
		splitIO:        make(map[splitKey]*sem.Variable),
		counterBufs:    make(map[string]*sem.Variable),
		callGraph:      make(map[string][]string),
	}
}

// Linkage returns the ordered global interface variables that must become
// the format's declared inputs, outputs, and bindings.
func (l *Lowerer) Linkage() []*sem.Variable { return l.linkage }

// CallGraph returns caller→callee edges over mangled names, for
// dead-function elimination downstream.
func (l *Lowerer) CallGraph() map[string][]string { return l.callGraph }

// addLinkage registers an interface variable once.
func (l *Lowerer) addLinkage(v *sem.Variable) {
	for _, existing := range l.linkage {
		if existing.ID() == v.ID() {
			return
		}
	}
	l.linkage = append(l.linkage, v)
}

// BeginFunction sets the call-graph caller for the edges recorded while
// one function body is lowered. The grammar collaborator invokes it at
// the start of each definition; the entry-point rewrite switches the
// caller to the synthesized entry itself.
func (l *Lowerer) BeginFunction(mangled string) { l.caller = mangled }

// RecordCall adds a call-graph edge from the current caller.
func (l *Lowerer) RecordCall(calleeMangled string) {
	if l.caller == "" {
		return
	}
	l.callGraph[l.caller] = append(l.callGraph[l.caller], calleeMangled)
}

// newInternalVariable creates a compiler-synthesized variable. The name is
// used verbatim; callers pass the reserved prefixes.
func (l *Lowerer) newInternalVariable(name string, t ir.Type) *sem.Variable {
	return sem.NewVariable(l.IDs.Next(), name, t)
}

// newTemp creates a temporary of the given reserved prefix and type and
// returns a reference to it.
func (l *Lowerer) newTemp(name string, t ir.Type) *sem.Variable {
	tt := t
	tt.Qual = ir.DefaultQualifier()
	return l.newInternalVariable(name, tt)
}

// convert wraps n in a conversion to type to when the types differ.
// Identical types pass through untouched so decomposition preserves node
// identity where no conversion is needed.
func (l *Lowerer) convert(n ir.Node, to ir.Type) ir.Node {
	if n.Type().Identical(to) {
		return n
	}
	return &ir.UnaryNode{Op: ir.OpConvert, Operand: n, Typ: to, Loc: ir.NodeLoc(n)}
}

// binary builds a typed binary primitive node.
func (l *Lowerer) binary(op ir.Op, left, right ir.Node, t ir.Type) *ir.BinaryNode {
	return &ir.BinaryNode{Op: op, Left: left, Right: right, Typ: t, Loc: ir.NodeLoc(left)}
}

// assign builds a plain store of value into target.
func (l *Lowerer) assign(target, value ir.Node) *ir.AssignNode {
	return &ir.AssignNode{Op: ir.OpAssign, Target: target, Value: value, Typ: target.Type(), Loc: ir.NodeLoc(target)}
}

// seq builds a sequence node; its value is the last entry's value.
func (l *Lowerer) seq(loc diag.Loc, nodes ...ir.Node) *ir.SequenceNode {
	return &ir.SequenceNode{Nodes: nodes, Loc: loc}
}

// isComplexSubexpression reports whether re-emitting the node would
// duplicate work or side effects, so decomposition must hold it in a
// temporary instead of cloning it.
func isComplexSubexpression(n ir.Node) bool {
	switch n.(type) {
	case *ir.SymbolNode, *ir.ConstantNode:
		return false
	default:
		return true
	}
}

// hoist returns a node that can be referenced multiple times: simple nodes
// pass through; anything else is stored once into a temporary of the given
// reserved name, with the store prepended to pre.
func (l *Lowerer) hoist(n ir.Node, name string, pre *[]ir.Node) ir.Node {
	if !isComplexSubexpression(n) {
		return n
	}
	tmp := l.newTemp(name, n.Type())
	*pre = append(*pre, l.assign(tmp.Ref(), n))
	return tmp.Ref()
}

// counterBuffer returns the hidden counter buffer associated with a
// structured buffer, creating it on first use. Downstream tooling matches
// the "<bufferName>@count" naming exactly.
func (l *Lowerer) counterBuffer(buffer *ir.SymbolNode) *sem.Variable {
	name := buffer.Name + counterSuffix
	if v, ok := l.counterBufs[name]; ok {
		return v
	}
	t := ir.Scalar(ir.KindUint)
	t.Qual.Storage = ir.StorageBuffer
	v := l.newInternalVariable(name, t)
	l.counterBufs[name] = v
	l.addLinkage(v)
	return v
}

// streamOutput returns the unique program-wide geometry stream output
// variable for the given payload type, creating it on first use.
func (l *Lowerer) streamOutput(t ir.Type) *sem.Variable {
	if l.streamOut != nil {
		return l.streamOut
	}
	tt := t
	tt.Qual = ir.DefaultQualifier()
	tt.Qual.Storage = ir.StorageOut
	l.streamOut = l.newInternalVariable(entryOutputName, tt)
	l.addLinkage(l.streamOut)
	return l.streamOut
}
