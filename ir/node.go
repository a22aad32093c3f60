package ir

import "github.com/gogpu/shaderfront/diag"

// Node is a typed AST node. The union is closed: rewriting passes switch
// exhaustively over the concrete kinds below.
type Node interface {
	// Type returns the node's fully resolved static type.
	Type() Type
	node()
}

// SymbolNode references a declared symbol by unique id.
type SymbolNode struct {
	ID   int
	Name string
	Typ  Type
	Loc  diag.Loc
}

func (n *SymbolNode) Type() Type { return n.Typ }
func (*SymbolNode) node()        {}

// ConstantNode carries an immutable literal payload, one scalar value per
// component in shape order.
type ConstantNode struct {
	Typ    Type
	Values []ScalarValue
	Loc    diag.Loc
}

func (n *ConstantNode) Type() Type { return n.Typ }
func (*ConstantNode) node()        {}

// CallNode is a resolved call: a callee (mangled name, empty for pure
// primitive operations), ordered arguments, and an operation tag.
type CallNode struct {
	Op     Op
	Callee string
	Args   []Node
	Typ    Type
	Loc    diag.Loc
}

func (n *CallNode) Type() Type { return n.Typ }
func (*CallNode) node()        {}

// AssignNode assigns Value to Target. Compound operations carry their
// operation tag; OpAssign is a plain store.
type AssignNode struct {
	Op     Op
	Target Node
	Value  Node
	Typ    Type
	Loc    diag.Loc
}

func (n *AssignNode) Type() Type { return n.Typ }
func (*AssignNode) node()        {}

// BinaryNode applies a binary primitive.
type BinaryNode struct {
	Op    Op
	Left  Node
	Right Node
	Typ   Type
	Loc   diag.Loc
}

func (n *BinaryNode) Type() Type { return n.Typ }
func (*BinaryNode) node()        {}

// UnaryNode applies a unary primitive, including conversions (OpConvert).
type UnaryNode struct {
	Op      Op
	Operand Node
	Typ     Type
	Loc     diag.Loc
}

func (n *UnaryNode) Type() Type { return n.Typ }
func (*UnaryNode) node()        {}

// IndexNode accesses Base at a computed Index.
type IndexNode struct {
	Base  Node
	Index Node
	Typ   Type
	Loc   diag.Loc
}

func (n *IndexNode) Type() Type { return n.Typ }
func (*IndexNode) node()        {}

// MemberNode accesses struct member Member of Base by position.
type MemberNode struct {
	Base   Node
	Member int
	Typ    Type
	Loc    diag.Loc
}

func (n *MemberNode) Type() Type { return n.Typ }
func (*MemberNode) node()        {}

// SwizzleNode selects components of a vector. A swizzle covering fewer
// components than its base is a partial view; assignments through it are
// partial writes.
type SwizzleNode struct {
	Base       Node
	Components []uint8
	Typ        Type
	Loc        diag.Loc
}

func (n *SwizzleNode) Type() Type { return n.Typ }
func (*SwizzleNode) node()        {}

// SequenceNode evaluates its entries in order for side effects and yields
// the last entry's value.
type SequenceNode struct {
	Nodes []Node
	Loc   diag.Loc
}

func (n *SequenceNode) Type() Type {
	if len(n.Nodes) == 0 {
		return Void()
	}
	return n.Nodes[len(n.Nodes)-1].Type()
}
func (*SequenceNode) node() {}

// BranchNode is a selection: when Cond holds, Then executes, otherwise
// Else (which may be nil). Statement-position branches have void type.
type BranchNode struct {
	Cond Node
	Then Node
	Else Node
	Typ  Type
	Loc  diag.Loc
}

func (n *BranchNode) Type() Type { return n.Typ }
func (*BranchNode) node()        {}

// Clone deep-copies a node tree. Every node owns its children, so a
// subtree that must appear at two places (a stored default argument used
// by several call sites) is cloned rather than shared.
func Clone(n Node) Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *SymbolNode:
		c := *n
		return &c
	case *ConstantNode:
		c := *n
		return &c
	case *CallNode:
		c := *n
		c.Args = make([]Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = Clone(a)
		}
		return &c
	case *AssignNode:
		c := *n
		c.Target = Clone(n.Target)
		c.Value = Clone(n.Value)
		return &c
	case *BinaryNode:
		c := *n
		c.Left = Clone(n.Left)
		c.Right = Clone(n.Right)
		return &c
	case *UnaryNode:
		c := *n
		c.Operand = Clone(n.Operand)
		return &c
	case *IndexNode:
		c := *n
		c.Base = Clone(n.Base)
		c.Index = Clone(n.Index)
		return &c
	case *MemberNode:
		c := *n
		c.Base = Clone(n.Base)
		return &c
	case *SwizzleNode:
		c := *n
		c.Components = append([]uint8(nil), n.Components...)
		c.Base = Clone(n.Base)
		return &c
	case *SequenceNode:
		c := *n
		c.Nodes = make([]Node, len(n.Nodes))
		for i, e := range n.Nodes {
			c.Nodes[i] = Clone(e)
		}
		return &c
	case *BranchNode:
		c := *n
		c.Cond = Clone(n.Cond)
		c.Then = Clone(n.Then)
		c.Else = Clone(n.Else)
		return &c
	}
	return n
}

// NodeLoc returns the source location a node carries.
func NodeLoc(n Node) diag.Loc {
	switch n := n.(type) {
	case *SymbolNode:
		return n.Loc
	case *ConstantNode:
		return n.Loc
	case *CallNode:
		return n.Loc
	case *AssignNode:
		return n.Loc
	case *BinaryNode:
		return n.Loc
	case *UnaryNode:
		return n.Loc
	case *IndexNode:
		return n.Loc
	case *MemberNode:
		return n.Loc
	case *SwizzleNode:
		return n.Loc
	case *SequenceNode:
		return n.Loc
	case *BranchNode:
		return n.Loc
	default:
		return diag.Loc{}
	}
}
