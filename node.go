package buildex

// UserEdge is one reverse (user, slot) back-edge: Node.Users records, for
// each node that consumes this node as a source, which user it is and which
// index in that user's Srcs slice holds the reference — so assign-collapse
// can rewrite it in place without a tree-wide search. Grounded on
// Conc_Node's parallel prev/pos vectors in conc_tree.cpp.
type UserEdge struct {
	User *Node
	Slot int
}

// Node owns one Op and the instruction metadata that last wrote it, plus its
// ordered source children and reverse-edge (user) list. Operation is
// OpUnset only while Srcs is empty (spec.md §3). Grounded on Conc_Node /
// Node in conc_tree.cpp: symbol, operation, srcs, prev, pos, pc, line,
// is_double.
type Node struct {
	Op        Op
	Operation OpCode
	Srcs      []*Node
	Users     []UserEdge

	PC         uint32
	Line       uint32
	IsFloating bool
}

func newNode(op Op) *Node {
	return &Node{Op: op, Operation: OpUnset}
}

// addSource appends src as dst's next source, recording the matching
// reverse edge on src. Grounded on conc_tree.cpp's free-function
// add_dependancy, folded into a Node method since both sides are this
// package's own type.
func (dst *Node) addSource(src *Node, op OpCode) {
	slot := len(dst.Srcs)
	dst.Srcs = append(dst.Srcs, src)
	if dst.Operation == OpUnset {
		dst.Operation = op
	}
	src.Users = append(src.Users, UserEdge{User: dst, Slot: slot})
}
