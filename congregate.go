package buildex

// congregateNode is spec.md §4.5 step 7's canonicalisation pass
// ("congregate_node"), spec.md §9 directs we "treat as an external pure
// function on the tree" — conc_tree.cpp calls `dst->congregate_node(head)`
// but the method's body lives outside the file this repo is grounded on, so
// there is no line-for-line source to port. What's preserved is the
// documented intent: rebalance/merge commutative sub-expressions along the
// path to head. This implementation covers the narrow, unambiguous slice of
// that intent — canonical operand ordering for a single commutative node —
// without inventing multi-level rebalancing the corpus doesn't show.
func congregateNode(t *Tree, n *Node) {
	if !isCommutative(n.Operation) || len(n.Srcs) != 2 {
		return
	}
	a, b := n.Srcs[0], n.Srcs[1]
	if operandLess(b.Op, a.Op) {
		n.Srcs[0], n.Srcs[1] = b, a
		retargetUserSlot(a, n, 0, 1)
		retargetUserSlot(b, n, 1, 0)
	}
}

func isCommutative(op OpCode) bool {
	switch op {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor:
		return true
	default:
		return false
	}
}

// operandLess gives a stable total order over operands so a commutative
// node's two sources settle into one canonical arrangement regardless of
// the order the trace presented them in.
func operandLess(a, b Op) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if as, bs := a.start(), b.start(); as != bs {
		return as < bs
	}
	return a.Width < b.Width
}

// retargetUserSlot fixes the one (user, slot) back-edge on src that
// previously pointed at n's fromSlot, moving it to toSlot — used after
// swapping two of n's sources in place, so the fix-up is exact even when
// src appears as both of n's operands (a self-operation like x + x).
func retargetUserSlot(src, n *Node, fromSlot, toSlot int) {
	for i, ue := range src.Users {
		if ue.User == n && ue.Slot == fromSlot {
			src.Users[i].Slot = toSlot
			return
		}
	}
}
