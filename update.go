package buildex

// removeIfPresent removes op from the frontier only when it is actually
// there — the ambiguous case spec.md §4.5 step 5 calls "remove d from the
// frontier" without first establishing presence. frontier.remove itself
// panics on an absent operand (spec.md §7's "removing an operand that is
// not present when one was expected" programmer error), so every call site
// that cannot prove presence goes through this helper instead.
func (t *Tree) removeIfPresent(op Op) {
	if t.frontier.search(op) != nil {
		t.frontier.remove(op)
	}
}

// UpdateBackward applies one instruction right-to-left, the destination
// observed later in the trace toward the producing sources (spec.md §4.5).
// Grounded on Conc_Tree::update_depandancy_backward in conc_tree.cpp.
func (t *Tree) UpdateBackward(instr Instruction, pc, line uint32) bool {
	d := instr.Dst

	// Preamble: head initialisation. The first instruction seen defines the
	// slice target.
	if t.head == nil {
		head := t.alloc(d)
		t.SetHead(head)
		if h, ok := d.hash(t.cfg); ok {
			t.frontier.insert(h, head)
		}
		t.sink.Event(4, t.id.String(), "head initialised at %s", d)
	}

	// Step 1: partial-overlap resolution against d. Each split's part[0] is
	// the consumed-by-rewrite region (never wired, never reinserted); parts
	// 1..N become new PARTIAL_OVERLAP sources of f and re-enter the frontier.
	for _, ps := range t.partialOverlapNodes(d) {
		f := ps.Node
		t.frontier.remove(f.Op)
		for _, p := range ps.Parts[1:] {
			f.addSource(p, OpPartialOverlap)
			t.insertFrontier(p)
		}
	}

	// Step 2: look up d again — step 1 may have produced a sub-operand equal
	// to d (the strictly-contains case's middle part, when d was straddled).
	dst := t.frontier.search(d)

	// Step 3: full-overlap resolution against d. Nodes fully contained in d
	// are subsumed by it: d becomes (or already is) their sole new source.
	if fullOverlaps := t.fullOverlapNodes(d); len(fullOverlaps) > 0 {
		if dst == nil {
			dst = t.alloc(d)
		}
		for _, f := range fullOverlaps {
			f.addSource(dst, OpFullOverlap)
			f.PC = pc
			f.Line = line
			t.frontier.remove(f.Op)
		}
	}

	// Step 4: irrelevance check.
	if dst == nil {
		t.sink.Event(4, t.id.String(), "not affecting the frontier: %s", d)
		return false
	}
	t.sink.Event(4, t.id.String(), "dst - %s : affecting the frontier", d)

	// Step 5: record metadata; d is about to receive its sources and become
	// internal, so it leaves the frontier (if it was ever inserted into it).
	dst.PC = pc
	dst.Line = line
	dst.Operation = instr.Operation
	t.sink.Event(4, t.id.String(), "operation : %s", instr.Operation)
	t.removeIfPresent(d)

	assignCollapsed := false

	// Step 6: attach sources.
	for _, srcOp := range instr.Srcs {
		var src *Node
		addNode := false

		h, hashable := srcOp.hash(t.cfg)
		if !hashable {
			src = t.alloc(srcOp)
		} else {
			src = t.frontier.search(srcOp)
		}
		// Absent, or a self-reference (i <- i + 1): needs a fresh node.
		// Unreachable once d has already left the frontier (step 5), kept
		// for the same defensive-sanity reason conc_tree.cpp keeps its own
		// redundant (src == dst) check.
		if src == nil || src == dst {
			src = t.alloc(srcOp)
			addNode = true
		}

		if len(instr.Srcs) == 1 && instr.Operation == OpAssign {
			t.sink.Event(4, t.id.String(), "optimizing assign")
			for _, ue := range dst.Users {
				src.Users = append(src.Users, ue)
				ue.User.Srcs[ue.Slot] = src
			}
			src.PC = pc
			src.Line = line
			assignCollapsed = true
			if t.head == dst {
				t.head = src
			}
			if instr.IsFloating {
				src.IsFloating = true
			}
		} else {
			dst.addSource(src, instr.Operation)
			if instr.IsFloating {
				src.IsFloating = true
			}
		}

		if addNode {
			t.sink.Event(4, t.id.String(), "new node added to the frontier: %s", srcOp)
			t.frontier.insert(h, src)
		}
		t.sink.Event(4, t.id.String(), "src - %s", srcOp)
	}
	t.sink.Event(4, t.id.String(), "completed adding sources")

	if !assignCollapsed {
		congregateNode(t, dst)
	}

	return true
}

// forwardOverlapHit reports whether op has any presence in the frontier
// relevant to forward taint propagation: an exact match, a full overlap, or
// a partial overlap. Only presence matters in forward mode — partial
// overlaps are queried, never split (spec.md §4.6).
func (t *Tree) forwardOverlapHit(op Op) bool {
	if op.Kind.isImmediate() {
		return false
	}
	if t.frontier.search(op) != nil {
		return true
	}
	if len(t.fullOverlapNodes(op)) > 0 {
		return true
	}
	return len(t.partialOverlapNodes(op)) > 0
}

// updateForwardKernel implements the shared body of UpdateForward and
// UpdateForwardWithIndirection (spec.md §9's "Forward and backward
// duplication" note): the two differ only in which operands are consulted
// per source, supplied here via ops.
func (t *Tree) updateForwardKernel(instr Instruction, ops func(src Op) []Op) bool {
	for _, srcOp := range instr.Srcs {
		for _, candidate := range ops(srcOp) {
			if t.forwardOverlapHit(candidate) {
				t.sink.Event(4, t.id.String(), "dst - %s : tainted via %s", instr.Dst, candidate)
				if t.frontier.search(instr.Dst) == nil {
					t.insertFrontier(t.alloc(instr.Dst))
				}
				return true
			}
		}
	}
	t.sink.Event(4, t.id.String(), "dst - %s : not tainted", instr.Dst)
	t.removeIfPresent(instr.Dst)
	return false
}

// UpdateForward propagates taint forward: dst is in-slice iff any source
// has a live definition in the frontier, exactly or via overlap (spec.md
// §4.6). Grounded on Conc_Tree::update_dependancy_forward.
func (t *Tree) UpdateForward(instr Instruction, pc, line uint32) bool {
	return t.updateForwardKernel(instr, func(src Op) []Op { return []Op{src} })
}

// UpdateForwardWithIndirection is UpdateForward with each source's (and the
// destination's) address components folded into the operand set, for
// tracing taint through effective-address computation. Grounded on
// Conc_Tree::update_dependancy_forward_with_indirection.
func (t *Tree) UpdateForwardWithIndirection(instr Instruction, pc, line uint32) bool {
	return t.updateForwardKernel(instr, func(src Op) []Op {
		var comps []Op
		comps = append(comps, addrComponents(src)...)
		comps = append(comps, addrComponents(instr.Dst)...)
		return append([]Op{src}, filterNullOperands(comps)...)
	})
}

// addrComponents returns op's base/index/scale/disp quadruple, or nil if op
// carries none.
func addrComponents(op Op) []Op {
	if op.AddrComponents == nil {
		return nil
	}
	return op.AddrComponents[:]
}

// filterNullOperands drops immediates and the null register (index 0, the
// architectural "no register" sentinel) from an indirection operand set,
// matching conc_tree.cpp's `srcs[j]->type == REG_TYPE && srcs[j]->value == 0`
// guard in update_dependancy_forward_with_indirection.
func filterNullOperands(ops []Op) []Op {
	out := ops[:0]
	for _, op := range ops {
		if op.Kind.isImmediate() {
			continue
		}
		if op.Kind.isRegister() && op.Index == 0 {
			continue
		}
		out = append(out, op)
	}
	return out
}
