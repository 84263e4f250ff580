package buildex

// overlapKindMatches implements spec.md §4.3's full-overlap kind rule:
// registers compare only to registers in the same hash bucket (guaranteed
// by the caller only ever scanning bucket[H(q)] for register queries), and
// any memory kind compares to any memory kind across the whole memory
// region — a stack slot can fully contain, or be contained by, a heap
// range, unlike partial overlap below which requires an exact kind match.
// Grounded on get_full_overlap_nodes in conc_tree.cpp, which never checks
// symbol->type at all once it has branched on REG_TYPE vs MEM_*_TYPE.
func overlapKindMatches(a, b Op) bool {
	if a.Kind.isRegister() || b.Kind.isRegister() {
		return a.Kind == b.Kind
	}
	return a.Kind.isMemory() && b.Kind.isMemory()
}

// fullOverlap reports whether f is strictly contained in q: f entirely
// inside q's byte range, touching at most one endpoint, and not identical
// to q (an identical match is handled by createOrGet/search, not here).
func fullOverlap(f, q Op) bool {
	return f.start() >= q.start() && f.end() <= q.end() && !(f.start() == q.start() && f.end() == q.end())
}

// fullOverlapNodes implements spec.md §4.3's full-overlap query: for a
// register q, scan only bucket[H(q)]; for a memory q, scan every
// memory-occupied bucket via iterMem. Grounded on
// Conc_Tree::get_full_overlap_nodes.
func (t *Tree) fullOverlapNodes(q Op) []*Node {
	t.sink.Event(5, t.id.String(), "checking for full overlap nodes against %s", q)
	var out []*Node
	visit := func(n *Node) bool {
		if overlapKindMatches(n.Op, q) && fullOverlap(n.Op, q) {
			t.sink.Event(5, t.id.String(), "full overlap found: %s", n.Op)
			out = append(out, n)
		}
		return true
	}
	if q.Kind.isRegister() {
		h, ok := q.hash(t.cfg)
		if ok {
			for _, n := range t.frontier.buckets[h] {
				visit(n)
			}
		}
	} else if q.Kind.isMemory() {
		t.frontier.iterMem(visit)
	}
	return out
}

// partialSplit is one (frontier-node, parts) pair returned by a partial
// overlap query. Parts[0] is always the consumed-by-rewrite region (never
// wired as a source, never frontier-inserted, per spec.md §4.5 step 1's
// parenthetical and SPEC_FULL.md's step-0-consumption resolution);
// Parts[1:] are wired and inserted by the caller.
type partialSplit struct {
	Node  *Node
	Parts []*Node
}

// splitPartialOverlap classifies f against q into spec.md §4.3's three
// sub-cases and returns the ordered parts, or nil if f/q don't partially
// overlap (exact kind match required, unlike fullOverlap). Grounded on
// Conc_Tree::split_partial_overlaps, but implements the geometric
// straddle definitions from spec.md §4.3 rather than the original's
// underflowing left-straddle guard (see SPEC_FULL.md §4.5 resolution /
// DESIGN.md open question #1).
func (t *Tree) splitPartialOverlap(f, q Op) []*Node {
	if f.Kind != q.Kind {
		return nil
	}
	fv, fw := f.start(), f.end()
	qv, qw := q.start(), q.end()

	switch {
	case fv < qv && fw > qv && fw <= qw:
		// Left-straddle: f.v < q.v, f's end strictly inside (q.v, q.v+q.w].
		left := t.splitOp(f, fv, qv-fv)
		right := t.splitOp(f, qv, fw-qv)
		return []*Node{left, right}

	case fv >= qv && fv < qw && fw > qw:
		// Right-straddle: f.v within [q.v, q.v+q.w), f's end strictly past it.
		left := t.splitOp(f, fv, qw-fv)
		right := t.splitOp(f, qw, fw-qw)
		return []*Node{left, right}

	case fv < qv && fw > qw:
		// Strictly-contains: q sits entirely inside f with room on both sides.
		left := t.splitOp(f, fv, qv-fv)
		middle := t.createOrGet(q)
		right := t.splitOp(f, qw, fw-qw)
		return []*Node{left, middle, right}

	default:
		return nil
	}
}

// splitOp builds the sub-operand Op for [start, start+width) in f's kind
// and routes it through createOrGet so a sub-range shared by two splits
// collapses to one node (spec.md §4.4).
func (t *Tree) splitOp(f Op, start, width int64) *Node {
	var sub Op
	switch f.Kind {
	case KindReg:
		sub = Reg(uint16(start), uint8(width))
	case KindMemStack:
		sub = MemStack(start, uint8(width))
	case KindMemHeap:
		sub = MemHeap(start, uint8(width))
	}
	return t.createOrGet(sub)
}

// partialOverlapNodes implements spec.md §4.3's partial-overlap query: a
// register q is split against its own bucket only; a memory q is split
// against every memory-occupied bucket. Grounded on
// Conc_Tree::get_partial_overlap_nodes.
func (t *Tree) partialOverlapNodes(q Op) []partialSplit {
	t.sink.Event(5, t.id.String(), "checking for partial overlap nodes against %s", q)
	var out []partialSplit
	scanBucket := func(h int) {
		for _, n := range t.frontier.buckets[h] {
			if parts := t.splitPartialOverlap(n.Op, q); parts != nil {
				t.sink.Event(5, t.id.String(), "partial - %s %s", n.Op, q)
				out = append(out, partialSplit{Node: n, Parts: parts})
			}
		}
	}
	if q.Kind.isRegister() {
		if h, ok := q.hash(t.cfg); ok {
			scanBucket(h)
		}
	} else if q.Kind.isMemory() {
		for _, h := range t.frontier.memBuckets {
			scanBucket(h)
		}
	}
	return out
}
