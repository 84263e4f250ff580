package buildex

import "testing"

func TestFullOverlap_StrictContainmentRequired(t *testing.T) {
	// WHAT: identical ranges never count as a full overlap
	// WHY: an exact match is a frontier hit via search(), not an overlap —
	// double-counting it would duplicate a node's own definition
	if fullOverlap(Reg(0, 4), Reg(0, 4)) {
		t.Fatal("identical ranges must not count as full overlap")
	}
}

func TestFullOverlap_ContainedRegisterDetected(t *testing.T) {
	// R{0,1} (AL) is strictly inside R{0,4} (EAX)
	if !fullOverlap(Reg(0, 1), Reg(0, 4)) {
		t.Fatal("expected R{0,1} to be fully contained in R{0,4}")
	}
}

func TestFullOverlap_TouchingOneEndpointStillCounts(t *testing.T) {
	// f touches q's start but ends strictly before q's end: still "full overlap"
	if !fullOverlap(Reg(0, 2), Reg(0, 4)) {
		t.Fatal("touching one endpoint should still count as full overlap")
	}
}

func TestFullOverlapKindMatch_MemoryCrossesStackHeap(t *testing.T) {
	if !overlapKindMatches(MemStack(0, 1), MemHeap(0, 4)) {
		t.Fatal("full-overlap kind matching must treat stack and heap as the same memory region")
	}
}

func TestPartialOverlapKindMatch_RequiresExactKind(t *testing.T) {
	tr := NewTree(DefaultConfig())
	if parts := tr.splitPartialOverlap(MemStack(0, 4), MemHeap(2, 4)); parts != nil {
		t.Fatal("partial overlap requires an exact kind match, stack vs heap must not split")
	}
}

func TestPartialOverlap_LeftStraddle(t *testing.T) {
	// WHAT: frontier entry f=[0,4) straddled by query q=[2,6): f's tail end
	// falls strictly inside q
	// WHY: this is the geometric definition spec.md §4.3 prescribes in place
	// of the source's inconsistent guard (DESIGN.md open question 1)
	tr := NewTree(DefaultConfig())
	parts := tr.splitPartialOverlap(Reg(0, 4), Reg(2, 4))
	if len(parts) != 2 {
		t.Fatalf("expected a 2-way split, got %d parts", len(parts))
	}
	if !parts[0].Op.Equal(Reg(0, 2)) {
		t.Fatalf("expected consumed part [0,2), got %v", parts[0].Op)
	}
	if !parts[1].Op.Equal(Reg(2, 2)) {
		t.Fatalf("expected unconsumed part [2,4), got %v", parts[1].Op)
	}
}

func TestPartialOverlap_RightStraddle(t *testing.T) {
	// f=[2,6) straddled by q=[0,4): f's start falls strictly inside q, f's
	// end falls strictly after q's end
	tr := NewTree(DefaultConfig())
	parts := tr.splitPartialOverlap(Reg(2, 4), Reg(0, 4))
	if len(parts) != 2 {
		t.Fatalf("expected a 2-way split, got %d parts", len(parts))
	}
	if !parts[0].Op.Equal(Reg(2, 2)) {
		t.Fatalf("expected consumed part [2,4), got %v", parts[0].Op)
	}
	if !parts[1].Op.Equal(Reg(4, 2)) {
		t.Fatalf("expected unconsumed part [4,6), got %v", parts[1].Op)
	}
}

func TestPartialOverlap_StrictContainment(t *testing.T) {
	// WHAT: f=[0,8) strictly contains q=[2,4) on both sides
	// WHY: pins SPEC_FULL.md's step-0-consumption resolution — index 0 is
	// the left fragment (consumed), index 1 is the query operand itself
	// re-entering as a node (not a freshly generated sub-range), index 2 is
	// the right fragment
	tr := NewTree(DefaultConfig())
	parts := tr.splitPartialOverlap(Reg(0, 8), Reg(2, 2))
	if len(parts) != 3 {
		t.Fatalf("expected a 3-way split, got %d parts", len(parts))
	}
	if !parts[0].Op.Equal(Reg(0, 2)) {
		t.Fatalf("expected consumed left fragment [0,2), got %v", parts[0].Op)
	}
	if !parts[1].Op.Equal(Reg(2, 2)) {
		t.Fatalf("expected the query operand itself at index 1, got %v", parts[1].Op)
	}
	if !parts[2].Op.Equal(Reg(4, 4)) {
		t.Fatalf("expected right fragment [4,8), got %v", parts[2].Op)
	}
}

func TestPartialOverlap_SplitsPartitionOriginalRangeExactly(t *testing.T) {
	// P6: parts' byte ranges partition f's range exactly, no gap or overlap
	tr := NewTree(DefaultConfig())
	f := Reg(0, 10)
	parts := tr.splitPartialOverlap(f, Reg(3, 2))
	if len(parts) != 3 {
		t.Fatalf("expected a 3-way split, got %d", len(parts))
	}
	cursor := f.start()
	for _, p := range parts {
		if p.Op.start() != cursor {
			t.Fatalf("gap or overlap at part %v, expected start %d", p.Op, cursor)
		}
		cursor = p.Op.end()
	}
	if cursor != f.end() {
		t.Fatalf("parts did not reach f's end: stopped at %d, want %d", cursor, f.end())
	}
}

func TestPartialOverlap_SharedSubRangeReusesNode(t *testing.T) {
	// WHAT: createOrGet inside splitOp means a sub-range shared by two
	// different splits collapses onto one node (spec.md §4.4)
	tr := NewTree(DefaultConfig())
	pre := tr.createOrGet(Reg(0, 2))
	tr.insertFrontier(pre)

	parts := tr.splitPartialOverlap(Reg(0, 4), Reg(2, 4))
	if parts[0] != pre {
		t.Fatalf("expected the pre-existing [0,2) node to be reused, got a distinct node")
	}
}
