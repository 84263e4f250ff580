package buildex

import (
	"bytes"
	"errors"
	"testing"

	"github.com/appcoreopc/buildex/bxerr"
)

func TestTree_HeadNilUntilFirstInstruction(t *testing.T) {
	tr := NewTree(DefaultConfig())
	if tr.Head() != nil {
		t.Fatal("expected a fresh tree to have no head")
	}
}

func TestTree_ConditionalsRoundTrip(t *testing.T) {
	tr := NewTree(DefaultConfig())
	tr.AppendConditional(Conditional{CondPC: 0x100, LineCond: 7, Taken: true})
	tr.AppendConditional(Conditional{CondPC: 0x110, LineCond: 8, Taken: false})

	got := tr.Conditionals()
	if len(got) != 2 {
		t.Fatalf("expected 2 conditionals, got %d", len(got))
	}
	if got[0].CondPC != 0x100 || got[1].Taken {
		t.Fatalf("unexpected conditionals content: %+v", got)
	}

	var buf bytes.Buffer
	if err := tr.FormatConditionals(&buf); err != nil {
		t.Fatalf("FormatConditionals failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected FormatConditionals to write something")
	}
}

func TestTree_SerializeTreeUnimplemented(t *testing.T) {
	tr := NewTree(DefaultConfig())
	_, err := tr.SerializeTree()
	if !errors.Is(err, bxerr.ErrUnimplemented) {
		t.Fatalf("expected ErrUnimplemented, got %v", err)
	}
	if err := tr.ConstructTree(""); !errors.Is(err, bxerr.ErrUnimplemented) {
		t.Fatalf("expected ErrUnimplemented, got %v", err)
	}
}

func TestTree_IDIsStableAcrossCalls(t *testing.T) {
	tr := NewTree(DefaultConfig())
	a, b := tr.ID(), tr.ID()
	if a != b {
		t.Fatalf("expected a Tree's id to be stable, got %v and %v", a, b)
	}
}

func TestTree_EachInstanceGetsADistinctID(t *testing.T) {
	a := NewTree(DefaultConfig())
	b := NewTree(DefaultConfig())
	if a.ID() == b.ID() {
		t.Fatal("expected independent Tree instances to receive distinct session ids")
	}
}

func TestTree_HistoryBucketFoldsRecordedOutcomes(t *testing.T) {
	tr := NewTree(DefaultConfig())
	a := tr.HistoryBucket(0x100, 8)

	tr.AppendConditional(Conditional{CondPC: 0x100, LineCond: 1, Taken: true})
	b := tr.HistoryBucket(0x100, 8)
	if a == b {
		t.Fatal("expected the folded bucket to change once an outcome is recorded")
	}

	tr2 := NewTree(DefaultConfig())
	tr2.AppendConditional(Conditional{CondPC: 0x100, LineCond: 1, Taken: true})
	if got := tr2.HistoryBucket(0x100, 8); got != b {
		t.Fatalf("expected identical outcome sequences to fold to the same bucket, got %d vs %d", got, b)
	}
}

func TestBranchHistory_ZeroHistoryLenReturnsBarePC(t *testing.T) {
	var h BranchHistory
	h.Record(true)
	h.Record(false)
	if got := h.FoldIndex(0x7FF, 0); got != 0x7FF&0x3FF {
		t.Fatalf("expected historyLen=0 to return the bare masked PC, got %d", got)
	}
}
