package trace

import (
	"bytes"
	"io"
	"testing"

	"github.com/appcoreopc/buildex"
)

func TestWriterReader_RoundTrip(t *testing.T) {
	want := []Record{
		{
			Operation: buildex.OpAdd,
			Dst:       buildex.Reg(2, 4),
			Srcs:      []buildex.Op{buildex.Reg(0, 4), buildex.ImmInt(1, 4)},
			PC:        0x4000,
			Line:      12,
			Disasm:    "add eax, 1",
		},
		{
			Operation: buildex.OpLoad,
			Dst:       buildex.Reg(0, 8),
			Srcs:      []buildex.Op{buildex.MemStack(-16, 8)},
			PC:        0x4004,
			Line:      13,
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range want {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	r := NewReader(&buf)
	got, err := r.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Operation != want[i].Operation || !got[i].Dst.Equal(want[i].Dst) {
			t.Fatalf("record %d mismatch: got %+v, want %+v", i, got[i], want[i])
		}
		if len(got[i].Srcs) != len(want[i].Srcs) {
			t.Fatalf("record %d src count mismatch: got %d, want %d", i, len(got[i].Srcs), len(want[i].Srcs))
		}
		for j := range want[i].Srcs {
			if !got[i].Srcs[j].Equal(want[i].Srcs[j]) {
				t.Fatalf("record %d src %d mismatch: got %v, want %v", i, j, got[i].Srcs[j], want[i].Srcs[j])
			}
		}
	}
}

func TestReader_Next_ReturnsEOFAtEnd(t *testing.T) {
	r := NewReader(bytes.NewBufferString(""))
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on an empty stream, got %v", err)
	}
}

func TestRecordInstruction_RoundTripsThroughRecordOf(t *testing.T) {
	instr := buildex.Instruction{
		Operation: buildex.OpXor,
		Dst:       buildex.Reg(4, 4),
		Srcs:      []buildex.Op{buildex.Reg(4, 4)},
		PC:        0x10,
		Line:      1,
	}
	rec := RecordOf(instr)
	back := rec.Instruction()
	if back.Operation != instr.Operation || !back.Dst.Equal(instr.Dst) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, instr)
	}
}
