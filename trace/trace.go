// Package trace is the JSON-lines instruction ingestion format named in
// SPEC_FULL.md's Instruction ingestion component: a newline-delimited
// encoding of one buildex.Instruction per line, decoded with the standard
// library's streaming json.Decoder the way
// other_examples/d126955e_kortschak-ins and
// other_examples/664f6c00_AlessandroGrassi99-gb-emulator's generator both
// do for their own line/file-oriented JSON records. Trace decoding proper
// (turning raw machine bytes into an Instruction) stays an external
// collaborator per spec.md §1; this package only carries the wire shape a
// decoder would emit and a reader/writer pair over it.
package trace

import (
	"encoding/json"
	"io"

	"github.com/appcoreopc/buildex"
)

// Record is the wire shape of one instruction: buildex.Instruction's fields
// flattened into JSON-friendly types (buildex.Op already marshals cleanly
// since every field is a plain scalar or a pointer to a fixed-size array).
type Record struct {
	Operation  buildex.OpCode `json:"operation"`
	Dst        buildex.Op     `json:"dst"`
	Srcs       []buildex.Op   `json:"srcs"`
	PC         uint32         `json:"pc"`
	Line       uint32         `json:"line"`
	Disasm     string         `json:"disasm,omitempty"`
	IsFloating bool           `json:"is_floating,omitempty"`
}

// Instruction converts r to a buildex.Instruction, copying every field,
// including PC and Line (which the Tree.Update* methods also take as
// separate arguments).
func (r Record) Instruction() buildex.Instruction {
	return buildex.Instruction{
		Operation:  r.Operation,
		Dst:        r.Dst,
		Srcs:       r.Srcs,
		PC:         r.PC,
		Line:       r.Line,
		Disasm:     r.Disasm,
		IsFloating: r.IsFloating,
	}
}

// RecordOf is the inverse of Instruction, for Writer round-tripping.
func RecordOf(instr buildex.Instruction) Record {
	return Record{
		Operation:  instr.Operation,
		Dst:        instr.Dst,
		Srcs:       instr.Srcs,
		PC:         instr.PC,
		Line:       instr.Line,
		Disasm:     instr.Disasm,
		IsFloating: instr.IsFloating,
	}
}

// Reader decodes a stream of newline-delimited JSON Records.
type Reader struct {
	dec *json.Decoder
}

// NewReader wraps r for record-at-a-time decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Next decodes the next Record, returning io.EOF once the stream is
// exhausted (json.Decoder.Decode's own sentinel, passed through unwrapped).
func (rd *Reader) Next() (Record, error) {
	var rec Record
	if err := rd.dec.Decode(&rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// All drains the reader into a slice, for small fixture traces (tests, the
// CLI's non-streaming replay mode) where holding the whole trace in memory
// is acceptable.
func (rd *Reader) All() ([]Record, error) {
	var out []Record
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// Writer emits one JSON object per line, the inverse of Reader — used by
// the CLI's --emit flag to capture a replay session as a reusable fixture.
type Writer struct {
	enc *json.Encoder
}

// NewWriter wraps w for record-at-a-time encoding. json.Encoder already
// appends a trailing newline after each Encode call, which is exactly the
// newline-delimited framing Reader expects.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write encodes one record.
func (wr *Writer) Write(rec Record) error {
	return wr.enc.Encode(rec)
}
