package buildex

import "math/bits"

// MaxHazardBatch bounds how many instructions BuildHazardMatrix considers at
// once — the same bounded-window idiom proto/ooo/ooo.go used for its
// 32-entry instruction window, carried over here as the batch size a host
// can safely check before deciding whether a chunk of trace records is safe
// to apply out of program order (concurrently, or via UpdateForward on
// multiple Trees sharded by operand, per spec.md §5).
const MaxHazardBatch = 32

// HazardMatrix is a bitmap dependency matrix over a batch of instructions:
// row i's bit j is set when instruction j reads an operand instruction i
// writes. Adapted from ooo.go's DependencyMatrix/BuildDependencyMatrix — the
// same O(1)-bitmap dependency-tracking idiom, generalized from fixed 6-bit
// register-index equality to this package's Op.Equal/overlap comparisons so
// it covers register and memory operands of arbitrary width, not just a
// 64-register file.
type HazardMatrix [MaxHazardBatch]uint32

// BuildHazardMatrix computes the RAW hazards within batch: for every pair
// (i, j) with i before j in the batch, bit j of row i is set iff
// instruction j reads (exactly, or via full/partial overlap) an operand
// instruction i's Dst writes. Instructions past MaxHazardBatch are ignored —
// callers chunk a longer trace into MaxHazardBatch-sized windows.
func BuildHazardMatrix(batch []Instruction) HazardMatrix {
	var m HazardMatrix
	n := len(batch)
	if n > MaxHazardBatch {
		n = MaxHazardBatch
	}
	for i := 0; i < n; i++ {
		var row uint32
		for j := i + 1; j < n; j++ {
			if instructionReads(batch[j], batch[i].Dst) {
				row |= 1 << uint(j)
			}
		}
		m[i] = row
	}
	return m
}

// instructionReads reports whether instr consumes dst, exactly or through a
// full/partial byte-range overlap — the same overlap vocabulary the updater
// itself uses (overlap.go), so a hazard reported here is one UpdateBackward/
// UpdateForward would also see as a dependency.
func instructionReads(instr Instruction, dst Op) bool {
	for _, src := range instr.Srcs {
		if !overlapKindMatches(src, dst) {
			continue
		}
		if src.Equal(dst) || fullOverlap(src, dst) || fullOverlap(dst, src) {
			return true
		}
		// Partial overlap: the ranges intersect without either containing the
		// other; like splitPartialOverlap, this needs an exact kind match.
		if src.Kind == dst.Kind && src.start() < dst.end() && dst.start() < src.end() {
			return true
		}
	}
	return false
}

// HasHazards reports whether any instruction in the batch the matrix was
// built from depends on an earlier one.
func (m HazardMatrix) HasHazards() bool {
	for _, row := range m {
		if row != 0 {
			return true
		}
	}
	return false
}

// Dependents returns the indices, in batch order, of instructions that read
// the operand instruction i writes.
func (m HazardMatrix) Dependents(i int) []int {
	var out []int
	row := m[i]
	for row != 0 {
		j := bits.TrailingZeros32(row)
		out = append(out, j)
		row &^= 1 << uint(j)
	}
	return out
}
