package buildex

// BranchHistory is a shift register of recent taken/not-taken outcomes,
// adapted from proto/tage/tage.go's per-context TAGEPredictor.History array:
// the same "shift a bit in, fold the register down to an index" idiom, minus
// the prediction tables around it — there's no branch predictor in this
// domain, only the Conditional log SPEC_FULL.md restores, and this is the
// piece of TAGE's machinery that log can actually use.
type BranchHistory uint64

// Record shifts outcome into the low bit of the history register.
func (h *BranchHistory) Record(taken bool) {
	*h <<= 1
	if taken {
		*h |= 1
	}
}

// FoldIndex XOR-folds the live history (masked to historyLen bits) together
// with condPC into a 10-bit bucket, the same repeated-XOR reduction
// hashIndex used for table indexing in tage.go — used here by
// Tree.HistoryBucket to cluster conditionals by recent branch pattern rather
// than to predict anything.
func (h BranchHistory) FoldIndex(condPC uint32, historyLen int) uint32 {
	pcBits := condPC & 0x3FF
	if historyLen <= 0 {
		return pcBits
	}
	mask := uint64(1)<<uint(historyLen) - 1
	bits := uint64(h) & mask
	for bits > 0x3FF {
		bits = (bits & 0x3FF) ^ (bits >> 10)
	}
	return (pcBits ^ uint32(bits)) & 0x3FF
}
