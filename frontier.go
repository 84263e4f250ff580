package buildex

import (
	"strconv"

	"github.com/appcoreopc/buildex/bxerr"
)

// Config carries the three tunables spec.md §6 names:
// MaxFrontiers/SizePerFrontier/MemOffset. The ratios matter more than the
// absolute values (spec.md §6); DefaultConfig reproduces the spec's own
// tuned numbers.
type Config struct {
	MaxFrontiers    int
	SizePerFrontier int
	MemOffset       int
}

// DefaultConfig returns the spec.md §4.1 defaults: 1000 buckets, 100 slots
// per bucket, memory region starting at bucket 200.
func DefaultConfig() Config {
	return Config{MaxFrontiers: 1000, SizePerFrontier: 100, MemOffset: 200}
}

// frontier is the fixed-capacity bucket index of spec.md §3/§4.2. Ported
// from Conc_Tree's frontier/mem_in_frontier arrays in conc_tree.cpp: a flat
// array of buckets keyed by generate_hash, plus an ordered side-list of
// bucket indices that currently hold at least one memory-typed node
// (invariant F2), so iter_mem never has to scan the register region.
//
// The bucket-array-over-generic-map shape additionally follows
// thebagchi-arena-go's arena-backed Map
// (_examples/other_examples/7470b9e5_thebagchi-arena-go__map.go.go): own
// the storage, keep lookups to a bounded linear scan over a small slice
// instead of routing every operand through Go's built-in map.
type frontier struct {
	cfg        Config
	buckets    [][]*Node
	memBuckets []int // insertion-ordered, deduplicated — mirrors mem_in_frontier's vector<uint>
}

func newFrontier(cfg Config) *frontier {
	return &frontier{
		cfg:     cfg,
		buckets: make([][]*Node, cfg.MaxFrontiers),
	}
}

// search performs the O(bucket size) linear scan of spec.md §4.2 for an
// exact (value, width) match. Returns nil if op is an immediate or absent.
func (f *frontier) search(op Op) *Node {
	h, ok := op.hash(f.cfg)
	if !ok {
		return nil
	}
	for _, n := range f.buckets[h] {
		if n.Op.Equal(op) {
			return n
		}
	}
	return nil
}

// insert appends node to bucket h, maintaining F1 (no immediates) and F2
// (the mem-bucket index).
func (f *frontier) insert(h int, node *Node) {
	if node.Op.Kind.isImmediate() {
		panic(bxerr.Fault("frontier: immediate operand cannot be inserted: " + node.Op.String()))
	}
	if len(f.buckets[h]) >= f.cfg.SizePerFrontier {
		panic(bxerr.Fault("frontier: bucket capacity exceeded at hash " + strconv.Itoa(h)))
	}
	f.buckets[h] = append(f.buckets[h], node)

	if node.Op.Kind.isMemory() {
		for _, existing := range f.memBuckets {
			if existing == h {
				return
			}
		}
		f.memBuckets = append(f.memBuckets, h)
	}
}

// remove locates the matching entry in buckets[H(op)] and erases it,
// preserving bucket order (spec.md §4.2). Removing an absent operand is a
// programmer error per spec.md §7.
func (f *frontier) remove(op Op) {
	if op.Kind.isImmediate() {
		panic(bxerr.Fault("frontier: immediate operand cannot be removed: " + op.String()))
	}
	h, _ := op.hash(f.cfg)
	bucket := f.buckets[h]
	idx := -1
	for i, n := range bucket {
		if n.Op.Equal(op) {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(bxerr.Fault("frontier: remove of absent operand: " + op.String()))
	}
	f.buckets[h] = append(bucket[:idx], bucket[idx+1:]...)

	if len(f.buckets[h]) == 0 && op.Kind.isMemory() {
		for i, existing := range f.memBuckets {
			if existing == h {
				f.memBuckets = append(f.memBuckets[:i], f.memBuckets[i+1:]...)
				break
			}
		}
	}
}

// iterMem yields every node whose bucket is presently memory-occupied, in
// mem-bucket insertion order and then bucket order — this ordering is part
// of the observable contract (spec.md §5): it determines the order
// overlapping memory candidates are discovered in, which in turn determines
// sibling order in a user's source list.
func (f *frontier) iterMem(yield func(*Node) bool) {
	for _, h := range f.memBuckets {
		for _, n := range f.buckets[h] {
			if !yield(n) {
				return
			}
		}
	}
}

