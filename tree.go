package buildex

import (
	"fmt"
	"io"

	"github.com/appcoreopc/buildex/bxerr"
	"github.com/appcoreopc/buildex/diag"
	"github.com/google/uuid"
)

// Conditional records one conditional branch the driver observed while
// walking the trace backward toward head. Restored from conc_tree.cpp's
// `conditionals` vector (pairs of jump_info/line_cond consumed by
// print_conditionals), which spec.md §4.7 names as an accessor but whose
// record shape the distillation dropped.
type Conditional struct {
	CondPC   uint32
	LineCond uint32
	Taken    bool
}

// Tree owns every Node it creates (the arena, spec.md §5/§9) plus the
// frontier index and the slice's head. Grounded on Conc_Tree in
// conc_tree.cpp, generalized from that type's raw new/delete node lifetime
// to a Go slice-backed arena that only ever grows: assign collapse unlinks a
// node from its users and from head, but the node stays in the arena and is
// never reused (see SPEC_FULL.md §5).
type Tree struct {
	cfg  Config
	sink diag.Sink
	id   uuid.UUID

	head         *Node
	frontier     *frontier
	conditionals []Conditional
	branchHist   BranchHistory

	arena []*Node
}

// Option configures a Tree at construction time.
type Option func(*Tree)

// WithDiag installs a non-default diagnostic Sink (diag.Noop{} otherwise).
func WithDiag(sink diag.Sink) Option {
	return func(t *Tree) { t.sink = sink }
}

// NewTree constructs an empty slice session: no head, an empty frontier
// sized per cfg, and a fresh session id for diagnostic correlation
// (spec.md §5's "sharding across independent Tree instances").
func NewTree(cfg Config, opts ...Option) *Tree {
	t := &Tree{
		cfg:      cfg,
		sink:     diag.Noop{},
		id:       uuid.New(),
		frontier: newFrontier(cfg),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the session's uuid, for correlating log lines across
// concurrently sharded Trees. Never consulted by the updater itself.
func (t *Tree) ID() uuid.UUID { return t.id }

// Head returns the slice's root, or nil before the first in-slice
// instruction has been applied.
func (t *Tree) Head() *Node { return t.head }

// SetHead installs n as the slice's root.
func (t *Tree) SetHead(n *Node) { t.head = n }

// createOrGet implements spec.md §4.4: return the frontier's existing node
// for op if one exists, otherwise allocate and arena-register a fresh one.
// It does NOT insert the returned node into the frontier — callers decide
// that, since create_or_get is used both for already-frontier-resident
// lookups and for brand-new sub-operand nodes that the caller may or may
// not want memoized.
func (t *Tree) createOrGet(op Op) *Node {
	if n := t.frontier.search(op); n != nil {
		return n
	}
	return t.alloc(op)
}

// alloc allocates a node for op and registers it in the arena. It never
// touches the frontier; see createOrGet and the update_* methods for
// frontier wiring.
func (t *Tree) alloc(op Op) *Node {
	n := newNode(op)
	t.arena = append(t.arena, n)
	return n
}

// insertFrontier inserts n into the bucket for its own Op, panicking via
// bxerr.Fault on an immediate or a full bucket (spec.md §4.2).
func (t *Tree) insertFrontier(n *Node) {
	h, ok := n.Op.hash(t.cfg)
	if !ok {
		panic(bxerr.Fault("tree: cannot frontier-insert unhashable operand: " + n.Op.String()))
	}
	t.frontier.insert(h, n)
}

// AppendConditional records one conditional branch observed in the trace,
// folding its outcome into the running branch-history register (see
// BranchHistory) so HistoryBucket can cluster conditionals by recent pattern.
func (t *Tree) AppendConditional(c Conditional) {
	t.conditionals = append(t.conditionals, c)
	t.branchHist.Record(c.Taken)
}

// HistoryBucket folds the tree's live branch history together with condPC,
// for a host that wants to group conditionals by recent taken/not-taken
// pattern rather than raw PC. FormatConditionals does not use it; it lists
// conditionals in observation order.
// historyLen bounds how many recent outcomes feed the fold (max 64, the
// register's width).
func (t *Tree) HistoryBucket(condPC uint32, historyLen int) uint32 {
	return t.branchHist.FoldIndex(condPC, historyLen)
}

// Conditionals returns a read-only view of every conditional recorded so
// far, in observation order.
func (t *Tree) Conditionals() []Conditional {
	out := make([]Conditional, len(t.conditionals))
	copy(out, t.conditionals)
	return out
}

// FormatConditionals is the Go analogue of conc_tree.cpp's
// print_conditionals: the host picks the sink (stdout, a log file, a test
// buffer) instead of the original's hardcoded cout.
func (t *Tree) FormatConditionals(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "conditionals: %d\n", len(t.conditionals)); err != nil {
		return err
	}
	for _, c := range t.conditionals {
		if _, err := fmt.Fprintf(w, "%d %d %t\n", c.CondPC, c.LineCond, c.Taken); err != nil {
			return err
		}
	}
	return nil
}

// SerializeTree is declared but intentionally unimplemented (spec.md §4.7):
// the updater stays pure with respect to I/O, and tree persistence is an
// external collaborator's concern per spec.md §1.
func (t *Tree) SerializeTree() (string, error) {
	return "", bxerr.ErrUnimplemented
}

// ConstructTree is the inverse stub of SerializeTree.
func (t *Tree) ConstructTree(string) error {
	return bxerr.ErrUnimplemented
}
