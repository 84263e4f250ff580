package buildex

import "fmt"

// Kind tags the variant of an Op. Grounded on operand_t's type field in
// conc_tree.cpp (REG_TYPE / MEM_STACK_TYPE / MEM_HEAP_TYPE / IMM_INT_TYPE /
// IMM_FLOAT_TYPE) and spec.md §3's Op union.
type Kind uint8

const (
	KindReg Kind = iota
	KindMemStack
	KindMemHeap
	KindImmInt
	KindImmFloat
)

func (k Kind) String() string {
	switch k {
	case KindReg:
		return "reg"
	case KindMemStack:
		return "mem_stack"
	case KindMemHeap:
		return "mem_heap"
	case KindImmInt:
		return "imm_int"
	case KindImmFloat:
		return "imm_float"
	default:
		return "kind?"
	}
}

func (k Kind) isRegister() bool { return k == KindReg }

func (k Kind) isMemory() bool { return k == KindMemStack || k == KindMemHeap }

func (k Kind) isImmediate() bool { return k == KindImmInt || k == KindImmFloat }

// regGranularity is the number of flat address-space bytes a single physical
// register slot spans. Register hashing (see hash below) divides by this so
// that aliasing sub-registers of the same physical register — AL/AX/EAX and
// so on — collide into a single frontier bucket. spec.md §4.1 states
// "Registers: H = index" without this division, but scenario 4 of §8 (a
// straddle between a frontier register and a differently-indexed query
// register, annotated "same hash") only holds if register identity is
// coarser than the raw index; conc_tree.cpp's generate_hash divides by
// MAX_SIZE_OF_REG for exactly this reason. See DESIGN.md open question #3.
const regGranularity = 8

// Op is a small value type describing one operand reference: a register
// slice, a linear memory byte range, or an immediate. Copying an Op copies
// its scalar fields; AddrComponents (when present) is a pointer to a
// separately-owned 4-element array, matching spec.md §9's steer away from
// shared operand ownership for the common case while still allowing
// indirection analysis to see a memory operand's base/index/scale/disp.
type Op struct {
	Kind  Kind
	Width uint8

	// Index is the register identifier for KindReg, expressed in the same
	// flat byte-address space generate_hash divides down from (see
	// regGranularity); unused otherwise.
	Index uint16

	// Value carries the byte offset (KindMemStack), linear address
	// (KindMemHeap), or literal (KindImmInt); unused for KindReg/KindImmFloat.
	Value int64

	// Bits carries an IEEE-754 bit pattern for KindImmFloat.
	Bits uint64

	// AddrComponents is the optional base/index/scale/disp quadruple for a
	// memory operand, consulted only by UpdateForwardWithIndirection.
	AddrComponents *[4]Op
}

// Reg constructs a register operand.
func Reg(index uint16, width uint8) Op { return Op{Kind: KindReg, Index: index, Width: width} }

// MemStack constructs a stack-memory operand.
func MemStack(offset int64, width uint8) Op {
	return Op{Kind: KindMemStack, Value: offset, Width: width}
}

// MemHeap constructs a heap-memory operand.
func MemHeap(addr int64, width uint8) Op {
	return Op{Kind: KindMemHeap, Value: addr, Width: width}
}

// ImmInt constructs an integer immediate.
func ImmInt(value int64, width uint8) Op {
	return Op{Kind: KindImmInt, Value: value, Width: width}
}

// ImmFloat constructs a float immediate from its raw bit pattern.
func ImmFloat(bits uint64, width uint8) Op {
	return Op{Kind: KindImmFloat, Bits: bits, Width: width}
}

// start returns the byte-range start used by the overlap engine: the
// register index, the memory value, or the immediate value. Immediates are
// never frontier-resident or overlap-queried, but the field is still
// well-defined so tests can construct ranges uniformly.
func (o Op) start() int64 {
	if o.Kind == KindReg {
		return int64(o.Index)
	}
	return o.Value
}

func (o Op) end() int64 { return o.start() + int64(o.Width) }

// Equal implements invariant O1: two Ops are the same frontier instance iff
// (kind, value, width) match exactly.
func (o Op) Equal(other Op) bool {
	if o.Kind != other.Kind || o.Width != other.Width {
		return false
	}
	if o.Kind == KindImmFloat {
		return o.Bits == other.Bits
	}
	return o.start() == other.start()
}

// hash implements spec.md §4.1. ok is false for immediates, which are never
// memoizable (F1).
func (o Op) hash(cfg Config) (h int, ok bool) {
	switch o.Kind {
	case KindReg:
		return int(o.Index) / regGranularity, true
	case KindMemStack, KindMemHeap:
		memRegion := cfg.MaxFrontiers - cfg.MemOffset
		offset := o.Value % int64(memRegion)
		if offset < 0 {
			offset += int64(memRegion)
		}
		return cfg.MemOffset + int(offset), true
	default:
		return 0, false
	}
}

func (o Op) String() string {
	switch o.Kind {
	case KindReg:
		return fmt.Sprintf("R{%d,%d}", o.Index, o.Width)
	case KindMemStack:
		return fmt.Sprintf("MS{%d,%d}", o.Value, o.Width)
	case KindMemHeap:
		return fmt.Sprintf("MH{%d,%d}", o.Value, o.Width)
	case KindImmInt:
		return fmt.Sprintf("Imm{%d,%d}", o.Value, o.Width)
	case KindImmFloat:
		return fmt.Sprintf("ImmF{0x%x,%d}", o.Bits, o.Width)
	default:
		return "Op?"
	}
}
