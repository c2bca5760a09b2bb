package search

import (
	"context"
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/seekerror/logw"
	uatomic "go.uber.org/atomic"
)

// Bound represents the bound of a -- possibly inexact -- search score. A score stored with
// ExactBound is the true minimax value; LowerBound means the true value is at least the
// stored score (a fail-high, beta cutoff); UpperBound means it is at most the stored score
// (a fail-low, no move raised alpha).
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// TranspositionTable represents a transposition table to speed up search performance.
// Caveat: evaluation heuristics that depend on the game history (notably, hasCastled or
// last move) may be unsuitable for position-keyed caching. If the recent history is short,
// then the table may only be used for depth greater than some limit. Must be thread-safe.
type TranspositionTable interface {
	// Read returns the bound, depth, score and best move for the given position hash, if present.
	Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool)
	// Write stores the entry into the table, depending on table semantics and replacement policy.
	Write(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool

	// NewGeneration bumps the table's age counter, called once per search start. Entries from
	// older generations are preferred for replacement over equally-deep current ones.
	NewGeneration()

	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1].
	Used() float64
}

type TranspositionTableFactory func(ctx context.Context, size uint64) TranspositionTable

// bucketSlots is the number of slots probed per bucket. A small bucket lets the replacement
// policy pick the least valuable of a few candidates sharing a hash prefix instead of always
// evicting the one single slot a position maps to, which meaningfully improves hit rate for a
// fixed table size.
const bucketSlots = 3

// metadata captures node metadata, notably precision and best move. A move is stored using
// the compact 32-bit interchange encoding rather than separate fields.
type metadata struct {
	bound Bound
	move  uint32
	depth uint16
	age   uint16
}

// node represents a single transposition table entry.
type node struct {
	hash  board.ZobristHash
	score eval.Score
	md    metadata
}

// bucket is a fixed group of slots sharing the same table index.
type bucket [bucketSlots]*node

// table is a bucketed transposition table: bucketSlots candidate slots share an index, and
// Write replaces whichever slot looks least valuable (oldest generation, then shallowest
// depth), rather than unconditionally overwriting the one slot a hash maps to.
type table struct {
	buckets []bucket
	mask    uint64
	used    uatomic.Uint64
	age     uatomic.Uint32
}

func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	entrySize := uint64(bucketSlots) * 8 // one pointer per slot
	n := uint64(1 << (63 - bits.LeadingZeros64(size/entrySize)))
	if n == 0 {
		n = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v buckets of %v slots", size>>20, n, bucketSlots)

	return &table{
		buckets: make([]bucket, n),
		mask:    n - 1,
	}
}

func (t *table) Size() uint64 {
	return uint64(len(t.buckets)) * bucketSlots * 32
}

func (t *table) Used() float64 {
	return float64(t.used.Load()) / float64(uint64(len(t.buckets))*bucketSlots)
}

func (t *table) NewGeneration() {
	t.age.Inc()
}

func (t *table) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	b := &t.buckets[uint64(hash)&t.mask]
	for i := range b {
		addr := (*unsafe.Pointer)(unsafe.Pointer(&b[i]))
		ptr := (*node)(atomic.LoadPointer(addr))
		if ptr != nil && ptr.hash == hash {
			return ptr.md.bound, int(ptr.md.depth), ptr.score, board.DecodeMove(ptr.md.move), true
		}
	}
	return 0, 0, 0, board.Move{}, false
}

func (t *table) Write(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool {
	b := &t.buckets[uint64(hash)&t.mask]
	age := uint16(t.age.Load())

	fresh := &node{
		hash:  hash,
		score: score,
		md:    metadata{bound: bound, move: move.Encode(), depth: uint16(depth), age: age},
	}

	victim := 0
	var victimPtr *node
	worst := int(^uint(0) >> 1)
	for i := range b {
		addr := (*unsafe.Pointer)(unsafe.Pointer(&b[i]))
		ptr := (*node)(atomic.LoadPointer(addr))
		if ptr != nil && ptr.hash == hash {
			victim, victimPtr = i, ptr
			break
		}
		v := replacementValue(ptr, age)
		if v < worst {
			worst, victim, victimPtr = v, i, ptr
		}
	}

	addr := (*unsafe.Pointer)(unsafe.Pointer(&b[victim]))
	if victimPtr != nil && victimPtr.hash == hash && victimPtr.md.depth > fresh.md.depth && victimPtr.md.age == age {
		return false // keep the deeper same-generation result for this exact position
	}
	if atomic.CompareAndSwapPointer(addr, unsafe.Pointer(victimPtr), unsafe.Pointer(fresh)) {
		if victimPtr == nil {
			t.used.Inc()
		}
		return true
	}
	return false
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// replacementValue ranks a slot for eviction preference: an empty slot always loses first,
// then an older generation, then a shallower entry. Lower is more replaceable.
func replacementValue(n *node, currentAge uint16) int {
	if n == nil {
		return -int(^uint(0)>>1) - 1
	}
	ageGap := int(currentAge) - int(n.md.age)
	return int(n.md.depth) - ageGap*1000
}

// WriteFilter is a predicate on the Write operation.
type WriteFilter func(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool

// WriteLimited is a TranspositionTable wrapper that ignores certain writes, such as
// less than a given minimum depth. Useful if evaluation uses recent move history.
type WriteLimited struct {
	Filter WriteFilter
	TT     TranspositionTable
}

func (w WriteLimited) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	return w.TT.Read(hash)
}

func (w WriteLimited) Write(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool {
	if w.Filter(hash, bound, depth, score, move) {
		return false
	}
	return w.TT.Write(hash, bound, depth, score, move)
}

func (w WriteLimited) NewGeneration() {
	w.TT.NewGeneration()
}

func (w WriteLimited) Size() uint64 {
	return w.TT.Size()
}

func (w WriteLimited) Used() float64 {
	return w.TT.Used()
}

// NewMinDepthTranspositionTable creates depth-limited TranspositionTables.
func NewMinDepthTranspositionTable(min int) TranspositionTableFactory {
	return func(ctx context.Context, size uint64) TranspositionTable {
		return WriteLimited{
			Filter: func(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool {
				return depth < min
			},
			TT: NewTranspositionTable(ctx, size),
		}
	}
}

// NoTranspositionTable is a Nop implementation.
type NoTranspositionTable struct{}

func (n NoTranspositionTable) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	return 0, 0, 0, board.Move{}, false
}

func (n NoTranspositionTable) Write(hash board.ZobristHash, bound Bound, depth int, score eval.Score, move board.Move) bool {
	return false
}

func (n NoTranspositionTable) NewGeneration() {}

func (n NoTranspositionTable) Size() uint64 {
	return 0
}

func (n NoTranspositionTable) Used() float64 {
	return 0
}
