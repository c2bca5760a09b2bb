package board

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

// MaxMoves bounds the number of pseudo-legal moves possible in any reachable chess
// position (the true maximum is 218); 256 leaves headroom without another bounds check.
const MaxMoves = 256

// List is a fixed-capacity move buffer filled by the move generator. Unlike a slice
// built with append, its backing array is allocated once per search ply and reused
// across make/unmake instead of growing the GC's workload.
type List struct {
	moves [MaxMoves]Move
	n     int
}

// Add appends a move to the list.
func (l *List) Add(m Move) {
	l.moves[l.n] = m
	l.n++
}

// Len returns the number of moves currently in the list.
func (l *List) Len() int {
	return l.n
}

// At returns the i'th move.
func (l *List) At(i int) Move {
	return l.moves[i]
}

// Slice returns the populated portion of the list. The slice aliases the list's backing
// array and is only valid until the list is reused.
func (l *List) Slice() []Move {
	return l.moves[:l.n]
}

// Reset empties the list for reuse.
func (l *List) Reset() {
	l.n = 0
}

// MovePriority represents the move order priority.
type MovePriority int32

// MovePriorityFn assigns a priority to moves.
type MovePriorityFn func(move Move) MovePriority

// MovePredicateFn selects a subset of moves, such as captures only.
type MovePredicateFn func(move Move) bool

// First puts the given move first. Otherwise uses the given function.
func First(first Move, fn MovePriorityFn) MovePriorityFn {
	return func(m Move) MovePriority {
		if first.Equals(m) {
			return 1 << 30
		}
		return fn(m)
	}
}

// SortByPriority sorts the moves by priority, preserving order for same priority.
func SortByPriority(moves []Move, fn MovePriorityFn) {
	sort.SliceStable(moves, func(i, j int) bool {
		return fn(moves[i]) > fn(moves[j])
	})
}

// MoveList is a move priority queue for move ordering.
type MoveList struct {
	h moveHeap
}

// NewMoveList returns a new move list with the given priorities.
func NewMoveList(moves []Move, fn MovePriorityFn) *MoveList {
	h := moveHeap(make([]elm, len(moves)))
	for i, m := range moves {
		h[i] = elm{m: m, val: fn(m)}
	}
	heap.Init(&h)
	return &MoveList{h: h}
}

// Next returns the next move. It is the highest priority move in the list.
func (ml *MoveList) Next() (Move, bool) {
	if ml.Size() == 0 {
		return Move{}, false
	}
	ret := heap.Pop(&ml.h).(elm)
	return ret.m, true
}

func (ml *MoveList) Size() int {
	return ml.h.Len()
}

func (ml *MoveList) String() string {
	if ml.Size() == 0 {
		return "[size=0]"
	}
	return fmt.Sprintf("[top=%v, size=%v]", ml.h[0].m, ml.Size())
}

type elm struct {
	m   Move
	val MovePriority
}

type moveHeap []elm

func (h moveHeap) Len() int {
	return len(h)
}

func (h moveHeap) Less(i, j int) bool {
	return h[i].val > h[j].val
}

func (h moveHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *moveHeap) Push(x interface{}) {
	panic("fixed size heap")
}

func (h *moveHeap) Pop() interface{} {
	n := len(*h)
	ret := (*h)[n-1]
	*h = (*h)[0 : n-1]
	return ret
}

// PrintMoves renders a move list as a space-joined string of long algebraic moves.
func PrintMoves(ms []Move) string {
	var list []string
	for _, m := range ms {
		list = append(list, m.String())
	}
	return strings.Join(list, " ")
}
