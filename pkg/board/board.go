// Package board contain chess board representation and utilities.
package board

import "fmt"

const (
	repetition3Limit   = 3
	repetition5Limit   = 5
	noprogressPlyLimit = 100
)

type node struct {
	pos *Position

	next Move // if not current
	prev *node
}

// Board represents a chess board, metadata and history of positions to correctly handle game
// results, notably various draw conditions. Each node snapshots a cloned Position rather than
// mutating one in place; the search hot path instead calls Position.MakeMove/UnmakeMove
// directly on a single position, bypassing Board's bookkeeping entirely. Not thread-safe.
type Board struct {
	repetitions map[ZobristHash]int

	turn    Color
	result  Result
	current *node
}

// NewBoard constructs a board rooted at the given position.
func NewBoard(pos *Position) *Board {
	current := &node{pos: pos}

	return &Board{
		repetitions: map[ZobristHash]int{pos.Hash(): 1},
		turn:        pos.Turn(),
		current:     current,
	}
}

// Fork branches off a new board, sharing the node history for past positions. If forked, the
// shared history should not be mutated (via PopMove) as the forward moves in node might then
// become stale.
func (b *Board) Fork() *Board {
	fork := &Board{
		repetitions: map[ZobristHash]int{},
		turn:        b.turn,
		result:      b.result,
		current: &node{
			pos:  b.current.pos,
			prev: b.current.prev,
		},
	}
	for k, v := range b.repetitions {
		fork.repetitions[k] = v
	}

	return fork
}

func (b *Board) Position() *Position {
	return b.current.pos
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) NoProgress() int {
	return b.current.pos.HalfMoveClock()
}

func (b *Board) FullMoves() int {
	return b.current.pos.FullMoveNumber()
}

func (b *Board) Result() Result {
	return b.result
}

// PushMove attempts to make a pseudo-legal move. Returns true iff legal.
func (b *Board) PushMove(m Move) bool {
	if b.result.Reason == Checkmate || b.result.Reason == Stalemate {
		return false // there are no legal moves
	} // else: ignore draws that are not always called correctly.

	mover := b.current.pos.Turn()

	next := b.current.pos.Clone()
	next.MakeMove(m)

	if next.IsAttacked(mover, next.KingSquare(mover)) {
		return false // left own king in check: illegal
	}

	// (1) Move is legal. Create new node.

	n := &node{pos: next, prev: b.current}

	b.current.next = m
	b.current = n

	// (2) Update board-level metadata.

	b.turn = next.Turn()
	b.repetitions[next.Hash()]++

	// (3) Determine if a draw condition applies.

	if b.repetitions[next.Hash()] >= repetition3Limit {
		actual := b.identicalPositionCount(b.current, repetition5Limit)
		switch {
		case actual >= repetition5Limit:
			b.result = Result{Outcome: Draw, Reason: Repetition5}
		case actual >= repetition3Limit:
			b.result = Result{Outcome: Draw, Reason: Repetition3}
		default:
			// zobrist collision: not an actual repetition
		}
	}

	if next.HalfMoveClock() >= noprogressPlyLimit {
		b.result = Result{Outcome: Draw, Reason: NoProgress}
	}

	if next.HasInsufficientMaterial() {
		b.result = Result{Outcome: Draw, Reason: InsufficientMaterial}
	}

	return true
}

func (b *Board) PopMove() (Move, bool) {
	if b.current.prev == nil {
		return Move{}, false
	}

	// (1) Update board-level metadata.

	b.repetitions[b.current.pos.Hash()]--
	b.result = Result{Outcome: Undecided} // a legal move was made, so not terminal

	// (2) Pop current node.

	b.current = b.current.prev
	b.turn = b.current.pos.Turn()
	m := b.current.next
	b.current.next = Move{}
	return m, true
}

// AdjudicateNoLegalMoves adjudicates the position assuming no legal moves exist.
// The result is then either Mate or Stalemate.
func (b *Board) AdjudicateNoLegalMoves() Result {
	result := Result{Outcome: Draw, Reason: Stalemate}
	if b.Position().IsChecked(b.Turn()) {
		result = Result{Outcome: Loss(b.Turn()), Reason: Checkmate}
	}
	b.Adjudicate(result)
	return result
}

// Adjudicate the position as given.
func (b *Board) Adjudicate(result Result) {
	b.result = result
}

func (b *Board) identicalPositionCount(n *node, limit int) int {
	ret := 1
	tmp := n.prev

	for tmp != nil && ret < limit {
		if tmp.pos.Hash() == n.pos.Hash() && tmp.pos.Turn() == n.pos.Turn() && tmp.pos.Castling() == n.pos.Castling() {
			ret++
		}
		tmp = tmp.prev
	}
	return ret
}

// HistoryEntry identifies a position reached earlier in the game well enough to corroborate a
// hash match against it without storing the full position: the same (Hash, Turn, Castling)
// triple identicalPositionCount itself checks on a repetition-candidate hash collision.
type HistoryEntry struct {
	Hash     ZobristHash
	Turn     Color
	Castling Castling
}

// History returns an entry for every position from the root of this board's history up to and
// including the current one, oldest first. Used to seed a search's repetition detection with
// the positions already reached earlier in the actual game.
func (b *Board) History() []HistoryEntry {
	var entries []HistoryEntry
	for n := b.current; n != nil; n = n.prev {
		entries = append(entries, HistoryEntry{Hash: n.pos.Hash(), Turn: n.pos.Turn(), Castling: n.pos.Castling()})
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// LastMove returns the last move, if any.
func (b *Board) LastMove() (Move, bool) {
	if b.current.prev != nil {
		return b.current.prev.next, true
	}
	return Move{}, false
}

// HasCastled returns true iff the color has castled.
func (b *Board) HasCastled(c Color) bool {
	cur := b.current.prev
	for cur != nil {
		if cur.pos.Turn() == c && (cur.next.Type == QueenSideCastle || cur.next.Type == KingSideCastle) {
			return true
		}
		cur = cur.prev
	}
	return false
}

func (b *Board) String() string {
	return fmt.Sprintf("board{pos=%v, hash=%x (%v), result=%v}", b.current.pos, b.current.pos.Hash(), b.repetitions[b.current.pos.Hash()], b.result)
}
