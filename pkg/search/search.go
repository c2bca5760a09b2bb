// Package search contains the engine's search functionality and utilities: a bucketed
// transposition table, staged move ordering, alpha-beta search with null-move pruning, late
// move reductions and quiescence, iterative deepening with aspiration windows, and a worker
// fleet that shares the table across goroutines.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
)

// ErrHalted is returned by a Search when it is cancelled before completing.
var ErrHalted = errors.New("search halted")

// PV represents the principal variation found at some search depth.
type PV struct {
	Depth int           // depth of search, in plies
	Moves []board.Move  // principal variation, best move first
	Score eval.Score    // evaluation at depth, relative to the side to move at the root
	Nodes uint64        // interior/leaf nodes searched
	Time  time.Duration // time taken by the search
	Hash  float64       // transposition table utilization [0;1]
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v", p.Depth, p.Score, p.Nodes, p.Time, int(100*p.Hash), board.PrintMoves(p.Moves))
}

// Options hold dynamic search options. The user may change these on a particular search.
type Options struct {
	DepthLimit int    // 0 == no limit
	NodeLimit  uint64 // 0 == no limit
	Workers    int    // number of worker goroutines to search with; 0 defaults to 1
}

// Search runs a single fixed-depth search from a position and returns its node count, score
// (relative to the side to move) and principal variation.
type Search interface {
	Search(ctx context.Context, sctx *Context, pos *board.Position, depth int) (uint64, eval.Score, []board.Move, error)
}

// Context carries the per-search state that every recursive call needs: the search window,
// shared transposition table, the pawn structure cache for the evaluator and the set of
// ancestor position hashes seen so far in the game, used to detect repetition draws that a
// depth-bounded search would otherwise not see (the position only repeats outside the tree).
type Context struct {
	Alpha, Beta eval.Score
	TT          TranspositionTable
	Pawns       *eval.PawnCache
	Eval        eval.Evaluator

	// Repetitions counts occurrences of each ancestor hash, root position included. Mutated in
	// place as the search makes/unmakes moves; each worker must own a private copy. A count
	// alone only means "same 64-bit hash", so RepeatedAtLeast corroborates a >=3 hit against
	// Ancestors before calling it a real repetition.
	Repetitions map[board.ZobristHash]int

	// Ancestors is a LIFO stack in lockstep with Repetitions: one entry per position currently
	// on the path from the game root to the node being searched, pushed/popped alongside it.
	// Mirrors board.Board.identicalPositionCount's corroboration (same hash, turn and castling
	// rights), since a bare hash equality can in principle be a 64-bit collision between two
	// genuinely different positions.
	Ancestors []board.HistoryEntry

	// Ponder, if non-empty, overrides move selection at each ply with the given continuation
	// instead of the computed ordering, used to validate a pondered line cheaply.
	Ponder []board.Move
}

func (c *Context) push(pos *board.Position) {
	hash := pos.Hash()
	c.Repetitions[hash]++
	c.Ancestors = append(c.Ancestors, board.HistoryEntry{Hash: hash, Turn: pos.Turn(), Castling: pos.Castling()})
}

func (c *Context) pop(hash board.ZobristHash) {
	c.Repetitions[hash]--
	c.Ancestors = c.Ancestors[:len(c.Ancestors)-1]
}

// RepeatedAtLeast reports whether pos has occurred at least n times among the ancestors
// pushed so far (pos itself included, since it was pushed as a child before this is called).
// The map gives a cheap reject; a real hit re-walks Ancestors to corroborate the hash against
// turn and castling rights before trusting it, the same two fields
// board.Board.identicalPositionCount checks on its own hash collisions.
func (c *Context) RepeatedAtLeast(pos *board.Position, n int) bool {
	hash := pos.Hash()
	if c.Repetitions[hash] < n {
		return false
	}

	turn, castling := pos.Turn(), pos.Castling()
	count := 0
	for _, a := range c.Ancestors {
		if a.Hash == hash && a.Turn == turn && a.Castling == castling {
			count++
			if count >= n {
				return true
			}
		}
	}
	return false
}
