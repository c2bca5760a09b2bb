package search

import (
	"context"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"golang.org/x/exp/slices"
)

// maxSearchPly bounds the killer-move table; a search this deep would already have been
// halted by the time control long before reaching it.
const maxSearchPly = 128

// AlphaBeta implements iterative-deepening-ready negamax with alpha-beta pruning, a
// transposition table, null-move pruning, late move reductions and a principal-variation
// re-search on a promising null-window probe. Pseudo-code for the unpruned core:
//
// function negamax(node, depth, α, β, color) is
//
//	if depth = 0 or node is a terminal node then
//	    return color × the heuristic value of node
//	value := −∞
//	for each child of node do
//	    value := max(value, −negamax(child, depth − 1, −β, −α, −color))
//	    α := max(α, value)
//	    if α ≥ β then
//	        break (* β cutoff *)
//	return value
//
// See: https://en.wikipedia.org/wiki/Negamax.
type AlphaBeta struct {
	Explore Exploration
	Quiet   QuietSearch
}

func (p AlphaBeta) Search(ctx context.Context, sctx *Context, pos *board.Position, depth int) (uint64, eval.Score, []board.Move, error) {
	run := &runAlphaBeta{
		explore: fullIfNotSet(p.Explore),
		quiet:   p.Quiet,
		tt:      sctx.TT,
		sctx:    sctx,
	}

	score, moves := run.search(ctx, pos, depth, sctx.Alpha, sctx.Beta, 0)
	if contextx.IsCancelled(ctx) {
		return 0, 0, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runAlphaBeta struct {
	explore Exploration
	quiet   QuietSearch
	tt      TranspositionTable
	sctx    *Context
	nodes   uint64

	killers [maxSearchPly][2]board.Move
	history [board.NumColors][64][64]int32
}

const (
	nullMoveMinDepth  = 3
	nullMoveReduction = 2

	lmrMinDepth     = 3
	lmrMinMoveIndex = 4 // 0-indexed: the 5th move onward is a late move
	lmrReduction    = 1
)

// search returns the score relative to the side to move at pos, and the principal variation.
func (m *runAlphaBeta) search(ctx context.Context, pos *board.Position, depth int, alpha, beta eval.Score, ply int) (eval.Score, []board.Move) {
	if contextx.IsCancelled(ctx) {
		return 0, nil
	}
	if ply > 0 {
		if m.sctx.RepeatedAtLeast(pos, 3) || pos.HalfMoveClock() >= 100 || pos.HasInsufficientMaterial() {
			return eval.DrawScore, nil
		}
	}

	hash := pos.Hash()

	var ttMove board.Move
	if bound, d, stored, mv, ok := m.tt.Read(hash); ok {
		ttMove = mv
		score := eval.FromTT(stored, ply)
		if d >= depth {
			switch bound {
			case ExactBound:
				return score, nil
			case LowerBound:
				alpha = eval.Max(alpha, score)
			case UpperBound:
				beta = eval.Min(beta, score)
			}
			if alpha >= beta {
				return score, nil
			}
		}
	}

	checked := pos.IsChecked(pos.Turn())
	if checked {
		depth++ // check extension: never evaluate a position statically while in check
	}

	if depth <= 0 {
		nodes, score := m.quiet.QuietSearch(ctx, &Context{Alpha: alpha, Beta: beta, TT: m.tt, Pawns: m.sctx.Pawns, Eval: m.sctx.Eval}, pos)
		m.nodes += nodes
		return score, nil
	}
	m.nodes++

	// Null-move pruning: if passing the move entirely still fails high, the position is so
	// good that a real move will too, except in zugzwang-prone bare endings where passing is
	// illegally strong, so it is disabled when the side to move has no non-pawn material.
	if !checked && depth >= nullMoveMinDepth && beta < eval.Inf && hasNonPawnMaterial(pos, pos.Turn()) {
		pos.MakeNullMove()
		score, _ := m.search(ctx, pos, depth-1-nullMoveReduction, -beta, -beta+1, ply+1)
		pos.UnmakeNullMove()
		score = -score
		if score >= beta {
			return beta, nil
		}
	}

	var forced board.Move
	forcing := ply < len(m.sctx.Ponder)
	if forcing {
		forced = m.sctx.Ponder[ply]
	}

	var l board.List
	pos.GenerateMoves(&l)
	moves := board.NewMoveList(l.Slice(), m.priority(ctx, pos, ttMove, ply))

	mover := pos.Turn()
	hasLegalMove := false
	bound := UpperBound
	var pv []board.Move
	var best board.Move

	index := 0
	for {
		move, ok := moves.Next()
		if !ok {
			break
		}
		if forcing && !move.Equals(forced) {
			continue
		}

		pos.MakeMove(move)
		if pos.IsAttacked(mover, pos.KingSquare(mover)) {
			pos.UnmakeMove()
			continue
		}
		hasLegalMove = true

		childHash := pos.Hash()
		m.sctx.push(pos)

		var score eval.Score
		var rem []board.Move

		reduction := 0
		if index >= lmrMinMoveIndex && depth >= lmrMinDepth && move.IsQuiet() && !checked {
			reduction = lmrReduction
		}

		if index == 0 {
			score, rem = m.search(ctx, pos, depth-1, -beta, -alpha, ply+1)
			score = -score
		} else {
			score, rem = m.search(ctx, pos, depth-1-reduction, -alpha-1, -alpha, ply+1)
			score = -score
			if score > alpha && (reduction > 0 || score < beta) {
				// Reduced or null-window probe looked promising: re-search at full depth/window.
				score, rem = m.search(ctx, pos, depth-1, -beta, -alpha, ply+1)
				score = -score
			}
		}

		m.sctx.pop(childHash)
		pos.UnmakeMove()

		if score > alpha {
			alpha = score
			best = move
			pv = append([]board.Move{move}, rem...)
			bound = ExactBound
		}
		if alpha >= beta {
			bound = LowerBound
			if move.IsQuiet() {
				m.recordKiller(ply, move)
				m.history[mover][move.From][move.To] += int32(depth * depth)
			}
			break // beta cutoff
		}
		index++
	}

	if !hasLegalMove {
		if checked {
			return -eval.MateScore + eval.Score(ply), nil
		}
		return eval.DrawScore, nil
	}

	m.tt.Write(hash, bound, depth, eval.ToTT(alpha, ply), best)
	return alpha, pv
}

func (m *runAlphaBeta) recordKiller(ply int, move board.Move) {
	if ply >= maxSearchPly {
		return
	}
	if slices.ContainsFunc(m.killers[ply][:], func(k board.Move) bool { return k.Equals(move) }) {
		return
	}
	m.killers[ply][1] = m.killers[ply][0]
	m.killers[ply][0] = move
}

// priority orders the transposition table's best move first, then captures/promotions by the
// Exploration's base ordering (MVV-LVA by default), then the two killer moves recorded for
// this ply, then quiet moves by history score.
func (m *runAlphaBeta) priority(ctx context.Context, pos *board.Position, ttMove board.Move, ply int) board.MovePriorityFn {
	base, _ := m.explore(ctx, pos)
	mover := pos.Turn()
	var k1, k2 board.Move
	if ply < maxSearchPly {
		k1, k2 = m.killers[ply][0], m.killers[ply][1]
	}

	return func(mv board.Move) board.MovePriority {
		switch {
		case !ttMove.IsNone() && mv.Equals(ttMove):
			return 1 << 30
		case mv.IsCapture() || mv.IsPromotion():
			return 1<<20 + base(mv)
		case !k1.IsNone() && k1.Equals(mv):
			return 1 << 19
		case !k2.IsNone() && k2.Equals(mv):
			return 1<<19 - 1
		default:
			return board.MovePriority(m.history[mover][mv.From][mv.To])
		}
	}
}

func hasNonPawnMaterial(pos *board.Position, c board.Color) bool {
	return pos.Piece(c, board.Knight)|pos.Piece(c, board.Bishop)|pos.Piece(c, board.Rook)|pos.Piece(c, board.Queen) != 0
}

func fullIfNotSet(e Exploration) Exploration {
	if e == nil {
		return FullExploration
	}
	return e
}
