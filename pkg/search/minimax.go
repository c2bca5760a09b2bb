package search

import (
	"context"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// Minimax implements naive fixed-depth negamax with no pruning, transposition table or
// quiescence. It is too slow for play but searches every node exactly once, which makes it a
// useful oracle to validate AlphaBeta's score and node count against on small test positions.
type Minimax struct {
	Eval eval.Evaluator
}

func (m Minimax) Search(ctx context.Context, sctx *Context, pos *board.Position, depth int) (uint64, eval.Score, []board.Move, error) {
	run := &runMinimax{eval: m.Eval, pawns: sctx.Pawns}
	score, moves := run.search(ctx, pos, depth)
	if contextx.IsCancelled(ctx) {
		return 0, 0, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runMinimax struct {
	eval  eval.Evaluator
	pawns *eval.PawnCache
	nodes uint64
}

// search returns the score relative to the side to move at pos.
func (m *runMinimax) search(ctx context.Context, pos *board.Position, depth int) (eval.Score, []board.Move) {
	m.nodes++

	if contextx.IsCancelled(ctx) {
		return 0, nil
	}
	if depth == 0 || pos.HalfMoveClock() >= 100 || pos.HasInsufficientMaterial() {
		return m.eval.Evaluate(pos, m.pawns), nil
	}

	var l board.List
	pos.GenerateMoves(&l)

	mover := pos.Turn()
	hasLegalMove := false
	best := eval.NegInf
	var pv []board.Move

	for _, move := range l.Slice() {
		pos.MakeMove(move)
		if pos.IsAttacked(mover, pos.KingSquare(mover)) {
			pos.UnmakeMove()
			continue
		}
		hasLegalMove = true

		s, rem := m.search(ctx, pos, depth-1)
		pos.UnmakeMove()

		s = -s
		if s > best {
			best = s
			pv = append([]board.Move{move}, rem...)
		}
	}

	if !hasLegalMove {
		if pos.IsChecked(mover) {
			return -eval.MateScore, nil
		}
		return eval.DrawScore, nil
	}
	return best, pv
}
