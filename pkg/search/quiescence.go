package search

import (
	"context"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// QuietSearch resolves a leaf position by searching captures and promotions until the
// position is "quiet" (no more material-improving moves), avoiding the horizon effect where a
// full-width search stops mid-exchange and misreads a won pawn as a won queen.
type QuietSearch interface {
	QuietSearch(ctx context.Context, sctx *Context, pos *board.Position) (uint64, eval.Score)
}

// Quiescence implements a standard stand-pat alpha-beta quiescence search, restricted to
// captures, promotions and, while in check, every evasion.
type Quiescence struct {
	Explore Exploration
	Eval    eval.Evaluator
}

func (q Quiescence) QuietSearch(ctx context.Context, sctx *Context, pos *board.Position) (uint64, eval.Score) {
	evaluator := sctx.Eval
	if evaluator == nil {
		evaluator = q.Eval // fallback for callers that never populate Context.Eval
	}
	run := &runQuiescence{explore: fullIfNotSet(q.Explore), eval: evaluator, sctx: sctx}
	score := run.search(ctx, pos, sctx.Alpha, sctx.Beta, 0)
	return run.nodes, score
}

type runQuiescence struct {
	explore Exploration
	eval    eval.Evaluator
	sctx    *Context
	nodes   uint64
}

const maxQuiescencePly = 32

// search returns the score relative to the side to move at pos.
func (r *runQuiescence) search(ctx context.Context, pos *board.Position, alpha, beta eval.Score, ply int) eval.Score {
	if contextx.IsCancelled(ctx) {
		return 0
	}
	r.nodes++

	checked := pos.IsChecked(pos.Turn())

	var alphaFloor eval.Score
	if !checked {
		standPat := r.eval.Evaluate(pos, r.sctx.Pawns)
		if standPat >= beta {
			return beta
		}
		alphaFloor = eval.Max(alpha, standPat)
	} else {
		alphaFloor = alpha // cannot stand pat while in check: must find an evasion
	}
	alpha = alphaFloor

	if ply >= maxQuiescencePly || pos.HalfMoveClock() >= 100 || pos.HasInsufficientMaterial() {
		return alpha
	}

	pick := IsQuickGain(pos)
	if checked {
		pick = IsAnyMove // every evasion must be considered; there is no stand-pat to fall back to
	}

	priority, _ := r.explore(ctx, pos) // Explore only shapes ordering here; the frontier above is fixed
	var l board.List
	pos.GenerateMoves(&l)
	moves := board.NewMoveList(l.Slice(), priority)

	mover := pos.Turn()
	hasLegalMove := false
	for {
		m, ok := moves.Next()
		if !ok {
			break
		}
		if !pick(m) {
			continue
		}

		pos.MakeMove(m)
		if pos.IsAttacked(mover, pos.KingSquare(mover)) {
			pos.UnmakeMove()
			continue // illegal
		}
		hasLegalMove = true

		score := -r.search(ctx, pos, -beta, -alpha, ply+1)
		pos.UnmakeMove()

		if score > alpha {
			alpha = score
			if alpha >= beta {
				return beta
			}
		}
	}

	if checked && !hasLegalMove {
		return -eval.MateScore + eval.Score(ply) // checkmate found inside quiescence
	}
	return alpha
}
