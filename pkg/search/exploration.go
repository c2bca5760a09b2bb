package search

import (
	"context"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
)

// Exploration defines move priority and selection at a given position. Limited exploration is
// required by quiescence search and can be used for forward pruning in full search. Default:
// explore all moves, ranked by MVV-LVA.
type Exploration func(ctx context.Context, pos *board.Position) (board.MovePriorityFn, board.MovePredicateFn)

func FullExploration(ctx context.Context, pos *board.Position) (board.MovePriorityFn, board.MovePredicateFn) {
	return MVVLVA(pos), IsAnyMove
}

// IsAnyMove selects every move. Default for full-width search.
func IsAnyMove(m board.Move) bool {
	return true
}

// IsNotUnderPromotion selects every move except an under-promotion (to anything but a queen),
// which is never worth exploring beyond the rare case a search already handles via extension.
func IsNotUnderPromotion(m board.Move) bool {
	return !m.IsPromotion() || m.Promotion == board.Queen
}

// IsQuickGain selects promotions and captures that are not losing by static exchange
// evaluation, the standard quiescence frontier: a capture that loses material under optimal
// recapture cannot improve a quiet position's evaluation, so searching it further is wasted.
func IsQuickGain(pos *board.Position) board.MovePredicateFn {
	return func(m board.Move) bool {
		if m.IsPromotion() {
			return true
		}
		if !m.IsCapture() {
			return false
		}
		return eval.SEE(pos, m) >= 0
	}
}

// MVVLVA returns a priority function ranking captures by most-valuable-victim,
// least-valuable-attacker: "pawn takes queen" always outranks "queen takes pawn". Quiet moves
// rank below any capture, in generation order.
func MVVLVA(pos *board.Position) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		if !m.IsCapture() {
			return 0
		}
		gain := eval.NominalValueGain(m)
		return board.MovePriority(gain*8) - board.MovePriority(eval.NominalValue(m.Piece))
	}
}
